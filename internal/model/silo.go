package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Status de aprovação de um silo no marketplace.
const (
	SiloPendente             = "pendente"
	SiloAprovado             = "aprovado"
	SiloReprovado            = "reprovado"
	SiloAguardandoDocumentos = "aguardando_documentos"
)

// Silo is a grain-storage facility listed by a proprietário.
// CapacidadeTotal is an immutable business fact after creation;
// CapacidadeDisponivel is mutated only through the capacity ledger
// (SiloRepository.ReservarCapacidadeTx / LiberarCapacidadeTx / AjustarDisponivel)
// and must satisfy 0 <= capacidade_disponivel <= capacidade_total at all times.
type Silo struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProprietarioID uuid.UUID `gorm:"type:uuid;not null;index"`
	Nome           string    `gorm:"not null"`
	Descricao      *string
	Cidade         string `gorm:"index;not null"`
	Estado         string `gorm:"type:varchar(2);index;not null"`

	CapacidadeTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CapacidadeDisponivel decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// PrecoPorToneladaMes em reais (R$/t/mês).
	PrecoPorToneladaMes decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	// Typed in memory, JSON text only in the column.
	TiposGraos     datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Fotos          datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Infraestrutura datatypes.JSONSlice[string] `gorm:"type:jsonb"`

	StatusAprovacao string `gorm:"type:varchar(30);not null;default:'pendente'"`
	// Disponivel is the owner-controlled listing flag; Ativo is the soft-delete flag.
	Disponivel bool `gorm:"not null;default:true"`
	Ativo      bool `gorm:"not null;default:true"`

	MediaAvaliacao  decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0"`
	TotalAvaliacoes int             `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Proprietario *Usuario `gorm:"foreignKey:ProprietarioID"`
}

func (Silo) TableName() string { return "silos" }

// AceitaReservas reports whether the silo can take new reservations.
func (s *Silo) AceitaReservas() bool {
	return s.Ativo && s.Disponivel && s.StatusAprovacao == SiloAprovado
}
