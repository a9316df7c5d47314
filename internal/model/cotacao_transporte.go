package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status de uma cotação de transporte.
const (
	CotacaoPendente    = "pendente"
	CotacaoSelecionada = "selecionada"
	CotacaoRecusada    = "recusada"
)

// CotacaoTransporte is a freight quote attached to a reservation.
// Quotes never touch silo capacity; selecting one only marks the
// winner and sets reservas.cotacao_selecionada_id.
type CotacaoTransporte struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReservaID          uuid.UUID `gorm:"type:uuid;not null;index"`
	TransportadoraID   uuid.UUID `gorm:"type:uuid;not null;index"`
	TransportadoraNome string    `gorm:"not null"`

	ValorFrete decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrazoDias  int             `gorm:"not null"`
	Veiculo    string          `gorm:"not null"`
	Status     string          `gorm:"type:varchar(20);not null;default:'pendente'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CotacaoTransporte) TableName() string { return "cotacoes_transporte" }
