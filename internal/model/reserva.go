package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status de uma reserva. pendente é o estado inicial; cancelada, rejeitada
// e concluida são terminais.
const (
	ReservaPendente    = "pendente"
	ReservaConfirmada  = "confirmada"
	ReservaEmAndamento = "em_andamento"
	ReservaConcluida   = "concluida"
	ReservaCancelada   = "cancelada"
	ReservaRejeitada   = "rejeitada"
)

// transicoes is the single source of truth for legal status changes.
// Nothing outside TransicaoValida may decide whether a status flip is legal.
//
//	pendente   → confirmada | cancelada | rejeitada
//	confirmada → em_andamento
//	em_andamento → concluida
var transicoes = map[string][]string{
	ReservaPendente:    {ReservaConfirmada, ReservaCancelada, ReservaRejeitada},
	ReservaConfirmada:  {ReservaEmAndamento},
	ReservaEmAndamento: {ReservaConcluida},
}

// TransicaoValida reports whether a reservation may move from `de` to `para`.
func TransicaoValida(de, para string) bool {
	for _, s := range transicoes[de] {
		if s == para {
			return true
		}
	}
	return false
}

// LiberaCapacidade reports whether entering this status returns the reserved
// tonnage to the silo. Only cancellation and rejection release capacity;
// a confirmed reservation keeps it held for the whole storage period.
func LiberaCapacidade(status string) bool {
	return status == ReservaCancelada || status == ReservaRejeitada
}

// Reserva is a producer's claim on a quantity of a silo's capacity for a
// date range. ValorTotal is a snapshot computed at creation time; later
// price or capacity edits on the silo never alter it.
type Reserva struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SiloID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ProdutorID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Denormalized display names, captured at creation.
	SiloNome     string `gorm:"not null"`
	ProdutorNome string `gorm:"not null"`

	Quantidade decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DataInicio time.Time       `gorm:"not null"`
	DataFim    time.Time       `gorm:"not null"`
	ValorTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Status      string `gorm:"type:varchar(20);not null;default:'pendente';index"`
	TipoGrao    string `gorm:"not null"`
	Observacoes *string

	CotacaoSelecionadaID *uuid.UUID `gorm:"type:uuid"`
	PagamentoRef         *string
	ContratoID           *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	Silo     *Silo    `gorm:"foreignKey:SiloID"`
	Produtor *Usuario `gorm:"foreignKey:ProdutorID"`
}

func (Reserva) TableName() string { return "reservas" }
