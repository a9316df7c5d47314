package model

import (
	"time"

	"github.com/google/uuid"
)

// ReservaHistorico registra cada transição de status de uma reserva.
// Append-only: escrito exatamente uma vez por transição, dentro da mesma
// transação que muda o status, e nunca alterado ou removido depois.
type ReservaHistorico struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReservaID uuid.UUID `gorm:"type:uuid;not null;index"`
	AtorID    uuid.UUID `gorm:"type:uuid;not null"`
	AtorNome  string    `gorm:"not null"`
	Acao      string    `gorm:"not null"` // "criada" | "aprovada" | "rejeitada" | "cancelada" | "iniciada" | "concluida"
	Detalhe   string
	CreatedAt time.Time
}

// TableName overrides GORM's pluralization (reserva_historicos → reserva_historico).
func (ReservaHistorico) TableName() string { return "reserva_historico" }
