package repository

import (
	"context"

	"siloshare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoricoRepository is the append-only audit trail of reservation
// transitions. There is deliberately no Update or Delete.
type HistoricoRepository interface {
	CreateTx(tx *gorm.DB, h *model.ReservaHistorico) error
	ListByReserva(ctx context.Context, reservaID uuid.UUID) ([]model.ReservaHistorico, error)
}

type historicoRepo struct{ db *gorm.DB }

func NewHistoricoRepository(db *gorm.DB) HistoricoRepository { return &historicoRepo{db: db} }

func (r *historicoRepo) CreateTx(tx *gorm.DB, h *model.ReservaHistorico) error {
	return tx.Create(h).Error
}

func (r *historicoRepo) ListByReserva(ctx context.Context, reservaID uuid.UUID) ([]model.ReservaHistorico, error) {
	var entries []model.ReservaHistorico
	err := r.db.WithContext(ctx).
		Where("reserva_id = ?", reservaID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
