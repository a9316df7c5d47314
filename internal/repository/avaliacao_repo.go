package repository

import (
	"context"

	"siloshare/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AvaliacaoRepository interface {
	CreateTx(tx *gorm.DB, a *model.Avaliacao) error
	ExistsForReserva(ctx context.Context, reservaID uuid.UUID) (bool, error)
	ListBySilo(ctx context.Context, siloID uuid.UUID) ([]model.Avaliacao, error)
	// AgregadosSiloTx computes avg(nota) and count over a silo's ratings
	// inside the same transaction that inserted the new one.
	AgregadosSiloTx(tx *gorm.DB, siloID uuid.UUID) (decimal.Decimal, int, error)
}

type avaliacaoRepo struct{ db *gorm.DB }

func NewAvaliacaoRepository(db *gorm.DB) AvaliacaoRepository { return &avaliacaoRepo{db: db} }

func (r *avaliacaoRepo) CreateTx(tx *gorm.DB, a *model.Avaliacao) error {
	return tx.Create(a).Error
}

func (r *avaliacaoRepo) ExistsForReserva(ctx context.Context, reservaID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Avaliacao{}).
		Where("reserva_id = ?", reservaID).Count(&count).Error
	return count > 0, err
}

func (r *avaliacaoRepo) ListBySilo(ctx context.Context, siloID uuid.UUID) ([]model.Avaliacao, error) {
	var avaliacoes []model.Avaliacao
	err := r.db.WithContext(ctx).
		Where("silo_id = ?", siloID).
		Order("created_at DESC").
		Find(&avaliacoes).Error
	return avaliacoes, err
}

func (r *avaliacaoRepo) AgregadosSiloTx(tx *gorm.DB, siloID uuid.UUID) (decimal.Decimal, int, error) {
	var agg struct {
		Media decimal.Decimal
		Total int
	}
	err := tx.Model(&model.Avaliacao{}).
		Select("COALESCE(AVG(nota), 0) AS media, COUNT(*) AS total").
		Where("silo_id = ?", siloID).
		Scan(&agg).Error
	return agg.Media.Round(2), agg.Total, err
}
