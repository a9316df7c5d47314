package repository

import (
	"context"
	"time"

	"siloshare/internal/domain"
	"siloshare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContratoRepository interface {
	Create(ctx context.Context, c *model.Contrato) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Contrato, error)
	FindByReserva(ctx context.Context, reservaID uuid.UUID) (*model.Contrato, error)
	Update(ctx context.Context, c *model.Contrato) error
	// ListPendentesRetry feeds the retry cron: errored contracts whose
	// next_retry_at has passed.
	ListPendentesRetry(ctx context.Context, ref time.Time, limit int) ([]model.Contrato, error)
	MarcarErro(ctx context.Context, id uuid.UUID, motivo string, nextRetry time.Time) error
}

type contratoRepo struct{ db *gorm.DB }

func NewContratoRepository(db *gorm.DB) ContratoRepository { return &contratoRepo{db: db} }

func (r *contratoRepo) Create(ctx context.Context, c *model.Contrato) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *contratoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Contrato, error) {
	var c model.Contrato
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.ErrNaoEncontrado
	}
	return &c, err
}

func (r *contratoRepo) FindByReserva(ctx context.Context, reservaID uuid.UUID) (*model.Contrato, error) {
	var c model.Contrato
	err := r.db.WithContext(ctx).Where("reserva_id = ?", reservaID).First(&c).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.ErrNaoEncontrado
	}
	return &c, err
}

func (r *contratoRepo) Update(ctx context.Context, c *model.Contrato) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *contratoRepo) ListPendentesRetry(ctx context.Context, ref time.Time, limit int) ([]model.Contrato, error) {
	var contratos []model.Contrato
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.ContratoErro, ref).
		Limit(limit).
		Find(&contratos).Error
	return contratos, err
}

func (r *contratoRepo) MarcarErro(ctx context.Context, id uuid.UUID, motivo string, nextRetry time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Contrato{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        model.ContratoErro,
		"retry_count":   gorm.Expr("retry_count + 1"),
		"next_retry_at": nextRetry,
		"last_error":    motivo,
	}).Error
}
