package repository

import (
	"context"

	"siloshare/internal/domain"
	"siloshare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CotacaoRepository interface {
	Create(ctx context.Context, c *model.CotacaoTransporte) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CotacaoTransporte, error)
	ListByReserva(ctx context.Context, reservaID uuid.UUID) ([]model.CotacaoTransporte, error)

	// SelecionarTx marks the winner and refuses every sibling quote of the
	// same reservation in one pass.
	SelecionarTx(tx *gorm.DB, reservaID, cotacaoID uuid.UUID) error
}

type cotacaoRepo struct{ db *gorm.DB }

func NewCotacaoRepository(db *gorm.DB) CotacaoRepository { return &cotacaoRepo{db: db} }

func (r *cotacaoRepo) Create(ctx context.Context, c *model.CotacaoTransporte) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cotacaoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CotacaoTransporte, error) {
	var c model.CotacaoTransporte
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.ErrNaoEncontrado
	}
	return &c, err
}

func (r *cotacaoRepo) ListByReserva(ctx context.Context, reservaID uuid.UUID) ([]model.CotacaoTransporte, error) {
	var cotacoes []model.CotacaoTransporte
	err := r.db.WithContext(ctx).
		Where("reserva_id = ?", reservaID).
		Order("valor_frete ASC").
		Find(&cotacoes).Error
	return cotacoes, err
}

func (r *cotacaoRepo) SelecionarTx(tx *gorm.DB, reservaID, cotacaoID uuid.UUID) error {
	res := tx.Model(&model.CotacaoTransporte{}).
		Where("id = ? AND reserva_id = ? AND status = ?", cotacaoID, reservaID, model.CotacaoPendente).
		Update("status", model.CotacaoSelecionada)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNaoEncontrado
	}
	return tx.Model(&model.CotacaoTransporte{}).
		Where("reserva_id = ? AND id <> ? AND status = ?", reservaID, cotacaoID, model.CotacaoPendente).
		Update("status", model.CotacaoRecusada).Error
}
