package repository

import (
	"context"

	"siloshare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MensagemRepository interface {
	Create(ctx context.Context, m *model.Mensagem) error
	ListByReserva(ctx context.Context, reservaID uuid.UUID) ([]model.Mensagem, error)
	// MarcarLidas flags every message of the reservation NOT sent by leitorID.
	MarcarLidas(ctx context.Context, reservaID, leitorID uuid.UUID) error
}

type mensagemRepo struct{ db *gorm.DB }

func NewMensagemRepository(db *gorm.DB) MensagemRepository { return &mensagemRepo{db: db} }

func (r *mensagemRepo) Create(ctx context.Context, m *model.Mensagem) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *mensagemRepo) ListByReserva(ctx context.Context, reservaID uuid.UUID) ([]model.Mensagem, error) {
	var mensagens []model.Mensagem
	err := r.db.WithContext(ctx).
		Where("reserva_id = ?", reservaID).
		Order("created_at ASC").
		Find(&mensagens).Error
	return mensagens, err
}

func (r *mensagemRepo) MarcarLidas(ctx context.Context, reservaID, leitorID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Mensagem{}).
		Where("reserva_id = ? AND remetente_id <> ? AND lida = false", reservaID, leitorID).
		Update("lida", true).Error
}
