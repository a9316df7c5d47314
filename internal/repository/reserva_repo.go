package repository

import (
	"context"
	"time"

	"siloshare/internal/domain"
	"siloshare/internal/dto"
	"siloshare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReservaRepository defines the data access contract for reservations.
//
// UpdateStatusTx is the single writer of reservas.status: it flips the row
// only when the current status still matches `de`, reporting the stale case
// as domain.ErrTransicaoInvalida. Combined with the transition table in the
// service this makes a cancel racing an approval lose cleanly, and makes
// capacity release idempotent (the release only runs after a 1-row flip).
type ReservaRepository interface {
	CreateTx(tx *gorm.DB, r *model.Reserva) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Reserva, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Reserva, error)

	// ListByProdutor answers the "minhas reservas" view.
	ListByProdutor(ctx context.Context, produtorID uuid.UUID, filter dto.ReservaFilter) ([]model.Reserva, int64, error)
	// ListByProprietario answers the "reservas recebidas" view (reservations
	// against any silo owned by proprietarioID).
	ListByProprietario(ctx context.Context, proprietarioID uuid.UUID, filter dto.ReservaFilter) ([]model.Reserva, int64, error)

	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, de, para string) error
	SetCotacaoSelecionadaTx(tx *gorm.DB, id uuid.UUID, cotacaoID uuid.UUID) error
	SetPagamentoRef(ctx context.Context, id uuid.UUID, ref string) error
	SetContratoID(ctx context.Context, id uuid.UUID, contratoID uuid.UUID) error

	// Scheduler scans: confirmed reservations whose period started, and
	// in-progress reservations whose period ended.
	ListConfirmadasIniciando(ctx context.Context, ref time.Time, limit int) ([]model.Reserva, error)
	ListEmAndamentoVencidas(ctx context.Context, ref time.Time, limit int) ([]model.Reserva, error)

	DB() *gorm.DB
}

type reservaRepo struct{ db *gorm.DB }

func NewReservaRepository(db *gorm.DB) ReservaRepository { return &reservaRepo{db: db} }

func (r *reservaRepo) DB() *gorm.DB { return r.db }

func (r *reservaRepo) CreateTx(tx *gorm.DB, res *model.Reserva) error {
	return tx.Create(res).Error
}

func (r *reservaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Reserva, error) {
	var res model.Reserva
	err := r.db.WithContext(ctx).Preload("Silo").First(&res, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.ErrNaoEncontrado
	}
	return &res, err
}

func (r *reservaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Reserva, error) {
	var res model.Reserva
	err := tx.First(&res, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.ErrNaoEncontrado
	}
	return &res, err
}

func applyReservaFilter(q *gorm.DB, filter dto.ReservaFilter) *gorm.DB {
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("reservas.status = ?", filter.Status)
	}
	if filter.SiloID != "" {
		q = q.Where("reservas.silo_id = ?", filter.SiloID)
	}
	if filter.InicioDe != "" {
		q = q.Where("reservas.data_inicio >= ?", filter.InicioDe)
	}
	if filter.InicioAte != "" {
		q = q.Where("reservas.data_inicio <= ?", filter.InicioAte)
	}
	return q
}

func (r *reservaRepo) ListByProdutor(ctx context.Context, produtorID uuid.UUID, filter dto.ReservaFilter) ([]model.Reserva, int64, error) {
	var reservas []model.Reserva
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Reserva{}).Where("reservas.produtor_id = ?", produtorID)
	q = applyReservaFilter(q, filter)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("reservas.created_at DESC").Limit(filter.Limit).Offset(offset).Find(&reservas).Error
	return reservas, total, err
}

func (r *reservaRepo) ListByProprietario(ctx context.Context, proprietarioID uuid.UUID, filter dto.ReservaFilter) ([]model.Reserva, int64, error) {
	var reservas []model.Reserva
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Reserva{}).
		Joins("JOIN silos ON silos.id = reservas.silo_id").
		Where("silos.proprietario_id = ?", proprietarioID)
	q = applyReservaFilter(q, filter)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("reservas.created_at DESC").Limit(filter.Limit).Offset(offset).Find(&reservas).Error
	return reservas, total, err
}

func (r *reservaRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, de, para string) error {
	res := tx.Model(&model.Reserva{}).
		Where("id = ? AND status = ?", id, de).
		Update("status", para)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTransicaoInvalida
	}
	return nil
}

func (r *reservaRepo) SetCotacaoSelecionadaTx(tx *gorm.DB, id uuid.UUID, cotacaoID uuid.UUID) error {
	return tx.Model(&model.Reserva{}).Where("id = ?", id).
		Update("cotacao_selecionada_id", cotacaoID).Error
}

func (r *reservaRepo) SetPagamentoRef(ctx context.Context, id uuid.UUID, ref string) error {
	return r.db.WithContext(ctx).Model(&model.Reserva{}).Where("id = ?", id).
		Update("pagamento_ref", ref).Error
}

func (r *reservaRepo) SetContratoID(ctx context.Context, id uuid.UUID, contratoID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Reserva{}).Where("id = ?", id).
		Update("contrato_id", contratoID).Error
}

func (r *reservaRepo) ListConfirmadasIniciando(ctx context.Context, ref time.Time, limit int) ([]model.Reserva, error) {
	var reservas []model.Reserva
	err := r.db.WithContext(ctx).
		Where("status = ? AND data_inicio <= ?", model.ReservaConfirmada, ref).
		Limit(limit).
		Find(&reservas).Error
	return reservas, err
}

func (r *reservaRepo) ListEmAndamentoVencidas(ctx context.Context, ref time.Time, limit int) ([]model.Reserva, error) {
	var reservas []model.Reserva
	err := r.db.WithContext(ctx).
		Where("status = ? AND data_fim <= ?", model.ReservaEmAndamento, ref).
		Limit(limit).
		Find(&reservas).Error
	return reservas, err
}
