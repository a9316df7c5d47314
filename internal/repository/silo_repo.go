package repository

import (
	"context"

	"siloshare/internal/domain"
	"siloshare/internal/dto"
	"siloshare/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SiloRepository defines the data access contract for silos, including the
// capacity ledger. Services depend on this interface, not on the concrete
// GORM implementation, enabling unit testing via in-memory stubs.
//
// The ledger methods are the ONLY writers of silos.capacidade_disponivel.
// Both use single guarded UPDATE statements so that two concurrent reserves
// can never both succeed past the available capacity — there is no
// read-then-write window to race on.
type SiloRepository interface {
	Create(ctx context.Context, s *model.Silo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Silo, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Silo, error)
	List(ctx context.Context, filter dto.SiloFilter) ([]model.Silo, int64, error)
	ListByProprietario(ctx context.Context, proprietarioID uuid.UUID) ([]model.Silo, error)
	// Update writes the owner-editable listing fields. It never touches the
	// ledger columns (capacidade_disponivel, capacidade_total) nor the rating
	// aggregates, which belong to their dedicated writers below.
	Update(ctx context.Context, s *model.Silo) error
	UpdateAprovacao(ctx context.Context, id uuid.UUID, status string) error
	// Desativar soft-deletes the listing with a targeted two-column update.
	Desativar(ctx context.Context, id uuid.UUID) error

	// ReservarCapacidadeTx atomically decrements capacidade_disponivel by qtd,
	// guarded by capacidade_disponivel >= qtd. Returns
	// domain.ErrCapacidadeInsuficiente when the guard rejects the decrement.
	ReservarCapacidadeTx(tx *gorm.DB, siloID uuid.UUID, qtd decimal.Decimal) error

	// LiberarCapacidadeTx credits qtd back, clamped so the result never
	// exceeds capacidade_total.
	LiberarCapacidadeTx(tx *gorm.DB, siloID uuid.UUID, qtd decimal.Decimal) error

	// AjustarDisponivel is the direct owner/admin capacity edit. Returns
	// domain.ErrInvariante when novoValor < 0 or > capacidade_total.
	AjustarDisponivel(ctx context.Context, siloID uuid.UUID, novoValor decimal.Decimal) error

	// AtualizarAvaliacaoTx refreshes the rating aggregates.
	AtualizarAvaliacaoTx(tx *gorm.DB, siloID uuid.UUID, media decimal.Decimal, total int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type siloRepo struct{ db *gorm.DB }

func NewSiloRepository(db *gorm.DB) SiloRepository { return &siloRepo{db: db} }

func (r *siloRepo) Create(ctx context.Context, s *model.Silo) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *siloRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Silo, error) {
	var s model.Silo
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.ErrNaoEncontrado
	}
	return &s, err
}

func (r *siloRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Silo, error) {
	var s model.Silo
	err := tx.First(&s, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.ErrNaoEncontrado
	}
	return &s, err
}

func (r *siloRepo) List(ctx context.Context, filter dto.SiloFilter) ([]model.Silo, int64, error) {
	var silos []model.Silo
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Silo{}).
		Where("ativo = true AND disponivel = true AND status_aprovacao = ?", model.SiloAprovado)

	if filter.Cidade != "" {
		q = q.Where("cidade ILIKE ?", "%"+filter.Cidade+"%")
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.TipoGrao != "" {
		// tipos_graos is a jsonb array of strings
		q = q.Where("tipos_graos @> ?", `["`+filter.TipoGrao+`"]`)
	}
	if filter.CapacidadeMin != "" {
		if min, err := decimal.NewFromString(filter.CapacidadeMin); err == nil {
			q = q.Where("capacidade_disponivel >= ?", min)
		}
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("media_avaliacao DESC, created_at DESC").Limit(filter.Limit).Offset(offset).Find(&silos).Error
	return silos, total, err
}

func (r *siloRepo) ListByProprietario(ctx context.Context, proprietarioID uuid.UUID) ([]model.Silo, error) {
	var silos []model.Silo
	err := r.db.WithContext(ctx).
		Where("proprietario_id = ? AND ativo = true", proprietarioID).
		Order("created_at DESC").
		Find(&silos).Error
	return silos, err
}

func (r *siloRepo) Update(ctx context.Context, s *model.Silo) error {
	// Never write the ledger or aggregate columns here: s was read before the
	// edit, and a reservation or review committed in between would be erased
	// by writing the stale values back. Those columns have dedicated writers.
	return r.db.WithContext(ctx).
		Omit("capacidade_disponivel", "capacidade_total", "media_avaliacao", "total_avaliacoes", "created_at").
		Save(s).Error
}

func (r *siloRepo) Desativar(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Silo{}).Where("id = ?", id).
		Updates(map[string]interface{}{"ativo": false, "disponivel": false})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNaoEncontrado
	}
	return nil
}

func (r *siloRepo) UpdateAprovacao(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&model.Silo{}).Where("id = ?", id).
		Update("status_aprovacao", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNaoEncontrado
	}
	return nil
}

func (r *siloRepo) ReservarCapacidadeTx(tx *gorm.DB, siloID uuid.UUID, qtd decimal.Decimal) error {
	res := tx.Model(&model.Silo{}).
		Where("id = ? AND capacidade_disponivel >= ?", siloID, qtd).
		Update("capacidade_disponivel", gorm.Expr("capacidade_disponivel - ?", qtd))
	if res.Error != nil {
		return res.Error
	}
	// Zero rows means the guard rejected us: either the capacity moved under
	// our feet or it was never enough. Callers verify silo existence first.
	if res.RowsAffected == 0 {
		return domain.ErrCapacidadeInsuficiente
	}
	return nil
}

func (r *siloRepo) LiberarCapacidadeTx(tx *gorm.DB, siloID uuid.UUID, qtd decimal.Decimal) error {
	// LEAST clamp: a release can never push availability past the total,
	// even if the ledger data was corrupted by a manual edit.
	return tx.Model(&model.Silo{}).
		Where("id = ?", siloID).
		Update("capacidade_disponivel",
			gorm.Expr("LEAST(capacidade_disponivel + ?, capacidade_total)", qtd)).Error
}

func (r *siloRepo) AjustarDisponivel(ctx context.Context, siloID uuid.UUID, novoValor decimal.Decimal) error {
	if novoValor.IsNegative() {
		return domain.ErrInvariante
	}
	res := r.db.WithContext(ctx).Model(&model.Silo{}).
		Where("id = ? AND capacidade_total >= ?", siloID, novoValor).
		Update("capacidade_disponivel", novoValor)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the silo doesn't exist or novoValor > capacidade_total.
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Silo{}).Where("id = ?", siloID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNaoEncontrado
		}
		return domain.ErrInvariante
	}
	return nil
}

func (r *siloRepo) AtualizarAvaliacaoTx(tx *gorm.DB, siloID uuid.UUID, media decimal.Decimal, total int) error {
	return tx.Model(&model.Silo{}).Where("id = ?", siloID).Updates(map[string]interface{}{
		"media_avaliacao":  media,
		"total_avaliacoes": total,
	}).Error
}

func (r *siloRepo) DB() *gorm.DB { return r.db }
