package service

import (
	"context"
	"fmt"
	"time"

	"siloshare/internal/domain"
	"siloshare/internal/dto"
	"siloshare/internal/model"
	"siloshare/internal/repository"
	"siloshare/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReservaService is the reservation state machine plus the read views.
// All status mutations go through mudarStatus: ownership first, then the
// transition table, then the guarded UPDATE + capacity movement + audit
// entry in a single transaction.
type ReservaService interface {
	Criar(ctx context.Context, ator domain.Ator, req dto.CriarReservaRequest) (*dto.ReservaResponse, error)
	Cancelar(ctx context.Context, ator domain.Ator, id uuid.UUID, detalhe string) error
	Aprovar(ctx context.Context, ator domain.Ator, id uuid.UUID, detalhe string) error
	Rejeitar(ctx context.Context, ator domain.Ator, id uuid.UUID, detalhe string) error
	Iniciar(ctx context.Context, ator domain.Ator, id uuid.UUID) error
	Concluir(ctx context.Context, ator domain.Ator, id uuid.UUID) error

	Minhas(ctx context.Context, ator domain.Ator, filter dto.ReservaFilter) (*dto.ReservaListResponse, error)
	Recebidas(ctx context.Context, ator domain.Ator, filter dto.ReservaFilter) (*dto.ReservaListResponse, error)
	Detalhes(ctx context.Context, ator domain.Ator, id uuid.UUID) (*dto.ReservaResponse, error)
	Historico(ctx context.Context, ator domain.Ator, id uuid.UUID) ([]dto.HistoricoResponse, error)
}

type reservaService struct {
	repo          repository.ReservaRepository
	siloRepo      repository.SiloRepository
	historicoRepo repository.HistoricoRepository
	dispatcher    *worker.Dispatcher
}

func NewReservaService(
	repo repository.ReservaRepository,
	siloRepo repository.SiloRepository,
	historicoRepo repository.HistoricoRepository,
	dispatcher *worker.Dispatcher,
) ReservaService {
	return &reservaService{
		repo:          repo,
		siloRepo:      siloRepo,
		historicoRepo: historicoRepo,
		dispatcher:    dispatcher,
	}
}

// mesesArmazenagem converts a storage period into billable months.
// Partial months round up: 59 days is still two months of storage.
func mesesArmazenagem(inicio, fim time.Time) int64 {
	dias := int64(fim.Sub(inicio).Hours() / 24)
	if fim.Sub(inicio)%(24*time.Hour) != 0 {
		dias++
	}
	meses := dias / 30
	if dias%30 != 0 {
		meses++
	}
	if meses < 1 {
		meses = 1
	}
	return meses
}

// ── Criar ─────────────────────────────────────────────────────────────────────
// Creates a pendente reservation. The capacity decrement and the insert
// happen in one transaction; the decrement itself is a guarded conditional
// UPDATE, so two producers racing for the same tonnage cannot both win.

func (s *reservaService) Criar(ctx context.Context, ator domain.Ator, req dto.CriarReservaRequest) (*dto.ReservaResponse, error) {
	if req.Quantidade.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrQuantidadeInvalida
	}

	dataInicio, err := time.Parse("2006-01-02", req.DataInicio)
	if err != nil {
		return nil, domain.ErrPeriodoInvalido
	}
	dataFim, err := time.Parse("2006-01-02", req.DataFim)
	if err != nil {
		return nil, domain.ErrPeriodoInvalido
	}
	if !dataFim.After(dataInicio) {
		return nil, domain.ErrPeriodoInvalido
	}

	siloID, err := uuid.Parse(req.SiloID)
	if err != nil {
		return nil, domain.ErrNaoEncontrado
	}
	silo, err := s.siloRepo.FindByID(ctx, siloID)
	if err != nil {
		return nil, err
	}
	if !silo.AceitaReservas() {
		return nil, domain.ErrSiloIndisponivel
	}
	// Pre-flight courtesy check; the transaction guard below is the one
	// that actually decides under concurrency.
	if req.Quantidade.GreaterThan(silo.CapacidadeDisponivel) {
		return nil, domain.ErrCapacidadeInsuficiente
	}

	// ValorTotal is a creation-time snapshot: quantity × price × months.
	// Later price edits on the silo never touch existing reservations.
	meses := mesesArmazenagem(dataInicio, dataFim)
	valorTotal := req.Quantidade.
		Mul(silo.PrecoPorToneladaMes).
		Mul(decimal.NewFromInt(meses)).
		Round(2)

	reserva := &model.Reserva{
		SiloID:       silo.ID,
		ProdutorID:   ator.ID,
		SiloNome:     silo.Nome,
		ProdutorNome: ator.Nome,
		Quantidade:   req.Quantidade,
		DataInicio:   dataInicio,
		DataFim:      dataFim,
		ValorTotal:   valorTotal,
		Status:       model.ReservaPendente,
		TipoGrao:     req.TipoGrao,
		Observacoes:  req.Observacoes,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.siloRepo.ReservarCapacidadeTx(tx, silo.ID, req.Quantidade); err != nil {
			return err
		}
		if err := s.repo.CreateTx(tx, reserva); err != nil {
			return err
		}
		return s.historicoRepo.CreateTx(tx, &model.ReservaHistorico{
			ReservaID: reserva.ID,
			AtorID:    ator.ID,
			AtorNome:  ator.Nome,
			Acao:      "criada",
			Detalhe:   fmt.Sprintf("%s t de %s", req.Quantidade.StringFixed(2), req.TipoGrao),
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	// Notify the owner — best-effort, after commit only (no two-phase
	// commit across the database and the mail provider).
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
			ReservaID: reserva.ID.String(),
			Evento:    "reserva_criada",
		})
	}

	return reservaToResponse(reserva), nil
}

// ── Transitions ───────────────────────────────────────────────────────────────

func (s *reservaService) Cancelar(ctx context.Context, ator domain.Ator, id uuid.UUID, detalhe string) error {
	err := s.mudarStatus(ctx, ator, id, model.ReservaCancelada, "cancelada", detalhe,
		func(r *model.Reserva, _ *model.Silo) bool {
			return r.ProdutorID == ator.ID
		})
	if err != nil {
		return err
	}
	s.notificar(ctx, id, "reserva_cancelada")
	return nil
}

func (s *reservaService) Aprovar(ctx context.Context, ator domain.Ator, id uuid.UUID, detalhe string) error {
	err := s.mudarStatus(ctx, ator, id, model.ReservaConfirmada, "aprovada", detalhe,
		func(_ *model.Reserva, silo *model.Silo) bool {
			return silo != nil && silo.ProprietarioID == ator.ID
		})
	if err != nil {
		return err
	}
	// Approval side effects: payment intent, contract generation and the
	// notification mail. All fire-and-forget — a provider failure must
	// never make the committed approval look failed to the caller.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueuePagamento(ctx, worker.PagamentoJobPayload{ReservaID: id.String()})
		_ = s.dispatcher.EnqueueContrato(ctx, worker.ContratoJobPayload{ReservaID: id.String()})
		_ = s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{ReservaID: id.String(), Evento: "reserva_aprovada"})
	}
	return nil
}

func (s *reservaService) Rejeitar(ctx context.Context, ator domain.Ator, id uuid.UUID, detalhe string) error {
	err := s.mudarStatus(ctx, ator, id, model.ReservaRejeitada, "rejeitada", detalhe,
		func(_ *model.Reserva, silo *model.Silo) bool {
			return silo != nil && silo.ProprietarioID == ator.ID
		})
	if err != nil {
		return err
	}
	s.notificar(ctx, id, "reserva_rejeitada")
	return nil
}

func (s *reservaService) Iniciar(ctx context.Context, ator domain.Ator, id uuid.UUID) error {
	return s.mudarStatus(ctx, ator, id, model.ReservaEmAndamento, "iniciada", "",
		func(r *model.Reserva, silo *model.Silo) bool {
			return r.ProdutorID == ator.ID || (silo != nil && silo.ProprietarioID == ator.ID)
		})
}

func (s *reservaService) Concluir(ctx context.Context, ator domain.Ator, id uuid.UUID) error {
	return s.mudarStatus(ctx, ator, id, model.ReservaConcluida, "concluida", "",
		func(r *model.Reserva, silo *model.Silo) bool {
			return r.ProdutorID == ator.ID || (silo != nil && silo.ProprietarioID == ator.ID)
		})
}

// mudarStatus applies one transition: ownership check, legality check
// against the transition table, then — in a single transaction — the
// guarded status flip, the capacity release when the target status frees
// tonnage, and exactly one audit entry. The guarded flip means a stale
// concurrent transition (cancel racing an approval) fails with
// ErrTransicaoInvalida and leaves capacity untouched.
func (s *reservaService) mudarStatus(
	ctx context.Context,
	ator domain.Ator,
	id uuid.UUID,
	para, acao, detalhe string,
	autorizado func(*model.Reserva, *model.Silo) bool,
) error {
	reserva, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	silo, err := s.siloRepo.FindByID(ctx, reserva.SiloID)
	if err != nil {
		return err
	}

	if !ator.Admin() && !autorizado(reserva, silo) {
		return domain.ErrAcessoNegado
	}
	if !model.TransicaoValida(reserva.Status, para) {
		return domain.ErrTransicaoInvalida
	}

	de := reserva.Status
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateStatusTx(tx, id, de, para); err != nil {
			return err
		}
		if model.LiberaCapacidade(para) {
			// Release is tied to the 1-row status flip above, so a repeated
			// call can never credit the silo twice.
			if err := s.siloRepo.LiberarCapacidadeTx(tx, reserva.SiloID, reserva.Quantidade); err != nil {
				return err
			}
		}
		return s.historicoRepo.CreateTx(tx, &model.ReservaHistorico{
			ReservaID: id,
			AtorID:    ator.ID,
			AtorNome:  ator.Nome,
			Acao:      acao,
			Detalhe:   detalhe,
		})
	})
}

func (s *reservaService) notificar(ctx context.Context, reservaID uuid.UUID, evento string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{ReservaID: reservaID.String(), Evento: evento})
}

// ── Read views ────────────────────────────────────────────────────────────────

func (s *reservaService) Minhas(ctx context.Context, ator domain.Ator, filter dto.ReservaFilter) (*dto.ReservaListResponse, error) {
	normalizeFilter(&filter)
	reservas, total, err := s.repo.ListByProdutor(ctx, ator.ID, filter)
	if err != nil {
		return nil, err
	}
	return listToResponse(reservas, total, filter), nil
}

func (s *reservaService) Recebidas(ctx context.Context, ator domain.Ator, filter dto.ReservaFilter) (*dto.ReservaListResponse, error) {
	normalizeFilter(&filter)
	reservas, total, err := s.repo.ListByProprietario(ctx, ator.ID, filter)
	if err != nil {
		return nil, err
	}
	return listToResponse(reservas, total, filter), nil
}

func (s *reservaService) Detalhes(ctx context.Context, ator domain.Ator, id uuid.UUID) (*dto.ReservaResponse, error) {
	reserva, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.autorizaLeitura(ctx, ator, reserva); err != nil {
		return nil, err
	}
	return reservaToResponse(reserva), nil
}

func (s *reservaService) Historico(ctx context.Context, ator domain.Ator, id uuid.UUID) ([]dto.HistoricoResponse, error) {
	reserva, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.autorizaLeitura(ctx, ator, reserva); err != nil {
		return nil, err
	}
	entries, err := s.historicoRepo.ListByReserva(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.HistoricoResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.HistoricoResponse{
			AtorID:    e.AtorID.String(),
			AtorNome:  e.AtorNome,
			Acao:      e.Acao,
			Detalhe:   e.Detalhe,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp, nil
}

// autorizaLeitura gates direct-id lookups: only the reservation's producer,
// the owner of its silo, or an admin may see it.
func (s *reservaService) autorizaLeitura(ctx context.Context, ator domain.Ator, reserva *model.Reserva) error {
	if ator.Admin() || reserva.ProdutorID == ator.ID {
		return nil
	}
	silo, err := s.siloRepo.FindByID(ctx, reserva.SiloID)
	if err != nil {
		return err
	}
	if silo.ProprietarioID != ator.ID {
		return domain.ErrAcessoNegado
	}
	return nil
}

// ── Mapping helpers ───────────────────────────────────────────────────────────

func normalizeFilter(f *dto.ReservaFilter) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
}

func listToResponse(reservas []model.Reserva, total int64, filter dto.ReservaFilter) *dto.ReservaListResponse {
	items := make([]dto.ReservaResponse, 0, len(reservas))
	for i := range reservas {
		items = append(items, *reservaToResponse(&reservas[i]))
	}
	return &dto.ReservaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
}

func reservaToResponse(r *model.Reserva) *dto.ReservaResponse {
	resp := &dto.ReservaResponse{
		ID:           r.ID.String(),
		SiloID:       r.SiloID.String(),
		SiloNome:     r.SiloNome,
		ProdutorID:   r.ProdutorID.String(),
		ProdutorNome: r.ProdutorNome,
		Quantidade:   r.Quantidade,
		DataInicio:   r.DataInicio.Format("2006-01-02"),
		DataFim:      r.DataFim.Format("2006-01-02"),
		ValorTotal:   r.ValorTotal,
		Status:       r.Status,
		TipoGrao:     r.TipoGrao,
		Observacoes:  r.Observacoes,
		PagamentoRef: r.PagamentoRef,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
	if r.CotacaoSelecionadaID != nil {
		id := r.CotacaoSelecionadaID.String()
		resp.CotacaoSelecionadaID = &id
	}
	if r.ContratoID != nil {
		id := r.ContratoID.String()
		resp.ContratoID = &id
	}
	return resp
}
