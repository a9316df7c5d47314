package service

import (
	"context"
	"time"

	"siloshare/internal/domain"
	"siloshare/internal/dto"
	"siloshare/internal/model"
	"siloshare/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CotacaoService handles freight quotes on confirmed reservations.
// Quotes never touch silo capacity.
type CotacaoService interface {
	Criar(ctx context.Context, ator domain.Ator, reservaID uuid.UUID, req dto.CriarCotacaoRequest) (*dto.CotacaoResponse, error)
	Listar(ctx context.Context, ator domain.Ator, reservaID uuid.UUID) ([]dto.CotacaoResponse, error)
	Selecionar(ctx context.Context, ator domain.Ator, reservaID, cotacaoID uuid.UUID) error
}

type cotacaoService struct {
	repo        repository.CotacaoRepository
	reservaRepo repository.ReservaRepository
	siloRepo    repository.SiloRepository
}

func NewCotacaoService(
	repo repository.CotacaoRepository,
	reservaRepo repository.ReservaRepository,
	siloRepo repository.SiloRepository,
) CotacaoService {
	return &cotacaoService{repo: repo, reservaRepo: reservaRepo, siloRepo: siloRepo}
}

func (s *cotacaoService) Criar(ctx context.Context, ator domain.Ator, reservaID uuid.UUID, req dto.CriarCotacaoRequest) (*dto.CotacaoResponse, error) {
	if ator.Papel != domain.PapelTransportadora {
		return nil, domain.ErrAcessoNegado
	}

	reserva, err := s.reservaRepo.FindByID(ctx, reservaID)
	if err != nil {
		return nil, err
	}
	// Quotes only make sense once the reservation is firm and before the
	// grain moved in.
	if reserva.Status != model.ReservaConfirmada {
		return nil, domain.ErrTransicaoInvalida
	}

	cotacao := &model.CotacaoTransporte{
		ReservaID:          reservaID,
		TransportadoraID:   ator.ID,
		TransportadoraNome: ator.Nome,
		ValorFrete:         req.ValorFrete,
		PrazoDias:          req.PrazoDias,
		Veiculo:            req.Veiculo,
		Status:             model.CotacaoPendente,
	}
	if err := s.repo.Create(ctx, cotacao); err != nil {
		return nil, err
	}
	return cotacaoToResponse(cotacao), nil
}

func (s *cotacaoService) Listar(ctx context.Context, ator domain.Ator, reservaID uuid.UUID) ([]dto.CotacaoResponse, error) {
	reserva, err := s.reservaRepo.FindByID(ctx, reservaID)
	if err != nil {
		return nil, err
	}
	if err := s.autorizaParticipante(ctx, ator, reserva, true); err != nil {
		return nil, err
	}

	cotacoes, err := s.repo.ListByReserva(ctx, reservaID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CotacaoResponse, 0, len(cotacoes))
	for i := range cotacoes {
		resp = append(resp, *cotacaoToResponse(&cotacoes[i]))
	}
	return resp, nil
}

// Selecionar marks one quote as the winner, refuses the siblings and links
// the reservation to it, all in one transaction. Only the producer chooses.
func (s *cotacaoService) Selecionar(ctx context.Context, ator domain.Ator, reservaID, cotacaoID uuid.UUID) error {
	reserva, err := s.reservaRepo.FindByID(ctx, reservaID)
	if err != nil {
		return err
	}
	if reserva.ProdutorID != ator.ID && !ator.Admin() {
		return domain.ErrAcessoNegado
	}

	cotacao, err := s.repo.FindByID(ctx, cotacaoID)
	if err != nil {
		return err
	}
	if cotacao.ReservaID != reservaID {
		return domain.ErrNaoEncontrado
	}

	return runTx(ctx, s.reservaRepo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.SelecionarTx(tx, reservaID, cotacaoID); err != nil {
			return err
		}
		return s.reservaRepo.SetCotacaoSelecionadaTx(tx, reservaID, cotacaoID)
	})
}

// autorizaParticipante admits the reservation's producer, the silo owner,
// an admin and — when incluiTransportadoras — any carrier account.
func (s *cotacaoService) autorizaParticipante(ctx context.Context, ator domain.Ator, reserva *model.Reserva, incluiTransportadoras bool) error {
	if ator.Admin() || reserva.ProdutorID == ator.ID {
		return nil
	}
	if incluiTransportadoras && ator.Papel == domain.PapelTransportadora {
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

func cotacaoToResponse(c *model.CotacaoTransporte) *dto.CotacaoResponse {
	return &dto.CotacaoResponse{
		ID:                 c.ID.String(),
		ReservaID:          c.ReservaID.String(),
		TransportadoraID:   c.TransportadoraID.String(),
		TransportadoraNome: c.TransportadoraNome,
		ValorFrete:         c.ValorFrete,
		PrazoDias:          c.PrazoDias,
		Veiculo:            c.Veiculo,
		Status:             c.Status,
		CreatedAt:          c.CreatedAt.Format(time.RFC3339),
	}
}
