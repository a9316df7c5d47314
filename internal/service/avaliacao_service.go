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

// AvaliacaoService gates ratings: only the producer of a concluded
// reservation may rate, once. The silo aggregates are recomputed in the
// same transaction that inserts the rating.
type AvaliacaoService interface {
	Criar(ctx context.Context, ator domain.Ator, reservaID uuid.UUID, req dto.CriarAvaliacaoRequest) (*dto.AvaliacaoResponse, error)
	ListarPorSilo(ctx context.Context, siloID uuid.UUID) ([]dto.AvaliacaoResponse, error)
}

type avaliacaoService struct {
	repo        repository.AvaliacaoRepository
	reservaRepo repository.ReservaRepository
	siloRepo    repository.SiloRepository
}

func NewAvaliacaoService(
	repo repository.AvaliacaoRepository,
	reservaRepo repository.ReservaRepository,
	siloRepo repository.SiloRepository,
) AvaliacaoService {
	return &avaliacaoService{repo: repo, reservaRepo: reservaRepo, siloRepo: siloRepo}
}

func (s *avaliacaoService) Criar(ctx context.Context, ator domain.Ator, reservaID uuid.UUID, req dto.CriarAvaliacaoRequest) (*dto.AvaliacaoResponse, error) {
	reserva, err := s.reservaRepo.FindByID(ctx, reservaID)
	if err != nil {
		return nil, err
	}
	if reserva.ProdutorID != ator.ID {
		return nil, domain.ErrAcessoNegado
	}
	if reserva.Status != model.ReservaConcluida {
		return nil, domain.ErrTransicaoInvalida
	}

	existe, err := s.repo.ExistsForReserva(ctx, reservaID)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, domain.ErrInvariante
	}

	avaliacao := &model.Avaliacao{
		SiloID:     reserva.SiloID,
		ReservaID:  reservaID,
		ProdutorID: ator.ID,
		Nota:       req.Nota,
		Comentario: req.Comentario,
	}

	txErr := runTx(ctx, s.reservaRepo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, avaliacao); err != nil {
			return err
		}
		media, total, err := s.repo.AgregadosSiloTx(tx, reserva.SiloID)
		if err != nil {
			return err
		}
		return s.siloRepo.AtualizarAvaliacaoTx(tx, reserva.SiloID, media, total)
	})
	if txErr != nil {
		return nil, txErr
	}
	return avaliacaoToResponse(avaliacao), nil
}

func (s *avaliacaoService) ListarPorSilo(ctx context.Context, siloID uuid.UUID) ([]dto.AvaliacaoResponse, error) {
	avaliacoes, err := s.repo.ListBySilo(ctx, siloID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.AvaliacaoResponse, 0, len(avaliacoes))
	for i := range avaliacoes {
		resp = append(resp, *avaliacaoToResponse(&avaliacoes[i]))
	}
	return resp, nil
}

func avaliacaoToResponse(a *model.Avaliacao) *dto.AvaliacaoResponse {
	return &dto.AvaliacaoResponse{
		ID:         a.ID.String(),
		SiloID:     a.SiloID.String(),
		ReservaID:  a.ReservaID.String(),
		ProdutorID: a.ProdutorID.String(),
		Nota:       a.Nota,
		Comentario: a.Comentario,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
}
