package service

import (
	"context"
	"time"

	"siloshare/internal/domain"
	"siloshare/internal/dto"
	"siloshare/internal/model"
	"siloshare/internal/repository"

	"github.com/google/uuid"
)

// ContratoService is read-only from the API's point of view: contracts are
// created by the contract worker after an approval, never by a handler.
type ContratoService interface {
	PorReserva(ctx context.Context, ator domain.Ator, reservaID uuid.UUID) (*dto.ContratoResponse, error)
	CaminhoPDF(ctx context.Context, ator domain.Ator, reservaID uuid.UUID) (string, error)
}

type contratoService struct {
	repo        repository.ContratoRepository
	reservaRepo repository.ReservaRepository
	siloRepo    repository.SiloRepository
}

func NewContratoService(
	repo repository.ContratoRepository,
	reservaRepo repository.ReservaRepository,
	siloRepo repository.SiloRepository,
) ContratoService {
	return &contratoService{repo: repo, reservaRepo: reservaRepo, siloRepo: siloRepo}
}

func (s *contratoService) PorReserva(ctx context.Context, ator domain.Ator, reservaID uuid.UUID) (*dto.ContratoResponse, error) {
	contrato, err := s.buscaAutorizado(ctx, ator, reservaID)
	if err != nil {
		return nil, err
	}
	return &dto.ContratoResponse{
		ID:                 contrato.ID.String(),
		ReservaID:          contrato.ReservaID.String(),
		Status:             contrato.Status,
		EnvelopeDocusignID: contrato.EnvelopeDocusignID,
		URLAssinatura:      contrato.URLAssinatura,
		CreatedAt:          contrato.CreatedAt.Format(time.RFC3339),
	}, nil
}

// CaminhoPDF resolves the local contract file for download.
func (s *contratoService) CaminhoPDF(ctx context.Context, ator domain.Ator, reservaID uuid.UUID) (string, error) {
	contrato, err := s.buscaAutorizado(ctx, ator, reservaID)
	if err != nil {
		return "", err
	}
	if contrato.CaminhoPDF == "" {
		return "", domain.ErrNaoEncontrado
	}
	return contrato.CaminhoPDF, nil
}

func (s *contratoService) buscaAutorizado(ctx context.Context, ator domain.Ator, reservaID uuid.UUID) (*model.Contrato, error) {
	reserva, err := s.reservaRepo.FindByID(ctx, reservaID)
	if err != nil {
		return nil, err
	}
	if !ator.Admin() && reserva.ProdutorID != ator.ID {
		silo, err := s.siloRepo.FindByID(ctx, reserva.SiloID)
		if err != nil {
			return nil, err
		}
		if silo.ProprietarioID != ator.ID {
			return nil, domain.ErrAcessoNegado
		}
	}
	return s.repo.FindByReserva(ctx, reservaID)
}
