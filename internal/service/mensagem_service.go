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

// MensagemService is the per-reservation thread between the producer and
// the silo owner. Reading the thread marks the counterparty's messages
// as read.
type MensagemService interface {
	Enviar(ctx context.Context, ator domain.Ator, reservaID uuid.UUID, req dto.EnviarMensagemRequest) (*dto.MensagemResponse, error)
	Listar(ctx context.Context, ator domain.Ator, reservaID uuid.UUID) ([]dto.MensagemResponse, error)
}

type mensagemService struct {
	repo        repository.MensagemRepository
	reservaRepo repository.ReservaRepository
	siloRepo    repository.SiloRepository
}

func NewMensagemService(
	repo repository.MensagemRepository,
	reservaRepo repository.ReservaRepository,
	siloRepo repository.SiloRepository,
) MensagemService {
	return &mensagemService{repo: repo, reservaRepo: reservaRepo, siloRepo: siloRepo}
}

func (s *mensagemService) Enviar(ctx context.Context, ator domain.Ator, reservaID uuid.UUID, req dto.EnviarMensagemRequest) (*dto.MensagemResponse, error) {
	if err := s.autorizaParticipante(ctx, ator, reservaID); err != nil {
		return nil, err
	}

	mensagem := &model.Mensagem{
		ReservaID:     reservaID,
		RemetenteID:   ator.ID,
		RemetenteNome: ator.Nome,
		Conteudo:      req.Conteudo,
	}
	if err := s.repo.Create(ctx, mensagem); err != nil {
		return nil, err
	}
	return mensagemToResponse(mensagem), nil
}

func (s *mensagemService) Listar(ctx context.Context, ator domain.Ator, reservaID uuid.UUID) ([]dto.MensagemResponse, error) {
	if err := s.autorizaParticipante(ctx, ator, reservaID); err != nil {
		return nil, err
	}

	mensagens, err := s.repo.ListByReserva(ctx, reservaID)
	if err != nil {
		return nil, err
	}
	// Best effort; a failed read-marker never blocks the listing.
	_ = s.repo.MarcarLidas(ctx, reservaID, ator.ID)

	resp := make([]dto.MensagemResponse, 0, len(mensagens))
	for i := range mensagens {
		resp = append(resp, *mensagemToResponse(&mensagens[i]))
	}
	return resp, nil
}

func (s *mensagemService) autorizaParticipante(ctx context.Context, ator domain.Ator, reservaID uuid.UUID) error {
	reserva, err := s.reservaRepo.FindByID(ctx, reservaID)
	if err != nil {
		return err
	}
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

func mensagemToResponse(m *model.Mensagem) *dto.MensagemResponse {
	return &dto.MensagemResponse{
		ID:            m.ID.String(),
		ReservaID:     m.ReservaID.String(),
		RemetenteID:   m.RemetenteID.String(),
		RemetenteNome: m.RemetenteNome,
		Conteudo:      m.Conteudo,
		Lida:          m.Lida,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
}
