package worker

// email_worker.go
// Processes notification jobs from QueueEmail. The event name decides who
// gets the mail: reservation lifecycle events notify the counterparty,
// contract events notify both signers with the PDF attached.

import (
	"context"
	"encoding/json"
	"fmt"

	"siloshare/internal/infra"
	"siloshare/internal/model"
	"siloshare/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ReservaID string `json:"reserva_id"`
	Evento    string `json:"evento"`
}

type EmailWorker struct {
	mailer       *infra.Mailer
	reservaRepo  repository.ReservaRepository
	siloRepo     repository.SiloRepository
	usuarioRepo  repository.UsuarioRepository
	contratoRepo repository.ContratoRepository
}

func NewEmailWorker(
	mailer *infra.Mailer,
	reservaRepo repository.ReservaRepository,
	siloRepo repository.SiloRepository,
	usuarioRepo repository.UsuarioRepository,
	contratoRepo repository.ContratoRepository,
) *EmailWorker {
	return &EmailWorker{
		mailer:       mailer,
		reservaRepo:  reservaRepo,
		siloRepo:     siloRepo,
		usuarioRepo:  usuarioRepo,
		contratoRepo: contratoRepo,
	}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}

	reservaID, err := uuid.Parse(payload.ReservaID)
	if err != nil {
		log.Error().Str("reserva_id", payload.ReservaID).Msg("email_worker: invalid reserva_id")
		return
	}

	reserva, err := w.reservaRepo.FindByID(ctx, reservaID)
	if err != nil {
		log.Error().Err(err).Str("reserva_id", payload.ReservaID).Msg("email_worker: reserva not found")
		return
	}
	silo, err := w.siloRepo.FindByID(ctx, reserva.SiloID)
	if err != nil {
		log.Error().Err(err).Str("reserva_id", payload.ReservaID).Msg("email_worker: silo not found")
		return
	}
	produtor, err := w.usuarioRepo.FindByID(ctx, reserva.ProdutorID)
	if err != nil {
		log.Error().Err(err).Str("reserva_id", payload.ReservaID).Msg("email_worker: produtor not found")
		return
	}
	proprietario, err := w.usuarioRepo.FindByID(ctx, silo.ProprietarioID)
	if err != nil {
		log.Error().Err(err).Str("reserva_id", payload.ReservaID).Msg("email_worker: proprietario not found")
		return
	}

	periodo := fmt.Sprintf("%s a %s",
		reserva.DataInicio.Format("02/01/2006"), reserva.DataFim.Format("02/01/2006"))

	var destinos []string
	var assunto, corpo, anexo string

	switch payload.Evento {
	case "reserva_criada":
		destinos = []string{proprietario.Email}
		assunto = fmt.Sprintf("Nova reserva no silo %s", silo.Nome)
		corpo = fmt.Sprintf("%s solicitou %s t de %s (%s). Valor: R$ %s.",
			produtor.Nome, reserva.Quantidade.StringFixed(2), reserva.TipoGrao, periodo,
			reserva.ValorTotal.StringFixed(2))
	case "reserva_aprovada":
		destinos = []string{produtor.Email}
		assunto = fmt.Sprintf("Reserva aprovada — %s", silo.Nome)
		corpo = fmt.Sprintf("Sua reserva de %s t de %s foi aprovada (%s). Valor: R$ %s.",
			reserva.Quantidade.StringFixed(2), reserva.TipoGrao, periodo,
			reserva.ValorTotal.StringFixed(2))
	case "reserva_rejeitada":
		destinos = []string{produtor.Email}
		assunto = fmt.Sprintf("Reserva rejeitada — %s", silo.Nome)
		corpo = fmt.Sprintf("Sua reserva de %s t de %s (%s) foi rejeitada. A capacidade foi liberada.",
			reserva.Quantidade.StringFixed(2), reserva.TipoGrao, periodo)
	case "reserva_cancelada":
		destinos = []string{proprietario.Email}
		assunto = fmt.Sprintf("Reserva cancelada — %s", silo.Nome)
		corpo = fmt.Sprintf("%s cancelou a reserva de %s t de %s (%s).",
			produtor.Nome, reserva.Quantidade.StringFixed(2), reserva.TipoGrao, periodo)
	case "contrato_enviado":
		destinos = []string{produtor.Email, proprietario.Email}
		assunto = fmt.Sprintf("Contrato de armazenagem — %s", silo.Nome)
		corpo = "O contrato de armazenagem foi gerado e enviado para assinatura eletrônica. Segue cópia em anexo."
		if contrato, err := w.contratoRepo.FindByReserva(ctx, reservaID); err == nil && contrato.Status != model.ContratoErro {
			anexo = contrato.CaminhoPDF
		}
	default:
		log.Warn().Str("evento", payload.Evento).Msg("email_worker: evento desconhecido, ignorando")
		return
	}

	for _, to := range destinos {
		if to == "" {
			continue
		}
		if err := w.mailer.SendNotificacao(to, assunto, corpo, anexo); err != nil {
			log.Error().Err(err).Str("to", to).Str("evento", payload.Evento).Msg("email_worker: failed to send email")
			continue
		}
		log.Info().Str("to", to).Str("evento", payload.Evento).Msg("email_worker: notificação enviada")
	}
}
