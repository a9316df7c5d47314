package worker

// contrato_worker.go
// Processes contract jobs from QueueContrato:
//  1. Fetch the confirmed reservation with silo, producer and owner
//  2. Generate the storage-contract PDF locally (fpdf)
//  3. Create the contratos row with status "gerado"
//  4. Send the PDF to DocuSign through the circuit breaker
//  5. On success mark "enviado" and link the contract to the reservation;
//     on failure mark the error and let the retry cron re-attempt the envelope
//
// The local PDF always exists even when DocuSign is down — only the
// envelope step is retried.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"siloshare/internal/infra"
	"siloshare/internal/model"
	"siloshare/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ContratoJobPayload is the job envelope sent to QueueContrato.
type ContratoJobPayload struct {
	ReservaID string `json:"reserva_id"`
}

type ContratoWorker struct {
	docusign     *infra.DocusignClient
	cb           *infra.CircuitBreaker
	reservaRepo  repository.ReservaRepository
	siloRepo     repository.SiloRepository
	usuarioRepo  repository.UsuarioRepository
	contratoRepo repository.ContratoRepository
	dispatcher   *Dispatcher
	storagePath  string
}

func NewContratoWorker(
	docusign *infra.DocusignClient,
	cb *infra.CircuitBreaker,
	reservaRepo repository.ReservaRepository,
	siloRepo repository.SiloRepository,
	usuarioRepo repository.UsuarioRepository,
	contratoRepo repository.ContratoRepository,
	dispatcher *Dispatcher,
	storagePath string,
) *ContratoWorker {
	return &ContratoWorker{
		docusign:     docusign,
		cb:           cb,
		reservaRepo:  reservaRepo,
		siloRepo:     siloRepo,
		usuarioRepo:  usuarioRepo,
		contratoRepo: contratoRepo,
		dispatcher:   dispatcher,
		storagePath:  storagePath,
	}
}

func (w *ContratoWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ContratoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("contrato_worker: invalid payload")
		return
	}

	reservaID, err := uuid.Parse(payload.ReservaID)
	if err != nil {
		log.Error().Str("reserva_id", payload.ReservaID).Msg("contrato_worker: invalid reserva_id")
		return
	}

	if existente, err := w.contratoRepo.FindByReserva(ctx, reservaID); err == nil && existente != nil {
		// uniqueIndex on reserva_id also protects this, but replays should
		// not even reach DocuSign.
		log.Info().Str("reserva_id", payload.ReservaID).Msg("contrato_worker: contrato já existe, ignorando")
		return
	}

	reserva, err := w.reservaRepo.FindByID(ctx, reservaID)
	if err != nil {
		log.Error().Err(err).Str("reserva_id", payload.ReservaID).Msg("contrato_worker: reserva not found")
		return
	}
	silo, err := w.siloRepo.FindByID(ctx, reserva.SiloID)
	if err != nil {
		log.Error().Err(err).Str("reserva_id", payload.ReservaID).Msg("contrato_worker: silo not found")
		return
	}
	proprietario, err := w.usuarioRepo.FindByID(ctx, silo.ProprietarioID)
	if err != nil {
		log.Error().Err(err).Str("reserva_id", payload.ReservaID).Msg("contrato_worker: proprietario not found")
		return
	}
	produtor, err := w.usuarioRepo.FindByID(ctx, reserva.ProdutorID)
	if err != nil {
		log.Error().Err(err).Str("reserva_id", payload.ReservaID).Msg("contrato_worker: produtor not found")
		return
	}

	caminhoPDF, err := infra.GerarContratoPDF(reserva, silo, proprietario, w.storagePath)
	if err != nil {
		log.Error().Err(err).Str("reserva_id", payload.ReservaID).Msg("contrato_worker: failed to generate PDF")
		return
	}

	contrato := &model.Contrato{
		ReservaID:  reservaID,
		CaminhoPDF: caminhoPDF,
		Status:     model.ContratoGerado,
	}
	if err := w.contratoRepo.Create(ctx, contrato); err != nil {
		log.Error().Err(err).Str("reserva_id", payload.ReservaID).Msg("contrato_worker: failed to create contrato")
		return
	}
	if err := w.reservaRepo.SetContratoID(ctx, reservaID, contrato.ID); err != nil {
		log.Error().Err(err).Str("reserva_id", payload.ReservaID).Msg("contrato_worker: failed to link contrato")
	}

	envReq := infra.EnvelopeRequest{
		ReservaID:         reserva.ID.String(),
		CaminhoPDF:        caminhoPDF,
		NomeProdutor:      produtor.Nome,
		EmailProdutor:     produtor.Email,
		NomeProprietario:  proprietario.Nome,
		EmailProprietario: proprietario.Email,
		Assunto:           fmt.Sprintf("Contrato de armazenagem — %s", silo.Nome),
	}

	var envResp *infra.EnvelopeResponse
	cbErr := w.cb.Execute(func() error {
		resp, err := w.docusign.CriarEnvelope(ctx, envReq)
		if err != nil {
			return err
		}
		envResp = resp
		return nil
	})

	if cbErr != nil {
		// Retry cron owns the re-attempt schedule.
		nextRetry := time.Now().Add(computeRetryBackoff(1))
		if err := w.contratoRepo.MarcarErro(ctx, contrato.ID, cbErr.Error(), nextRetry); err != nil {
			log.Error().Err(err).Str("contrato_id", contrato.ID.String()).Msg("contrato_worker: failed to mark erro")
		}
		log.Warn().
			Err(cbErr).
			Str("reserva_id", payload.ReservaID).
			Time("next_retry_at", nextRetry).
			Msg("contrato_worker: envelope falhou, agendado para retry")
		return
	}

	contrato.Status = model.ContratoEnviado
	contrato.EnvelopeDocusignID = &envResp.EnvelopeID
	if envResp.URI != "" {
		contrato.URLAssinatura = &envResp.URI
	}
	if err := w.contratoRepo.Update(ctx, contrato); err != nil {
		log.Error().Err(err).Str("contrato_id", contrato.ID.String()).Msg("contrato_worker: failed to update contrato")
		return
	}

	log.Info().
		Str("reserva_id", payload.ReservaID).
		Str("envelope_id", envResp.EnvelopeID).
		Msg("contrato_worker: contrato gerado e enviado para assinatura")

	if w.dispatcher != nil {
		_ = w.dispatcher.EnqueueEmail(ctx, EmailJobPayload{
			ReservaID: payload.ReservaID,
			Evento:    "contrato_enviado",
		})
	}
}
