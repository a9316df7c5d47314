package worker

// retry_cron.go
// Background goroutine that periodically re-attempts DocuSign envelopes for
// contracts stuck in status='erro' with a next_retry_at in the past.
// Uses the circuit breaker to avoid hammering a downed provider.

import (
	"context"
	"fmt"
	"time"

	"siloshare/internal/infra"
	"siloshare/internal/model"
	"siloshare/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval  = 30 * time.Second
	retryBatchSize     = 10
	MaxContratoRetries = 5
)

// computeRetryBackoff is the shared schedule for provider re-attempts:
// 1min, 2min, 4min... capped at 30min.
func computeRetryBackoff(retryCount int) time.Duration {
	backoff := time.Minute << (retryCount - 1)
	if backoff > 30*time.Minute {
		backoff = 30 * time.Minute
	}
	return backoff
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	ContratoRepo repository.ContratoRepository
	ReservaRepo  repository.ReservaRepository
	SiloRepo     repository.SiloRepository
	UsuarioRepo  repository.UsuarioRepository
	Docusign     *infra.DocusignClient
	CB           *infra.CircuitBreaker
	RDB          *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries errored contracts due for retry and re-attempts the envelope
// through the circuit breaker. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed provider
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	contratos, err := cfg.ContratoRepo.ListPendentesRetry(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(contratos) == 0 {
		return
	}

	log.Info().Int("count", len(contratos)).Msg("retry_cron: processing errored contratos")

	for i := range contratos {
		contrato := &contratos[i]

		// Check CB state before each call — it may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}

		envReq, err := buildEnvelopeRequest(ctx, cfg, contrato)
		if err != nil {
			log.Error().Err(err).Str("contrato_id", contrato.ID.String()).Msg("retry_cron: failed to build envelope request")
			continue
		}

		var envResp *infra.EnvelopeResponse
		cbErr := cfg.CB.Execute(func() error {
			resp, err := cfg.Docusign.CriarEnvelope(ctx, *envReq)
			if err != nil {
				return err
			}
			envResp = resp
			return nil
		})

		if cbErr != nil {
			if contrato.RetryCount+1 >= MaxContratoRetries {
				errMsg := cbErr.Error()
				contrato.RetryCount++
				contrato.LastError = &errMsg
				contrato.NextRetryAt = nil
				_ = cfg.ContratoRepo.Update(ctx, contrato)

				log.Error().
					Str("contrato_id", contrato.ID.String()).
					Str("reserva_id", contrato.ReservaID.String()).
					Int("retries", contrato.RetryCount).
					Msg("retry_cron: max retries exceeded, moving to DLQ")

				payload := fmt.Sprintf(`{"reserva_id":"%s","contrato_id":"%s"}`, contrato.ReservaID, contrato.ID)
				SendToDLQ(ctx, cfg.RDB, QueueContrato, "contrato", []byte(payload),
					fmt.Sprintf("max retries (%d) exceeded: %s", MaxContratoRetries, errMsg),
					contrato.RetryCount)
				continue
			}

			nextRetry := time.Now().Add(computeRetryBackoff(contrato.RetryCount + 1))
			_ = cfg.ContratoRepo.MarcarErro(ctx, contrato.ID, cbErr.Error(), nextRetry)
			log.Warn().
				Str("contrato_id", contrato.ID.String()).
				Int("retry_count", contrato.RetryCount+1).
				Time("next_retry_at", nextRetry).
				Msg("retry_cron: envelope retry failed, scheduled next attempt")
			continue
		}

		contrato.Status = model.ContratoEnviado
		contrato.EnvelopeDocusignID = &envResp.EnvelopeID
		if envResp.URI != "" {
			contrato.URLAssinatura = &envResp.URI
		}
		contrato.NextRetryAt = nil
		contrato.LastError = nil
		_ = cfg.ContratoRepo.Update(ctx, contrato)

		log.Info().
			Str("contrato_id", contrato.ID.String()).
			Str("envelope_id", envResp.EnvelopeID).
			Int("total_retries", contrato.RetryCount).
			Msg("retry_cron: envelope criado após retry")
	}
}

func buildEnvelopeRequest(ctx context.Context, cfg RetryCronConfig, contrato *model.Contrato) (*infra.EnvelopeRequest, error) {
	reserva, err := cfg.ReservaRepo.FindByID(ctx, contrato.ReservaID)
	if err != nil {
		return nil, err
	}
	silo, err := cfg.SiloRepo.FindByID(ctx, reserva.SiloID)
	if err != nil {
		return nil, err
	}
	produtor, err := cfg.UsuarioRepo.FindByID(ctx, reserva.ProdutorID)
	if err != nil {
		return nil, err
	}
	proprietario, err := cfg.UsuarioRepo.FindByID(ctx, silo.ProprietarioID)
	if err != nil {
		return nil, err
	}
	return &infra.EnvelopeRequest{
		ReservaID:         reserva.ID.String(),
		CaminhoPDF:        contrato.CaminhoPDF,
		NomeProdutor:      produtor.Nome,
		EmailProdutor:     produtor.Email,
		NomeProprietario:  proprietario.Nome,
		EmailProprietario: proprietario.Email,
		Assunto:           fmt.Sprintf("Contrato de armazenagem — %s", silo.Nome),
	}, nil
}
