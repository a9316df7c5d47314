package worker

// pagamento_worker.go
// Processes payment jobs from QueuePagamento: creates a Stripe PaymentIntent
// for a confirmed reservation and stores its id on the reservation row.
// A payment failure never reverts the reservation — the approval already
// committed; the job retries in-process and falls to the DLQ when exhausted.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"siloshare/internal/infra"
	"siloshare/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const MaxPagamentoTentativas = 3

// PagamentoJobPayload is the job envelope sent to QueuePagamento.
type PagamentoJobPayload struct {
	ReservaID string `json:"reserva_id"`
}

// PagamentoWorker calls Stripe through the circuit breaker and records the
// PaymentIntent reference on the reservation.
type PagamentoWorker struct {
	stripe      *infra.StripeClient
	cb          *infra.CircuitBreaker
	reservaRepo repository.ReservaRepository
	usuarioRepo repository.UsuarioRepository
	rdb         *redis.Client
}

func NewPagamentoWorker(
	stripe *infra.StripeClient,
	cb *infra.CircuitBreaker,
	reservaRepo repository.ReservaRepository,
	usuarioRepo repository.UsuarioRepository,
	rdb *redis.Client,
) *PagamentoWorker {
	return &PagamentoWorker{
		stripe:      stripe,
		cb:          cb,
		reservaRepo: reservaRepo,
		usuarioRepo: usuarioRepo,
		rdb:         rdb,
	}
}

func (w *PagamentoWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload PagamentoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("pagamento_worker: invalid payload")
		return
	}

	reservaID, err := uuid.Parse(payload.ReservaID)
	if err != nil {
		log.Error().Str("reserva_id", payload.ReservaID).Msg("pagamento_worker: invalid reserva_id")
		return
	}

	reserva, err := w.reservaRepo.FindByID(ctx, reservaID)
	if err != nil {
		log.Error().Err(err).Str("reserva_id", payload.ReservaID).Msg("pagamento_worker: reserva not found")
		return
	}
	if reserva.PagamentoRef != nil {
		// Job replays (DLQ requeue, duplicate dispatch) must not create a
		// second PaymentIntent.
		log.Info().Str("reserva_id", payload.ReservaID).Msg("pagamento_worker: pagamento já criado, ignorando")
		return
	}

	produtor, err := w.usuarioRepo.FindByID(ctx, reserva.ProdutorID)
	if err != nil {
		log.Error().Err(err).Str("reserva_id", payload.ReservaID).Msg("pagamento_worker: produtor not found")
		return
	}

	req := infra.PagamentoRequest{
		ReservaID:  reserva.ID.String(),
		ClienteRef: produtor.Email,
		Valor:      reserva.ValorTotal,
		Descricao:  fmt.Sprintf("Armazenagem %s — %s", reserva.SiloNome, reserva.TipoGrao),
	}

	var resp *infra.PagamentoResponse
	var lastErr error
	for tentativa := 1; tentativa <= MaxPagamentoTentativas; tentativa++ {
		lastErr = w.cb.Execute(func() error {
			r, err := w.stripe.CriarPaymentIntent(ctx, req)
			if err != nil {
				return err
			}
			resp = r
			return nil
		})
		if lastErr == nil {
			break
		}
		log.Warn().
			Err(lastErr).
			Str("reserva_id", payload.ReservaID).
			Int("tentativa", tentativa).
			Msg("pagamento_worker: falha ao criar payment intent")
		if tentativa < MaxPagamentoTentativas {
			time.Sleep(time.Duration(tentativa) * 2 * time.Second)
		}
	}

	if lastErr != nil {
		SendToDLQ(ctx, w.rdb, QueuePagamento, "pagamento", raw,
			fmt.Sprintf("max tentativas (%d): %s", MaxPagamentoTentativas, lastErr),
			MaxPagamentoTentativas)
		return
	}

	if err := w.reservaRepo.SetPagamentoRef(ctx, reservaID, resp.ID); err != nil {
		log.Error().Err(err).Str("reserva_id", payload.ReservaID).Msg("pagamento_worker: failed to store pagamento_ref")
		return
	}

	log.Info().
		Str("reserva_id", payload.ReservaID).
		Str("payment_intent", resp.ID).
		Str("status", resp.Status).
		Msg("pagamento_worker: payment intent criado")
}
