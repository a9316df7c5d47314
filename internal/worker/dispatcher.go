package worker

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const (
	QueuePagamento = "jobs:pagamento"
	QueueContrato  = "jobs:contrato"
	QueueEmail     = "jobs:email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueuePagamento pushes a payment-intent job to Redis.
func (d *Dispatcher) EnqueuePagamento(ctx context.Context, payload PagamentoJobPayload) error {
	return d.enqueue(ctx, QueuePagamento, "pagamento", payload)
}

// EnqueueContrato pushes a contract-generation job to Redis.
func (d *Dispatcher) EnqueueContrato(ctx context.Context, payload ContratoJobPayload) error {
	return d.enqueue(ctx, QueueContrato, "contrato", payload)
}

// EnqueueEmail pushes a notification email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}
