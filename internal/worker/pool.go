package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueImpressao = "jobs:impressao"
	QueueRelatorio = "jobs:relatorio"

	JobImpressao = "impressao"
	JobRelatorio = "relatorio"

	maxTentativas = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// CaixaJobPayload identifies the session a print or report job is about.
type CaixaJobPayload struct {
	CaixaID      string `json:"caixa_id"`
	Destinatario string `json:"destinatario,omitempty"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueImpressao pushes a receipt print job.
func (d *Dispatcher) EnqueueImpressao(ctx context.Context, caixaID uuid.UUID) error {
	return d.enqueue(ctx, QueueImpressao, JobImpressao, CaixaJobPayload{CaixaID: caixaID.String()})
}

// EnqueueRelatorio pushes a job that e-mails the PDF report to destinatario.
func (d *Dispatcher) EnqueueRelatorio(ctx context.Context, caixaID uuid.UUID, destinatario string) error {
	return d.enqueue(ctx, QueueRelatorio, JobRelatorio,
		CaixaJobPayload{CaixaID: caixaID.String(), Destinatario: destinatario})
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

// Handler processes the payload of one job type. A returned error triggers a
// retry; after maxTentativas the job goes to the dead letter queue.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, raw json.RawMessage) error

func (f HandlerFunc) Process(ctx context.Context, raw json.RawMessage) error { return f(ctx, raw) }

// Handlers maps Job.Type to its Handler.
type Handlers map[string]Handler

// Pool is a set of goroutines consuming the job queues.
type Pool struct {
	rdb      *redis.Client
	handlers Handlers
	wg       sync.WaitGroup
}

// StartWorkerPool launches numWorkers goroutines consuming every queue.
// Each goroutine blocks on BRPOP, so idle workers cost no CPU.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers Handlers, numWorkers int) *Pool {
	p := &Pool{rdb: rdb, handlers: handlers}
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
	return p
}

// Wait blocks until every worker returned after ctx was cancelled.
func (p *Pool) Wait() { p.wg.Wait() }

// Reconnect delays after a Redis error other than the BRPOP timeout.
var (
	reconexaoBase = time.Second
	reconexaoMax  = 30 * time.Second
)

// esperar sleeps for d or until ctx is done; tests replace it.
var esperar = func(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func proximaEspera(atual time.Duration) time.Duration {
	if atual <= 0 {
		return reconexaoBase
	}
	if atual*2 > reconexaoMax {
		return reconexaoMax
	}
	return atual * 2
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	queues := []string{QueueImpressao, QueueRelatorio}
	var espera time.Duration
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop; waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			switch {
			case errors.Is(err, redis.Nil), err != nil && ctx.Err() != nil:
				continue
			case err != nil:
				espera = proximaEspera(espera)
				log.Warn().Err(err).Int("worker", id).Dur("retry_in", espera).Msg("worker: redis pop failed")
				esperar(ctx, espera)
				continue
			}
			espera = 0
			if len(result) < 2 {
				continue
			}
			_ = p.processJob(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) error {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		p.deadLetter(ctx, queue, "desconhecido", json.RawMessage(raw), "envelope inválido: "+err.Error(), 0)
		return err
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		err := fmt.Errorf("no handler for job type %q", job.Type)
		log.Error().Str("queue", queue).Err(err).Msg("dropping job")
		p.deadLetter(ctx, queue, job.Type, job.Payload, err.Error(), 0)
		return err
	}

	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	err := withRetry(ctx, maxTentativas, func(attempt int) error {
		if err := h.Process(ctx, job.Payload); err != nil {
			log.Warn().Err(err).Str("type", job.Type).Int("attempt", attempt+1).Msg("job failed")
			return err
		}
		return nil
	})
	if err != nil {
		p.deadLetter(ctx, queue, job.Type, job.Payload, err.Error(), maxTentativas)
	}
	return err
}

func (p *Pool) deadLetter(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	if p.rdb == nil {
		log.Error().Str("queue", queue).Str("job_type", jobType).Str("reason", reason).Msg("job discarded")
		return
	}
	SendToDLQ(ctx, p.rdb, queue, jobType, payload, reason, attempts)
}
