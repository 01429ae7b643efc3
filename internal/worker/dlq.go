package worker

// dlq.go: print and report jobs that exhaust their retries are parked in
// dlq:{queue} for manual inspection.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry is one parked job. CaixaID is copied from the payload when present.
type DLQEntry struct {
	Fila      string          `json:"fila"`
	Tipo      string          `json:"tipo"`
	CaixaID   string          `json:"caixa_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	Motivo    string          `json:"motivo"`
	Tentativa int             `json:"tentativas"`
	FalhouEm  string          `json:"falhou_em"` // RFC 3339, UTC
}

// SendToDLQ parks a failed job. Errors are logged, never returned.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		Fila:      queue,
		Tipo:      jobType,
		Payload:   payload,
		Motivo:    reason,
		Tentativa: attempts,
		FalhouEm:  time.Now().UTC().Format(time.RFC3339),
	}
	var p CaixaJobPayload
	if json.Unmarshal(payload, &p) == nil {
		entry.CaixaID = p.CaixaID
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	// ctx may already be cancelled during shutdown
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := rdb.LPush(pushCtx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Str("caixa_id", entry.CaixaID).Msg("dlq: push failed, job lost")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("caixa_id", entry.CaixaID).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job parked")
}

// DLQLengths returns the number of parked jobs per source queue.
func DLQLengths(ctx context.Context, rdb *redis.Client) (map[string]int64, error) {
	out := make(map[string]int64, 2)
	for _, q := range []string{QueueImpressao, QueueRelatorio} {
		n, err := rdb.LLen(ctx, DLQPrefix+q).Result()
		if err != nil {
			return nil, err
		}
		out[q] = n
	}
	return out, nil
}
