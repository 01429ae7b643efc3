package worker

// limpeza.go
// Background goroutine that periodically drops expired idempotency keys from
// the database store. The Redis store expires keys on its own.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const limpezaTickInterval = 15 * time.Minute

// RemovedorExpiradas is the part of the idempotency store the cron needs.
type RemovedorExpiradas interface {
	RemoverExpiradas(ctx context.Context) (int64, error)
}

// StartLimpezaCron ticks every interval (15 min when zero) until ctx is done.
func StartLimpezaCron(ctx context.Context, repo RemovedorExpiradas, interval time.Duration) {
	if interval <= 0 {
		interval = limpezaTickInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Msg("limpeza_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("limpeza_cron: shutting down")
				return
			case <-ticker.C:
				limpar(ctx, repo)
			}
		}
	}()
}

func limpar(ctx context.Context, repo RemovedorExpiradas) {
	n, err := repo.RemoverExpiradas(ctx)
	if err != nil {
		log.Error().Err(err).Msg("limpeza_cron: failed to remove expired keys")
		return
	}
	if n > 0 {
		log.Info().Int64("removidas", n).Msg("limpeza_cron: expired idempotency keys removed")
	}
}
