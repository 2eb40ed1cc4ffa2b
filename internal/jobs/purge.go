package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// PurgeFunc deletes rows that expired before now and returns how many went.
type PurgeFunc func(ctx context.Context, now time.Time) (int64, error)

// runPurge executes one purge pass bounded by timeout.
func runPurge(ctx context.Context, purge PurgeFunc, timeout time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	n, err := purge(ctx, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("idempotency purge failed")
		return 0, err
	}
	if n > 0 {
		log.Debug().Int64("purged", n).Msg("idempotency purge")
	}
	return n, nil
}
