// Package jobs runs background work on a cron schedule.
//
// The only job today is the due digest: once a day it counts the words due
// for review, logs the number and publishes it as the vocab_due_words gauge.
package jobs

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultDigestCron fires the digest at 07:00 every day.
const DefaultDigestCron = "0 7 * * *"

var dueWords = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "vocab_due_words",
	Help: "Vocabulary records due for review at the last digest run.",
})

func init() {
	prometheus.MustRegister(dueWords)
}

// DueCounter counts records due today or earlier.
type DueCounter interface {
	CountDue(ctx context.Context) (int64, error)
}

// DueDigest counts due words and reports them.
type DueDigest struct {
	Counter DueCounter
	// Timeout bounds one run. Values <= 0 default to 30s.
	Timeout time.Duration
	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
	// Notify, when set, receives the count after every successful run.
	Notify func(n int64)
}

// Run performs one digest. The gauge is left untouched on error.
func (d *DueDigest) Run(ctx context.Context) (int64, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lg := d.logger()
	start := time.Now()
	n, err := d.Counter.CountDue(ctx)
	if err != nil {
		lg.Error().Err(err).Msg("due digest failed")
		return 0, err
	}
	dueWords.Set(float64(n))
	lg.Info().
		Int64("due", n).
		Dur("took", time.Since(start)).
		Msg("due digest")
	if d.Notify != nil {
		d.Notify(n)
	}
	return n, nil
}

func (d *DueDigest) logger() *zerolog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return &log.Logger
}
