package jobs

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	n   int64
	err error
}

func (f fakeCounter) CountDue(ctx context.Context) (int64, error) {
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("expected a deadline")
	}
	return f.n, f.err
}

func TestDueDigest_SetsGaugeAndLogs(t *testing.T) {
	var buf bytes.Buffer
	lg := zerolog.New(&buf)
	var notified int64 = -1

	d := &DueDigest{Counter: fakeCounter{n: 42}, Logger: &lg, Notify: func(n int64) { notified = n }}
	n, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.Equal(t, float64(42), testutil.ToFloat64(dueWords))
	assert.Equal(t, int64(42), notified)
	assert.Contains(t, buf.String(), `"due":42`)
}

func TestDueDigest_ErrorKeepsGauge(t *testing.T) {
	dueWords.Set(7)
	var buf bytes.Buffer
	lg := zerolog.New(&buf)

	d := &DueDigest{Counter: fakeCounter{err: errors.New("db down")}, Logger: &lg, Timeout: time.Second}
	_, err := d.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, float64(7), testutil.ToFloat64(dueWords))
	assert.Contains(t, buf.String(), "due digest failed")
}

func TestScheduler_RegisterDigest(t *testing.T) {
	s := NewScheduler(time.UTC)
	d := &DueDigest{Counter: fakeCounter{}}

	require.NoError(t, s.RegisterDigest("", d))
	assert.Equal(t, 0, s.Len(), "empty expression disables the job")

	require.NoError(t, s.RegisterDigest(DefaultDigestCron, d))
	assert.Equal(t, 1, s.Len())

	assert.Error(t, s.RegisterDigest("not a cron", d))

	s.Start()
	s.Stop()
}

func TestRunPurge(t *testing.T) {
	var gotNow time.Time
	n, err := runPurge(context.Background(), func(ctx context.Context, now time.Time) (int64, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		gotNow = now
		return 3, nil
	}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, time.UTC, gotNow.Location())

	_, err = runPurge(context.Background(), func(context.Context, time.Time) (int64, error) {
		return 0, errors.New("locked")
	}, time.Second)
	assert.Error(t, err)
}

func TestScheduler_RegisterPurge(t *testing.T) {
	s := NewScheduler(nil)
	require.NoError(t, s.RegisterPurge(time.Hour, func(context.Context, time.Time) (int64, error) { return 0, nil }))
	assert.Equal(t, 1, s.Len())
	assert.Error(t, s.RegisterPurge(0, func(context.Context, time.Time) (int64, error) { return 0, nil }))
}
