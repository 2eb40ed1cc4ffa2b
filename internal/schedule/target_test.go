package schedule

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCalc(ref time.Time, r Rand) *Calculator {
	return &Calculator{
		Now:      func() time.Time { return ref },
		Rand:     r,
		Location: time.UTC,
	}
}

func TestTargetFrom_SingleStepAddsDays(t *testing.T) {
	ref := time.Date(2025, 3, 30, 22, 45, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-30", TargetFrom("0", ref, nil))
	assert.Equal(t, "2025-03-31", TargetFrom("1", ref, nil))
	assert.Equal(t, "2025-04-01", TargetFrom("2", ref, nil))
	assert.Equal(t, "2025-03-30", TargetFrom("garbage", ref, nil))
	assert.Equal(t, "2025-03-30", TargetFrom("-4", ref, nil))
	assert.Equal(t, "2025-03-30", TargetFrom("15-7", ref, nil))
}

func TestTargetFrom_CrossesMonthAndLeapDay(t *testing.T) {
	ref := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-02-29", TargetFrom("1", ref, nil))
	assert.Equal(t, "2024-03-01", TargetFrom("2", ref, nil))
}

func TestCalculator_RangeWithinBounds(t *testing.T) {
	ref := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	c := fixedCalc(ref, rand.New(rand.NewPCG(1, 2)))
	lo := ref.AddDate(0, 0, 7).Format(DateLayout)
	hi := ref.AddDate(0, 0, 15).Format(DateLayout)

	seen := map[string]bool{}
	for i := 0; i < 2000; i++ {
		got := c.Target("7-15")
		require.GreaterOrEqual(t, got, lo)
		require.LessOrEqual(t, got, hi)
		seen[got] = true
	}
	assert.Len(t, seen, 9)
}

func TestCalculator_TodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("ICT", 7*60*60)
	// 20:00 UTC is already the next day in UTC+7.
	ref := time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC)
	c := &Calculator{Now: func() time.Time { return ref }, Location: loc}

	today := c.Today()
	assert.Equal(t, "2025-05-02", today.Format(DateLayout))
	assert.Equal(t, 0, today.Hour())
	assert.Equal(t, "2025-05-03", c.Target("1"))
}

func TestCalculator_ZeroValueUsable(t *testing.T) {
	var c Calculator
	got := c.Target("0")
	assert.True(t, ValidDate(got))
	assert.Equal(t, time.Now().Format(DateLayout), got)
}

func TestCalculator_IsDue(t *testing.T) {
	c := fixedCalc(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), nil)
	assert.True(t, c.IsDue("2025-06-14"))
	assert.True(t, c.IsDue("2025-06-15"))
	assert.False(t, c.IsDue("2025-06-16"))
	assert.True(t, c.IsDue("not-a-date"))
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2025-01-31"))
	assert.False(t, ValidDate("2025-02-30"))
	assert.False(t, ValidDate("2025-1-31"))
	assert.False(t, ValidDate("2025-01-31T00:00:00Z"))
	assert.False(t, ValidDate(""))
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2009, 7, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "2009-07-04", FormatDate(ts, "YYYY-MM-DD"))
	assert.Equal(t, "04/07/09 05:06:07", FormatDate(ts, "DD/MM/YY hh:mm:ss"))
	assert.Equal(t, "day 04 of 07", FormatDate(ts, "day DD of MM"))
	assert.Equal(t, ts.Format(DateLayout), FormatDate(ts, "YYYY-MM-DD"))
}

func TestStartOfDay_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("X", -3*60*60)
	ts := time.Date(2025, 9, 9, 23, 59, 59, 999, loc)
	got := StartOfDay(ts)
	assert.Equal(t, time.Date(2025, 9, 9, 0, 0, 0, 0, loc), got)
}
