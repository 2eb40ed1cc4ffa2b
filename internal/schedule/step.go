// Package schedule maps a review step label to the next review date.
//
// A step is either a single day count ("0", "1", "2") or an inclusive range
// ("7-15") from which one day count is drawn uniformly at random. Anything
// else schedules the word for today. This package is the only place the rule
// is implemented; every create, edit, review and batch path calls into it.
package schedule

import (
	"strconv"
	"strings"
)

// DefaultStep is the label assigned to records created without one.
const DefaultStep = "0"

const (
	// MaxLabelLen is the widest label the step column holds.
	MaxLabelLen = 16
	// MaxDays caps a step's day count. A century keeps every target inside
	// four-digit years, where YYYY-MM-DD strings still sort by date.
	MaxDays = 36500
)

// Rand is the randomness source used for ranged steps. *math/rand/v2.Rand
// satisfies it; tests inject a fixed source.
type Rand interface {
	// IntN returns a value in [0, n). n is always > 0.
	IntN(n int) int
}

// Step is a parsed step label. A fixed step has Min == Max.
type Step struct {
	Min int
	Max int
}

// Fixed reports whether the step always yields the same number of days.
func (s Step) Fixed() bool { return s.Min == s.Max }

// Days returns the day offset for s, drawing from r for ranged steps.
// A nil r yields Min.
func (s Step) Days(r Rand) int {
	if s.Fixed() || r == nil {
		return clamp(s.Min)
	}
	span := s.Max - s.Min + 1
	if span <= 0 {
		// overflow on absurd ranges
		return 0
	}
	return clamp(s.Min + r.IntN(span))
}

// ParseStep parses label according to the step grammar. ok is false when the
// label is empty, malformed, has min > max or a negative bound; callers then
// treat the step as zero days.
func ParseStep(label string) (s Step, ok bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Step{}, false
	}
	parts := strings.Split(label, "-")
	switch len(parts) {
	case 1:
		n, err := atoi(parts[0])
		if err != nil || n < 0 {
			return Step{}, false
		}
		return Step{Min: n, Max: n}, true
	case 2:
		lo, err := atoi(parts[0])
		if err != nil {
			return Step{}, false
		}
		hi, err := atoi(parts[1])
		if err != nil || lo > hi || lo < 0 {
			return Step{}, false
		}
		return Step{Min: lo, Max: hi}, true
	default:
		return Step{}, false
	}
}

// Offset returns the number of days label pushes the next review forward.
// Unparseable labels yield 0.
func Offset(label string, r Rand) int {
	s, ok := ParseStep(label)
	if !ok {
		return 0
	}
	return s.Days(r)
}

// Valid reports whether label follows the step grammar.
func Valid(label string) bool {
	_, ok := ParseStep(label)
	return ok
}

// Storable reports whether label fits the step column and cannot schedule
// beyond MaxDays. Malformed labels are storable; they schedule for today.
func Storable(label string) bool {
	label = strings.TrimSpace(label)
	if len(label) > MaxLabelLen {
		return false
	}
	s, ok := ParseStep(label)
	return !ok || s.Max <= MaxDays
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func clamp(days int) int { return max(0, min(days, MaxDays)) }
