package schedule

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"time"

	"github.com/jinzhu/now"
)

// DateLayout is the wire and storage format of a target date.
const DateLayout = "2006-01-02"

// Calculator turns step labels into target dates relative to "today".
// The zero value is usable: it reads the wall clock, uses the local time
// zone and a process-wide random source.
type Calculator struct {
	// Now returns the reference instant. Defaults to time.Now.
	Now func() time.Time
	// Rand draws ranged steps. Defaults to a process-wide source.
	Rand Rand
	// Location defines where a day starts. Defaults to time.Local.
	Location *time.Location
}

// NewCalculator returns a Calculator anchored in loc (nil means time.Local).
func NewCalculator(loc *time.Location) *Calculator {
	return &Calculator{Location: loc}
}

// Today returns the start of the current day in the calculator's location.
func (c *Calculator) Today() time.Time {
	return StartOfDay(c.now().In(c.location()))
}

// Target computes the next review date for step, formatted as YYYY-MM-DD.
func (c *Calculator) Target(step string) string {
	return TargetFrom(step, c.Today(), c.rand())
}

// IsDue reports whether target (YYYY-MM-DD) is today or earlier. Unparseable
// targets are treated as due so they surface in review.
func (c *Calculator) IsDue(target string) bool {
	if !ValidDate(target) {
		return true
	}
	return target <= c.Today().Format(DateLayout)
}

func (c *Calculator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Calculator) location() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	return time.Local
}

func (c *Calculator) rand() Rand {
	if c.Rand != nil {
		return c.Rand
	}
	return globalRand{}
}

// TargetFrom adds the step offset to the start of ref's day and formats the
// result as YYYY-MM-DD. The time-of-day and zone of ref are not carried over.
func TargetFrom(step string, ref time.Time, r Rand) string {
	day := StartOfDay(ref)
	return day.AddDate(0, 0, Offset(step, r)).Format(DateLayout)
}

// StartOfDay truncates t to midnight in t's own location.
func StartOfDay(t time.Time) time.Time {
	return now.With(t).BeginningOfDay()
}

// ValidDate reports whether s is a calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

var formatTokenRE = regexp.MustCompile(`YYYY|YY|MM|DD|hh|mm|ss`)

// FormatDate renders t using a token pattern such as "YYYY-MM-DD" or
// "DD/MM/YY hh:mm:ss". Unknown characters are copied verbatim.
func FormatDate(t time.Time, pattern string) string {
	return formatTokenRE.ReplaceAllStringFunc(pattern, func(tok string) string {
		switch tok {
		case "YYYY":
			return strconv.Itoa(t.Year())
		case "YY":
			return pad2(t.Year() % 100)
		case "MM":
			return pad2(int(t.Month()))
		case "DD":
			return pad2(t.Day())
		case "hh":
			return pad2(t.Hour())
		case "mm":
			return pad2(t.Minute())
		default:
			return pad2(t.Second())
		}
	})
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// globalRand adapts the math/rand/v2 top-level functions to Rand.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }
