// Package utils holds small helpers shared by the transport layers.
package utils

import (
	"errors"
	"strconv"
	"strings"
)

// MaxListLimit caps list endpoints so one request cannot pull an unbounded
// page through the in-memory text filter.
const MaxListLimit = 5000

// ErrBadLimit is returned by ParseLimit for non-numeric or negative input.
var ErrBadLimit = errors.New("limit must be a non-negative integer")

// ParseLimit reads a "limit" query value. Empty means 0 (no limit); values
// above max are clamped when max > 0.
func ParseLimit(raw string, max int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ErrBadLimit
	}
	if max > 0 {
		n = Clamp(n, 0, max)
	}
	return n, nil
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	switch {
	case n < lo:
		return lo
	case n > hi:
		return hi
	}
	return n
}
