package search

import (
	"strings"
	"unicode/utf8"
)

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	allTerms      bool
	minQueryRunes int
	maxResults    int
}

func defaultConfig() config {
	return config{
		allTerms:      false,
		minQueryRunes: 0,
		maxResults:    0,
	}
}

// WithAllTerms splits the query on whitespace and requires every term to
// appear in at least one field, in any order. Without it the folded query
// must appear as one contiguous substring.
func WithAllTerms() Option {
	return func(c *config) { c.allTerms = true }
}

// WithMinQueryRunes treats folded queries shorter than n runes as empty
// (everything matches).
func WithMinQueryRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minQueryRunes = n
		}
	}
}

// WithMaxResults caps Filter output; n <= 0 means no cap.
func WithMaxResults(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// ----------------------------------------------------------------------------
// Matcher

// Matcher is a compiled query.
type Matcher struct {
	cfg   config
	query string
	terms []string
}

// NewMatcher folds query once so it can be tested against many records.
func NewMatcher(query string, opts ...Option) *Matcher {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	q := Fold(query)
	if cfg.minQueryRunes > 0 && utf8.RuneCountInString(q) < cfg.minQueryRunes {
		q = ""
	}
	m := &Matcher{cfg: cfg, query: q}
	if cfg.allTerms && q != "" {
		m.terms = strings.Split(q, " ")
	}
	return m
}

// Empty reports whether the matcher accepts everything.
func (m *Matcher) Empty() bool { return m.query == "" }

// Match reports whether any of fields contains the query.
func (m *Matcher) Match(fields ...string) bool {
	if m.Empty() {
		return true
	}
	if !m.cfg.allTerms {
		for _, f := range fields {
			if strings.Contains(Fold(f), m.query) {
				return true
			}
		}
		return false
	}

	folded := make([]string, len(fields))
	for i, f := range fields {
		folded[i] = Fold(f)
	}
	for _, t := range m.terms {
		hit := false
		for _, f := range folded {
			if strings.Contains(f, t) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// Filter returns the items whose fields match query, preserving order.
// fields extracts the searchable text of one item. The result is never nil.
func Filter[T any](items []T, query string, fields func(T) []string, opts ...Option) []T {
	m := NewMatcher(query, opts...)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if m.cfg.maxResults > 0 && len(out) >= m.cfg.maxResults {
			break
		}
		if m.Match(fields(it)...) {
			out = append(out, it)
		}
	}
	return out
}
