package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client's retry key on create requests.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"

	defaultIdemMaxLen = 200
)

// idemKeyPattern accepts RFC 7230 token-ish keys; UUIDs and ULIDs both pass.
var idemKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// IdempotencyOptions tunes IdempotencyValidator. Expiry is the lookup's job.
type IdempotencyOptions struct {
	// MaxLen caps the key length; <= 0 means 200.
	MaxLen int
	// Pattern overrides the allowed key syntax.
	Pattern *regexp.Regexp
	// Scope names the operation a key belongs to. Nil scopes by method and
	// route; an empty result skips the lookup but still validates the key.
	Scope func(c *gin.Context) string
}

func (o IdempotencyOptions) withDefaults() IdempotencyOptions {
	if o.MaxLen <= 0 {
		o.MaxLen = defaultIdemMaxLen
	}
	if o.Pattern == nil {
		o.Pattern = idemKeyPattern
	}
	if o.Scope == nil {
		o.Scope = DefaultIdempotencyScope
	}
	return o
}

// IdempotencyLookup reports whether an unexpired record exists for
// (scope, key) at now.
type IdempotencyLookup func(ctx context.Context, scope, key string, now time.Time) (bool, error)

// DefaultIdempotencyScope is "METHOD /route/template", or "" for unmatched
// routes.
func DefaultIdempotencyScope(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return c.Request.Method + " " + p
	}
	return ""
}

// GetIdempotencyKey returns the key accepted by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s, _ := c.Value(ctxKeyIdemKey).(string)
	return s, s != ""
}

// IsReplay reports whether the key was already used for this scope.
func IsReplay(c *gin.Context) bool {
	b, _ := c.Value(ctxKeyIdemReplay).(bool)
	return b
}

// IdempotencyValidator checks the Idempotency-Key header when present and
// stores it on the context. A malformed key is rejected with 400. When lookup
// finds a live record the request is flagged as a replay and exempted from
// rate limiting; the handler decides what to send back. Lookup failures are
// logged and the request proceeds as a first attempt.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	opts = opts.withDefaults()

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > opts.MaxLen || !opts.Pattern.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "Idempotency-Key must be 1-" + strconv.Itoa(opts.MaxLen) + " token characters",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		scope := opts.Scope(c)
		if lookup == nil || scope == "" {
			c.Next()
			return
		}
		found, err := lookup(c.Request.Context(), scope, key, time.Now().UTC())
		switch {
		case err != nil:
			LoggerFrom(c).Warn().Err(err).Str("scope", scope).Msg("idempotency lookup failed")
		case found:
			c.Set(ctxKeyIdemReplay, true)
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	}
}
