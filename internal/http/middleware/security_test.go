package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func serveSecurity(t *testing.T, opt SecurityOptions, prep func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set(requestIDHeader, "rid-1")
		c.Next()
	})
	r.Use(SecurityHeaders(opt))
	r.GET("/vocabularies", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/vocabularies", nil)
	if prep != nil {
		prep(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	w := serveSecurity(t, SecurityOptions{}, nil)
	h := w.Header()

	want := map[string]string{
		"X-Content-Type-Options":        "nosniff",
		"X-Frame-Options":               "DENY",
		"Referrer-Policy":               "no-referrer",
		"Access-Control-Expose-Headers": "X-Request-ID, ETag",
	}
	for k, v := range want {
		if got := h.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	for _, k := range []string{"Permissions-Policy", "Cache-Control", "Strict-Transport-Security"} {
		if h.Get(k) != "" {
			t.Errorf("%s should be unset, got %q", k, h.Get(k))
		}
	}
}

func TestSecurityHeaders_Policy_NoStore_HSTS(t *testing.T) {
	opt := SecurityOptions{EnableHSTS: true, HSTSMaxAge: time.Hour, NoStore: true, EnablePolicy: true}
	w := serveSecurity(t, opt, func(r *http.Request) { r.TLS = &tls.ConnectionState{} })
	h := w.Header()

	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatal("policy headers missing")
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" {
		t.Fatal("no-store headers missing")
	}
	if got := h.Get("Strict-Transport-Security"); got != "max-age=3600; includeSubDomains" {
		t.Fatalf("HSTS = %q", got)
	}
}

func TestSecurityHeaders_HSTS_OnlyOverHTTPS(t *testing.T) {
	opt := SecurityOptions{EnableHSTS: true}

	if got := serveSecurity(t, opt, nil).Header().Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("plain HTTP got HSTS %q", got)
	}
	w := serveSecurity(t, opt, func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "HTTPS") })
	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=15552000; includeSubDomains" {
		t.Fatalf("proxied HTTPS HSTS = %q", got)
	}
}

func TestExposeHeaders_NoDuplicates(t *testing.T) {
	h := http.Header{}
	h.Set("Access-Control-Expose-Headers", "Content-Length, etag")
	exposeHeaders(h, "X-Request-ID", "ETag")
	if got := h.Get("Access-Control-Expose-Headers"); got != "Content-Length, etag, X-Request-ID" {
		t.Fatalf("got %q", got)
	}
}
