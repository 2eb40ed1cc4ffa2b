package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestFail_Envelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		status  int
		code    string
		logged  bool
		wantLog string
	}{
		{http.StatusBadRequest, ErrCodeBadRequest, false, ""},
		{http.StatusNotFound, ErrCodeNotFound, false, ""},
		{http.StatusInternalServerError, ErrCodeListFailed, true, `"route":"/words/:id"`},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			var buf bytes.Buffer
			lg := zerolog.New(&buf)

			r := gin.New()
			r.Use(func(c *gin.Context) {
				c.Writer.Header().Set("X-Request-ID", "rid-7")
				c.Set("logger", &lg)
				c.Next()
			})
			reached := false
			r.GET("/words/:id", func(c *gin.Context) {
				fail(c, tc.status, tc.code, "something happened")
			}, func(*gin.Context) { reached = true })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/words/42", nil))

			if w.Code != tc.status {
				t.Fatalf("status=%d want %d", w.Code, tc.status)
			}
			if reached {
				t.Fatal("fail must abort the chain")
			}
			var er ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
				t.Fatalf("json: %v", err)
			}
			if er != (ErrorResponse{RequestID: "rid-7", Code: tc.code, Message: "something happened"}) {
				t.Fatalf("body=%+v", er)
			}
			if got := buf.Len() > 0; got != tc.logged {
				t.Fatalf("logged=%v want %v: %s", got, tc.logged, buf.String())
			}
			if tc.logged && !strings.Contains(buf.String(), tc.wantLog) {
				t.Fatalf("log %s missing %s", buf.String(), tc.wantLog)
			}
		})
	}
}

func TestFail_NoRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.NoRoute(func(c *gin.Context) { Fail(c, http.StatusNotFound, ErrCodeNotFound, "route not found") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	if strings.Contains(w.Body.String(), "request_id") {
		t.Fatalf("empty request id should be omitted: %s", w.Body.String())
	}
}
