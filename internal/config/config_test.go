package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every key Load reads so host settings cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "READ_TIMEOUT", "READ_HEADER_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT",
		"MAX_HEADER_BYTES", "MAX_BODY_BYTES", "UPLOAD_MAX_BYTES", "GIN_MODE",
		"LOG_LEVEL", "LOG_PRETTY", "SWAGGER_ENABLED", "API_BASE_PATH",
		"DB_DRIVER", "DB_PATH", "DATABASE_URL", "TIMEZONE", "STRICT_TARGETS", "DIGEST_CRON", "IDEMPOTENCY_PURGE_EVERY",
		"RATE_RPS", "RATE_BURST", "CORS_ALLOWED_ORIGINS", "ENABLE_HSTS", "HSTS_MAX_AGE",
		"IDEMPOTENCY_TTL", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"OTEL_EXPORTER_OTLP_INSECURE", "OTEL_SERVICE_NAME", "OTEL_TRACES_SAMPLER_ARG",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "8080" || cfg.GinMode != "release" || cfg.LogLevel != "info" {
		t.Fatalf("server defaults: %+v", cfg)
	}
	if cfg.APIBasePath != "/api" {
		t.Fatalf("APIBasePath = %q, want /api", cfg.APIBasePath)
	}
	if cfg.DB.Driver != DriverSQLite || cfg.DB.DSN() != "vocab.db" {
		t.Fatalf("db defaults: %+v", cfg.DB)
	}
	if cfg.Schedule.Location == nil || cfg.Schedule.StrictTargets || cfg.Schedule.DigestCron != "0 7 * * *" || cfg.Schedule.PurgeEvery != time.Hour {
		t.Fatalf("schedule defaults: %+v", cfg.Schedule)
	}
	if cfg.MaxBodyBytes != 1<<20 || cfg.UploadMaxBytes != 10<<20 {
		t.Fatalf("body caps: %d %d", cfg.MaxBodyBytes, cfg.UploadMaxBytes)
	}
	if cfg.IdempotencyTTL != 24*time.Hour || cfg.OTEL.ServiceName != "go-vocab-backend" {
		t.Fatalf("misc defaults: %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("GIN_MODE", "weird")
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v2/")
	t.Setenv("DB_DRIVER", "PostgreSQL")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/vocab")
	t.Setenv("TIMEZONE", "Asia/Ho_Chi_Minh")
	t.Setenv("STRICT_TARGETS", "true")
	t.Setenv("DIGEST_CRON", " 30 6 * * 1-5 ")
	t.Setenv("RATE_RPS", "x")
	t.Setenv("RATE_BURST", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("IDEMPOTENCY_TTL", "48h")
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "9000" || cfg.ReadTimeout != 2*time.Second || cfg.GinMode != "release" {
		t.Fatalf("server: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.APIBasePath != "/api/v2" {
		t.Fatalf("logging/docs: %+v", cfg)
	}
	if cfg.DB.Driver != DriverPostgres || cfg.DB.DSN() != "postgres://u:p@db:5432/vocab" {
		t.Fatalf("db: %+v", cfg.DB)
	}
	if cfg.Schedule.Location.String() != "Asia/Ho_Chi_Minh" || !cfg.Schedule.StrictTargets || cfg.Schedule.DigestCron != "30 6 * * 1-5" {
		t.Fatalf("schedule: %+v", cfg.Schedule)
	}
	if cfg.RateRPS != 10.0 || cfg.RateBurst != 3 {
		t.Fatalf("rate: %v %d", cfg.RateRPS, cfg.RateBurst)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.IdempotencyTTL != 48*time.Hour {
		t.Fatalf("security/idem: %+v", cfg)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.SampleRatio != 0.25 {
		t.Fatalf("otel: %+v", cfg.OTEL)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"port", map[string]string{"PORT": "   "}, "PORT must not be empty"},
		{"timeouts", map[string]string{"IDLE_TIMEOUT": "-1s"}, "timeouts"},
		{"header bytes", map[string]string{"MAX_HEADER_BYTES": "0"}, "MAX_HEADER_BYTES"},
		{"upload bytes", map[string]string{"UPLOAD_MAX_BYTES": "-5"}, "UPLOAD_MAX_BYTES"},
		{"driver", map[string]string{"DB_DRIVER": "mysql"}, "DB_DRIVER"},
		{"postgres url", map[string]string{"DB_DRIVER": "postgres"}, "DATABASE_URL"},
		{"timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}, "TIMEZONE"},
		{"rate", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"burst", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"hsts", map[string]string{"HSTS_MAX_AGE": "-1h"}, "HSTS_MAX_AGE"},
		{"idempotency", map[string]string{"IDEMPOTENCY_TTL": "0s"}, "IDEMPOTENCY_TTL"},
		{"purge", map[string]string{"IDEMPOTENCY_PURGE_EVERY": "-1m"}, "IDEMPOTENCY_PURGE_EVERY"},
		{"sampler", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Load() err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestLoad_DigestOff(t *testing.T) {
	clearEnv(t)
	t.Setenv("DIGEST_CRON", "OFF")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Schedule.DigestCron != "" {
		t.Fatalf("DigestCron = %q, want disabled", cfg.Schedule.DigestCron)
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	cfg.Port = ""
	cfg.RateBurst = 0
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "PORT") || !strings.Contains(err.Error(), "RATE_BURST") {
		t.Fatalf("Validate() = %v, want both PORT and RATE_BURST", err)
	}
}

func TestHelpers(t *testing.T) {
	t.Setenv("H_FLOAT", " 3.5 ")
	t.Setenv("H_INT", "x")
	t.Setenv("H_DUR", "150ms")
	t.Setenv("H_BOOL", "maybe")

	if getfloat("H_FLOAT", 0) != 3.5 {
		t.Fatal("getfloat")
	}
	if getint("H_INT", 7) != 7 {
		t.Fatal("getint fallback")
	}
	if getdur("H_DUR", time.Second) != 150*time.Millisecond {
		t.Fatal("getdur")
	}
	if !getbool("H_BOOL", true) || getbool("H_BOOL", false) {
		t.Fatal("getbool should fall back on unknown values")
	}
	for _, v := range []string{"1", "TRUE", " yes ", "on"} {
		t.Setenv("H_BOOL", v)
		if !getbool("H_BOOL", false) {
			t.Fatalf("getbool(%q) = false", v)
		}
	}
}

func TestSplitCSVAndBasePath(t *testing.T) {
	if splitCSV("") != nil {
		t.Fatal("splitCSV empty should be nil")
	}
	if got := splitCSV(" a, ,b ,  c  ,"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("splitCSV = %#v", got)
	}
	for in, want := range map[string]string{"": "/", "v1": "/v1", "/api/": "/api", " / ": "/", "//": "/"} {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}
