// Package httpapi wires the Gin transport to the vocabulary service, the
// middleware stack and the route table.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-vocab-backend/docs"
	"github.com/tbourn/go-vocab-backend/internal/config"
	"github.com/tbourn/go-vocab-backend/internal/domain"
	"github.com/tbourn/go-vocab-backend/internal/http/handlers"
	"github.com/tbourn/go-vocab-backend/internal/http/middleware"
	"github.com/tbourn/go-vocab-backend/internal/repo"
	"github.com/tbourn/go-vocab-backend/internal/schedule"
	"github.com/tbourn/go-vocab-backend/internal/services"
)

// vocabRepoShim adapts the repo package's free functions to
// services.VocabularyRepo.
type vocabRepoShim struct{}

func (vocabRepoShim) CreateVocabulary(ctx context.Context, db *gorm.DB, v *domain.Vocabulary) error {
	return repo.CreateVocabulary(ctx, db, v)
}

func (vocabRepoShim) ListVocabularies(ctx context.Context, db *gorm.DB, f repo.ListFilter) ([]domain.Vocabulary, error) {
	return repo.ListVocabularies(ctx, db, f)
}

func (vocabRepoShim) CountDue(ctx context.Context, db *gorm.DB, day string) (int64, error) {
	return repo.CountDue(ctx, db, day)
}

func (vocabRepoShim) GetVocabulary(ctx context.Context, db *gorm.DB, id string) (*domain.Vocabulary, error) {
	return repo.GetVocabulary(ctx, db, id)
}

func (vocabRepoShim) UpdateVocabulary(ctx context.Context, db *gorm.DB, id string, ch repo.VocabularyChanges) (*domain.Vocabulary, error) {
	return repo.UpdateVocabulary(ctx, db, id, ch)
}

func (vocabRepoShim) UpdateSchedule(ctx context.Context, db *gorm.DB, id, step, target string) (*domain.Vocabulary, error) {
	return repo.UpdateSchedule(ctx, db, id, step, target)
}

func (vocabRepoShim) UpdateScheduleBatch(ctx context.Context, db *gorm.DB, ids []string, step, target string) (int64, error) {
	return repo.UpdateScheduleBatch(ctx, db, ids, step, target)
}

func (vocabRepoShim) DeleteVocabularies(ctx context.Context, db *gorm.DB, ids []string) (int64, error) {
	return repo.DeleteVocabularies(ctx, db, ids)
}

// NewService builds the vocabulary service over db with the calendar and
// strictness settings from cfg. The same instance backs the HTTP routes and
// the due digest job.
func NewService(db *gorm.DB, cfg config.Config) *services.VocabularyService {
	svc := services.NewVocabularyService(db, vocabRepoShim{}, schedule.NewCalculator(cfg.Schedule.Location))
	svc.StrictTargets = cfg.Schedule.StrictTargets
	return svc
}

// RegisterRoutes installs the middleware chain and mounts the API under
// cfg.APIBasePath. Order:
//  1. otelgin tracing
//  2. RequestID, then AccessLog, then Recovery
//  3. body limits and Prometheus metrics
//  4. idempotency validation ahead of the rate limiter, so replays skip it
//  5. CORS, security headers, gzip
func RegisterRoutes(r *gin.Engine, svc *services.VocabularyService, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	base := cfg.APIBasePath
	vocabPath := joinPath(base, "/vocabularies")
	importPath := joinPath(base, "/vocabularies/import")
	exportPath := joinPath(base, "/vocabularies/export")

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{
		SkipPaths: []string{"/health", "/metrics"},
	}))
	r.Use(middleware.Recovery())

	r.Use(limitBody(cfg.MaxBodyBytes, map[string]int64{importPath: cfg.UploadMaxBytes}))
	r.Use(middleware.Metrics("/metrics"))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	db := svc.DB
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
			Scope: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == vocabPath {
					return handlers.IdempotencyScopeCreate
				}
				return ""
			},
		},
		func(ctx context.Context, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, scope, key, now)
			if errors.Is(err, repo.ErrNotFound) {
				return false, nil
			}
			if err != nil {
				return false, err
			}
			return rec != nil, nil
		},
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP(), "/health", "/metrics")
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", exportPath})))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(svc, cfg.IdempotencyTTL)
	api := groupWithPrefix(r, base)
	{
		api.GET("/vocabularies", h.ListVocabularies)
		api.POST("/vocabularies", h.CreateVocabulary)
		api.PATCH("/vocabularies", h.PatchVocabularies)
		api.DELETE("/vocabularies", h.DeleteVocabularies)

		api.GET("/vocabularies/due", h.DueVocabularies)
		api.GET("/vocabularies/export", h.ExportVocabularies)
		api.POST("/vocabularies/import", h.ImportVocabularies)

		api.GET("/steps", h.ListSteps)
	}
}

// corsMiddleware allows every origin when none are configured, otherwise
// only the allowlist. Credentials are never allowed.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "If-None-Match", middleware.HeaderIdempotencyKey},
		ExposeHeaders: []string{"X-Request-ID", "ETag", "Content-Disposition", "Idempotency-Replayed"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		// Health probes and curl send no Origin; still advertise ACAO.
		star := func(ctx *gin.Context) {
			ctx.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			ctx.Next()
		}
		return []gin.HandlerFunc{star, cors.New(c)}
	}
	c.AllowOrigins = origins
	return []gin.HandlerFunc{cors.New(c)}
}

// limitBody caps request bodies at def bytes, or at the per-route value in
// perRoute (keyed by gin route template).
func limitBody(def int64, perRoute map[string]int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := def
		if n, ok := perRoute[c.FullPath()]; ok {
			limit = n
		}
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

func joinPath(base, p string) string {
	return strings.TrimRight(base, "/") + p
}
