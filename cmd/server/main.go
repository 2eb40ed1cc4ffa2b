// Command server runs the vocabulary review API.
//
//	@title			Vocabulary Review API
//	@version		1.0
//	@description	Spaced-review vocabulary store: records carry a step label and the calendar date they are next due.
//	@BasePath		/api
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-vocab-backend/internal/config"
	httpapi "github.com/tbourn/go-vocab-backend/internal/http"
	"github.com/tbourn/go-vocab-backend/internal/jobs"
	"github.com/tbourn/go-vocab-backend/internal/observability"
	"github.com/tbourn/go-vocab-backend/internal/repo"
	"github.com/tbourn/go-vocab-backend/internal/sysutil"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()
	if *showVersion {
		fmt.Printf("go-vocab-backend %s (built %s, commit %s)\n", Version, BuildDate, GitCommit)
		return
	}

	// A missing .env is normal in containers.
	_ = godotenv.Load()

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	sysutil.ConfigureLogger(cfg.LogLevel, cfg.LogPretty, os.Stderr)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, Version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.Open(cfg.DB.Driver, cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.DB.Driver, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if cfg.OTEL.Enabled {
		if err := observability.InstrumentDB(db, nil); err != nil {
			return fmt.Errorf("instrument db: %w", err)
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	svc := httpapi.NewService(db, cfg)

	sched := jobs.NewScheduler(cfg.Schedule.Location)
	if err := sched.RegisterDigest(cfg.Schedule.DigestCron, &jobs.DueDigest{Counter: svc}); err != nil {
		return fmt.Errorf("digest schedule %q: %w", cfg.Schedule.DigestCron, err)
	}
	if err := sched.RegisterPurge(cfg.Schedule.PurgeEvery, func(ctx context.Context, now time.Time) (int64, error) {
		return repo.PurgeExpiredIdempotency(ctx, db, now)
	}); err != nil {
		return fmt.Errorf("purge schedule: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	r := gin.New()
	httpapi.RegisterRoutes(r, svc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("db", cfg.DB.Driver).
			Str("tz", cfg.Schedule.Location.String()).
			Str("version", Version).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}
