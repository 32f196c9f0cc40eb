package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"courthouse/internal/audit"
	courthandler "courthouse/internal/court/handler"
	courtmetrics "courthouse/internal/court/metrics"
	"courthouse/internal/court/service"
	"courthouse/internal/platform/config"
	"courthouse/internal/platform/health"
	"courthouse/internal/platform/logger"
	"courthouse/internal/platform/tracer"
	httptransport "courthouse/internal/transport/http"
	request "courthouse/pkg/platform/middleware/request"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.Environment)

	if err := run(cfg, log); err != nil {
		log.Error("courthouse stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing courthouse",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"lane_count", cfg.LaneCount,
		"id_width", cfg.IDWidth,
		"clerk_routes", cfg.CourtToken != "",
	)
	if cfg.CourtToken == "" {
		log.Warn("COURT_TOKEN is not set, clerk routes will reject every request")
	}

	auditStore := audit.NewInMemoryStore()
	publisher := audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(cfg.AuditBufferSize),
		audit.WithPublisherLogger(log),
	)

	svc, err := service.New(
		service.Config{IDWidth: cfg.IDWidth, LaneCount: cfg.LaneCount},
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(courtmetrics.New(prometheus.DefaultRegisterer)),
		service.WithTracer(tracer.NewOTel()),
		service.WithHashCost(cfg.BcryptCost),
	)
	if err != nil {
		publisher.Close()
		return err
	}

	healthHandler := health.New(cfg.Environment)
	healthHandler.SetStats(svc.Stats)
	healthHandler.RegisterCheck("lanes", func() error {
		if svc.FreeLanes() == 0 {
			return errors.New("all judge lanes are bound")
		}
		return nil
	})

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Court:      courthandler.New(svc, log),
		Audit:      audit.NewHandler(publisher, log),
		Health:     healthHandler,
		CourtToken: cfg.CourtToken,
		Logger:     log,
		Metrics:    request.NewMetrics(prometheus.DefaultRegisterer),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	// Emits from handlers that outlive a timed-out shutdown fail with ErrPublisherClosed.
	publisher.Close()
	return err
}
