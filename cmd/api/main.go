package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/noah-isme/cartsync/internal/app"
	"github.com/noah-isme/cartsync/internal/config"
	"github.com/noah-isme/cartsync/internal/health"
	"github.com/noah-isme/cartsync/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var registry *prometheus.Registry
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, registererOrDefault(registry))

	shutdownTracer, err := obs.InitTracer(ctx, obs.TracingConfig{
		Enabled:       cfg.TracingEnabled,
		ServiceName:   "cartsync",
		Endpoint:      cfg.TracingEndpoint,
		SamplingRatio: cfg.TracingSampling,
		Environment:   cfg.AppEnv,
	})
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
		cfg.TracingEnabled = false
		shutdownTracer = func(context.Context) error { return nil }
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown tracer")
		}
	}()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	deps, err := app.Open(openCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.StoreDriver).Msg("open cart store")
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Error().Err(err).Msg("close dependencies")
		}
	}()

	handler, err := app.NewRouter(cfg, deps, logger, app.Observability{Registry: registry, Tracing: cfg.TracingEnabled})
	if err != nil {
		logger.Fatal().Err(err).Str("listing", cfg.ListingPath).Msg("build router")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server exited unexpectedly")
		}
	case <-ctx.Done():
		health.SetReady(false)
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}
}

func registererOrDefault(reg *prometheus.Registry) prometheus.Registerer {
	if reg == nil {
		return prometheus.DefaultRegisterer
	}
	return reg
}
