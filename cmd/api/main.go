package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bankapi/internal/shared/config"
	"bankapi/internal/shared/logger"
	"bankapi/internal/shared/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log := logger.New(logger.Options{})
		log.Fatal().Err(err).Msg("application error")
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry (traces + Prometheus metrics)
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.Telemetry.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
		}, log)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("telemetry shutdown failed")
			}
		}()
	}

	deps, err := NewDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	handler := SetupRoutes(deps, cfg, log)
	srv, redirectSrv, errc := StartServers(NewServerConfigFromConfig(handler, cfg), log)

	// Wait for interrupt signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-errc:
		GracefulShutdown(srv, redirectSrv, shutdownTimeout, log)
		return err
	}

	GracefulShutdown(srv, redirectSrv, shutdownTimeout, log)
	return nil
}
