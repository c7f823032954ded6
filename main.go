package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/freekieb7/rawhttp/config"
	"github.com/freekieb7/rawhttp/filesystem"
	"github.com/freekieb7/rawhttp/handlers"
	"github.com/freekieb7/rawhttp/http"
	"github.com/freekieb7/rawhttp/schedule"
	"github.com/freekieb7/rawhttp/session/storage"
	"github.com/freekieb7/rawhttp/telemetry"
	"go.opentelemetry.io/otel"
)

const (
	serviceName     = "rawhttp"
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTel {
		shutdown, setupErr := telemetry.Setup(ctx, serviceName)
		if setupErr != nil {
			return fmt.Errorf("setting up telemetry: %w", setupErr)
		}
		defer func() {
			err = errors.Join(err, shutdown(context.Background()))
		}()
	}

	fs := filesystem.NewLocalFileSystem()

	logFile, err := telemetry.OpenRotatingFile(fs, cfg.LogDir, telemetry.DefaultLogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger := telemetry.NewLogger(serviceName, io.MultiWriter(os.Stdout, logFile), cfg.LogLevel, cfg.OTel)
	slog.SetDefault(logger)

	metrics, err := telemetry.NewMetrics(otel.Meter(serviceName))
	if err != nil {
		return err
	}

	store := storage.NewMemorySessionStore()
	defer store.Close()

	scheduler := schedule.NewScheduler(logger)
	for _, job := range []*schedule.Job{
		storage.SweepJob(store, storage.IdleTimeout, storage.SweepInterval, logger),
		telemetry.RotationJob(logFile, telemetry.RotationInterval),
	} {
		if err := scheduler.AddJob(job); err != nil {
			return err
		}
	}
	go scheduler.Run(ctx)

	server := http.NewServer(serviceName)
	server.Logger = logger
	server.Metrics = metrics
	server.Workers = cfg.Workers
	server.ReusePort = cfg.ReusePort
	server.Pipeline.Use(
		http.Recover(logger),
		http.Timer(),
		http.DiagnosticHeader(http.DiagnosticHeaderName, http.DiagnosticHeaderValue),
		http.Logger(logger, metrics),
		http.SessionTracker(store),
		http.Auth(),
	)
	handlers.Register(&server.Router, fs, cfg.PublicDir)

	serveErr := make(chan error, 1)
	go func() {
		if cfg.TLSEnabled() {
			tlsConfig, err := cfg.TLSConfig()
			if err != nil {
				serveErr <- err
				return
			}
			serveErr <- server.ListenAndServeTLS(ctx, cfg.Addr, tlsConfig)
			return
		}
		serveErr <- server.ListenAndServe(ctx, cfg.Addr)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
