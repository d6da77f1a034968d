package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mauv0809/courtbooker/internal/config"
	"github.com/mauv0809/courtbooker/internal/logger"
	"github.com/mauv0809/courtbooker/internal/metrics"
	"github.com/mauv0809/courtbooker/internal/notifier"
	"github.com/mauv0809/courtbooker/internal/notifier/slack"
	"github.com/mauv0809/courtbooker/internal/runner"
	"github.com/mauv0809/courtbooker/internal/server"
)

func main() {
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	serverCfg := config.LoadServer()

	base, err := config.Load(serverCfg.BaseConfigPath)
	if err != nil {
		log.Warn("Base config not loaded, starting with an empty base", "path", serverCfg.BaseConfigPath, "error", err)
	}

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	var runNotifier notifier.Notifier
	if token := os.Getenv("SLACK_TOKEN"); token != "" {
		runNotifier = slack.NewNotifier(token, os.Getenv("SLACK_CHANNEL_ID"), metricsSvc)
	}

	runnerOpts := []runner.Option{runner.WithMetrics(metricsSvc)}
	if runNotifier != nil {
		runnerOpts = append(runnerOpts, runner.WithNotifier(runNotifier))
	}
	bookingRunner := runner.New(&logger.Charm{}, runnerOpts...)

	spool, err := server.NewSpool(serverCfg.SpoolDir)
	if err != nil {
		log.Fatalf("Failed to initialize spool: %s", err)
	}

	queue := server.NewQueue(func(ctx context.Context, job server.Job) {
		cfg, err := config.Load(job.ConfigPath)
		if err != nil {
			log.Error("Failed to load spooled config", "config", job.ConfigPath, "error", err)
			return
		}
		if _, err := bookingRunner.Run(ctx, cfg, job.Description); err != nil {
			log.Error("Booking run failed", "config", job.ConfigPath, "error", err)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	spool.StartSweeper(ctx)

	s := server.NewServer(serverCfg, base, queue, spool, metricsHandler)

	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + serverCfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Server started", "port", serverCfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
