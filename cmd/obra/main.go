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

	"obra/internal/amqp"
	"obra/internal/cli"
	apphttp "obra/internal/http"
	"obra/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cli.SetupLogger("obra")

	cfg := cli.LoadAndValidateConfig()

	repo := cli.InitSQLite(cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional in local development; services fall back to
	// skipping mirror events when no publisher is available.
	var publisher services.Publisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		slog.Warn("AMQP unavailable, ledger mirror events disabled", "error", err)
	} else {
		publisher = amqpClient
		defer amqpClient.Close()
	}

	reports := services.NewReportService(repo, cfg.ReportCacheSize, cfg.ReportCacheTTL)
	items := services.NewItemService(repo, publisher, nil, reports)
	txs := services.NewTransactionService(repo, publisher, reports)

	srv := apphttp.NewServer(":"+cfg.Port, items, txs, reports, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ReadyCheck:         repo.Ping,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		slog.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	slog.Info("Starting obra server", "port", cfg.Port, "db_path", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	slog.Info("Server stopped gracefully")
}
