package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"obra/internal/amqp"
	"obra/internal/cli"
	"obra/internal/sheets"
	gsheet "obra/internal/sheets/google"
	mem "obra/internal/sheets/memory"
	"obra/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cli.SetupLogger("obra-worker")

	slog.Info("Starting obra-worker")

	cfg := cli.LoadAndValidateConfig()

	repo := cli.InitSQLite(cfg.SQLiteDBPath)
	defer repo.Close()

	// The ledger mirror backend: Google Sheets when configured, an
	// in-memory store otherwise so local runs still exercise the worker.
	var (
		writer  sheets.LedgerWriter
		deleter sheets.LedgerDeleter
	)
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			slog.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer, deleter = client, client
		slog.Info("Google Sheets ledger mirror initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleLedgerSheet)
	} else {
		store := mem.New()
		writer, deleter = store, store
		slog.Info("Ledger mirror disabled, using in-memory store - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		slog.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ledgerWorker := worker.NewLedgerWorker(repo, writer, deleter, repo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeLedgerEvents(gctx, ledgerWorker.HandleMessage)
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received, stopping consumer")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("Worker stopped gracefully")
}
