package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"paisa/internal/amqp"
	"paisa/internal/config"
	applog "paisa/internal/log"
	"paisa/internal/services"
	"paisa/internal/sheets"
	gsheet "paisa/internal/sheets/google"
	memsheet "paisa/internal/sheets/memory"
	"paisa/internal/sms"
	"paisa/internal/storage"
	"paisa/internal/worker"
)

func main() {
	// Load .env for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting paisa-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := newStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()

	table, err := sms.LoadKeywordTable()
	if err != nil {
		logger.Error("Failed to load merchant keyword table", "error", err)
		os.Exit(1)
	}
	ingest := services.NewIngestService(sms.NewParser(sms.NewCategorizer(table)), store)
	ingestWorker := worker.NewIngestWorker(ingest)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := amqpClient.ConsumeSMSReceived(ctx, ingestWorker.HandleSMSMessage); err != nil {
			if err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}
	}()

	// The export worker only runs when a spreadsheet target is configured.
	// Without one, parsed transactions simply stay local.
	var exportWorker *worker.ExportWorker
	if cfg.SheetExportEnabled() {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exportWorker = newExportWorker(store, sheetsClient, cfg)
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else if os.Getenv("EXPORT_TO_MEMORY") == "true" {
		// In-memory sink for local development and demos.
		exportWorker = newExportWorker(store, memsheet.New(), cfg)
		logger.Info("In-memory export sink enabled")
	} else {
		logger.Info("Sheet export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	if exportWorker != nil {
		if err := exportWorker.Start(ctx); err != nil {
			logger.Error("Failed to start export worker", "error", err)
			os.Exit(1)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	if exportWorker != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := exportWorker.Stop(shutdownCtx); err != nil {
			logger.Error("Export worker shutdown error", "error", err)
		}
	}
	logger.Info("Worker shutdown complete")
}

func newStore(cfg *config.Config) (storage.Store, error) {
	if cfg.DataBackend == "sqlite" {
		return storage.NewSQLiteStore(cfg.SQLiteDBPath)
	}
	return storage.NewMemoryStore(), nil
}

func newExportWorker(store storage.Store, writer sheets.TransactionWriter, cfg *config.Config) *worker.ExportWorker {
	wcfg := worker.DefaultExportWorkerConfig()
	wcfg.BatchSize = cfg.ExportBatchSize
	wcfg.PollInterval = cfg.ExportPollInterval
	return worker.NewExportWorker(store, writer, wcfg)
}
