package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"paisa/internal/config"
	apphttp "paisa/internal/http"
	applog "paisa/internal/log"
	"paisa/internal/services"
	"paisa/internal/sms"
	"paisa/internal/storage"
)

func main() {
	// Load .env for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

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
	logger.Info("Storage initialized", "backend", cfg.DataBackend)

	table, err := sms.LoadKeywordTable()
	if err != nil {
		logger.Error("Failed to load merchant keyword table", "error", err)
		os.Exit(1)
	}
	parser := sms.NewParser(sms.NewCategorizer(table))
	ingest := services.NewIngestService(parser, store)

	srv := apphttp.NewServer(":"+cfg.Port, store, ingest)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting paisa server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

func newStore(cfg *config.Config) (storage.Store, error) {
	if cfg.DataBackend == "sqlite" {
		return storage.NewSQLiteStore(cfg.SQLiteDBPath)
	}
	return storage.NewMemoryStore(), nil
}
