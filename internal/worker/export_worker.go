package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"paisa/internal/sheets"
	"paisa/internal/storage"
)

// ExportWorkerConfig holds configuration for the export worker.
type ExportWorkerConfig struct {
	// PollInterval is how often to check for pending transactions (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max number of transactions per poll cycle (default: 25)
	BatchSize int
}

func DefaultExportWorkerConfig() ExportWorkerConfig {
	return ExportWorkerConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    25,
	}
}

// ExportWorker periodically drains transactions that have not been exported
// yet and appends them to the configured sheet.
type ExportWorker struct {
	store  storage.Store
	writer sheets.TransactionWriter
	config ExportWorkerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewExportWorker(store storage.Store, writer sheets.TransactionWriter, config ExportWorkerConfig) *ExportWorker {
	return &ExportWorker{
		store:  store,
		writer: writer,
		config: config,
	}
}

// Start begins the export loop. Returns an error if already running.
func (w *ExportWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("export worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Export worker started",
		"poll_interval", w.config.PollInterval,
		"batch_size", w.config.BatchSize)

	return nil
}

// Stop signals the loop and waits for completion or ctx expiry.
func (w *ExportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		slog.InfoContext(ctx, "Export worker stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Export worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

func (w *ExportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ExportWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// Drain immediately on startup to recover from downtime.
	w.ProcessPending(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ProcessPending(ctx)
		}
	}
}

// ProcessPending exports one batch of pending transactions. Per-transaction
// failures are marked and skipped so one bad row cannot wedge the queue.
func (w *ExportWorker) ProcessPending(ctx context.Context) {
	pending, err := w.store.PendingExport(ctx, w.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch pending exports", "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	slog.DebugContext(ctx, "Exporting pending transactions", "count", len(pending))

	for _, tx := range pending {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		ref, err := w.writer.Append(ctx, tx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction",
				"transaction_id", tx.ID, "error", err)
			if markErr := w.store.MarkExportError(ctx, tx.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark export error",
					"transaction_id", tx.ID, "error", markErr)
			}
			continue
		}

		if err := w.store.MarkExported(ctx, tx.ID); err != nil {
			// The row landed on the sheet; only the bookkeeping failed.
			slog.ErrorContext(ctx, "Failed to mark transaction exported",
				"transaction_id", tx.ID, "error", err)
			continue
		}

		slog.InfoContext(ctx, "Transaction exported",
			"transaction_id", tx.ID,
			"sheets_ref", ref)
	}
}
