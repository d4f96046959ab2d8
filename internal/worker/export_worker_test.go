package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"paisa/internal/core"
	"paisa/internal/sheets/memory"
	"paisa/internal/storage"
)

type failingWriter struct{}

func (failingWriter) Append(context.Context, core.Transaction) (string, error) {
	return "", errors.New("sheet unavailable")
}

func seedTransaction(t *testing.T, store storage.Store, smsID string) core.Transaction {
	t.Helper()
	tx, err := store.CreateTransaction(context.Background(), core.Transaction{
		Timestamp:    time.Date(2023, time.May, 15, 0, 0, 0, 0, time.Local),
		Amount:       core.Money{Paise: 125000},
		Direction:    core.Debit,
		Description:  "Payment to SWIGGY",
		MerchantName: "SWIGGY",
		Category:     core.FoodAndDining,
		Source:       core.SourceUPI,
		SMSID:        smsID,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	return tx
}

func TestProcessPendingExportsAndMarks(t *testing.T) {
	store := storage.NewMemoryStore()
	sheet := memory.New()
	w := NewExportWorker(store, sheet, DefaultExportWorkerConfig())
	ctx := context.Background()

	first := seedTransaction(t, store, "e-1")
	second := seedTransaction(t, store, "e-2")

	w.ProcessPending(ctx)

	rows := sheet.Rows()
	if len(rows) != 2 {
		t.Fatalf("exported %d rows, want 2", len(rows))
	}
	if rows[0].ID != first.ID || rows[1].ID != second.ID {
		t.Errorf("export order = [%d, %d], want [%d, %d]",
			rows[0].ID, rows[1].ID, first.ID, second.ID)
	}

	pending, err := store.PendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExport() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after export = %d, want 0", len(pending))
	}

	// Re-running exports nothing new.
	w.ProcessPending(ctx)
	if len(sheet.Rows()) != 2 {
		t.Errorf("re-run exported extra rows: %d", len(sheet.Rows()))
	}
}

func TestProcessPendingMarksFailures(t *testing.T) {
	store := storage.NewMemoryStore()
	w := NewExportWorker(store, failingWriter{}, DefaultExportWorkerConfig())
	ctx := context.Background()

	seedTransaction(t, store, "e-1")

	w.ProcessPending(ctx)

	// Failed rows leave the pending queue so they cannot wedge it.
	pending, err := store.PendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExport() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after failure = %d, want 0", len(pending))
	}
}

func TestExportWorkerLifecycle(t *testing.T) {
	store := storage.NewMemoryStore()
	sheet := memory.New()
	config := ExportWorkerConfig{PollInterval: 10 * time.Millisecond, BatchSize: 5}
	w := NewExportWorker(store, sheet, config)
	ctx := context.Background()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := w.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}
	if !w.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}

	seedTransaction(t, store, "e-1")

	deadline := time.Now().Add(2 * time.Second)
	for len(sheet.Rows()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if len(sheet.Rows()) != 1 {
		t.Fatalf("exported %d rows, want 1", len(sheet.Rows()))
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := w.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if w.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}
