package services

import (
	"context"
	"errors"
	"testing"

	"paisa/internal/core"
	"paisa/internal/sms"
	"paisa/internal/storage"
)

func newIngestService(t *testing.T) (*IngestService, *storage.MemoryStore) {
	t.Helper()
	table, err := sms.LoadKeywordTable()
	if err != nil {
		t.Fatalf("LoadKeywordTable() error = %v", err)
	}
	store := storage.NewMemoryStore()
	return NewIngestService(sms.NewParser(sms.NewCategorizer(table)), store), store
}

const hdfcBody = "HDFC Bank: Rs.1,250.00 debited from a/c *1234 on 15-05-2023 to SWIGGY. Avl bal: Rs.24,780.45. Info: UPI-P2M"

func TestProcessOne(t *testing.T) {
	svc, store := newIngestService(t)
	ctx := context.Background()

	created, err := svc.ProcessOne(ctx, sms.RawMessage{ID: "sms-1", Body: hdfcBody})
	if err != nil {
		t.Fatalf("ProcessOne() error = %v", err)
	}
	if created.ID == 0 {
		t.Fatal("ProcessOne() stored no transaction")
	}
	if created.Category != core.FoodAndDining {
		t.Errorf("Category = %q, want %q", created.Category, core.FoodAndDining)
	}

	stored, err := store.GetTransaction(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if stored.SMSID != "sms-1" {
		t.Errorf("SMSID = %q, want %q", stored.SMSID, "sms-1")
	}
}

func TestProcessOneNoMatch(t *testing.T) {
	svc, _ := newIngestService(t)

	_, err := svc.ProcessOne(context.Background(), sms.RawMessage{ID: "x", Body: "Your OTP is 482910"})
	if !errors.Is(err, sms.ErrNoMatch) {
		t.Fatalf("ProcessOne() error = %v, want ErrNoMatch", err)
	}
}

func TestProcessOneDuplicate(t *testing.T) {
	svc, _ := newIngestService(t)
	ctx := context.Background()

	if _, err := svc.ProcessOne(ctx, sms.RawMessage{ID: "sms-1", Body: hdfcBody}); err != nil {
		t.Fatalf("first ProcessOne() error = %v", err)
	}
	_, err := svc.ProcessOne(ctx, sms.RawMessage{ID: "sms-1", Body: hdfcBody})
	if !errors.Is(err, storage.ErrDuplicateSMSID) {
		t.Fatalf("second ProcessOne() error = %v, want ErrDuplicateSMSID", err)
	}
}

func TestProcessBatch(t *testing.T) {
	svc, store := newIngestService(t)
	ctx := context.Background()

	msgs := []sms.RawMessage{
		{ID: "sms-1", Body: hdfcBody},
		{ID: "sms-2", Body: "ICICI Bank: Rs.35,000.00 credited to your a/c XX5678 on 01-05-2023 by ACME PAYROLL. Available balance: Rs.50,120.00"},
		{ID: "sms-1", Body: hdfcBody}, // duplicate inside the batch
		{ID: "sms-3", Body: "Your OTP is 482910"},
		{ID: "sms-4", Body: "HDFC Bank: Rs.. debited from a/c *1234 on 15-05-2023 to STORE. Avl bal: Rs.1.00"},
	}

	report, err := svc.ProcessBatch(ctx, msgs)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}

	want := Report{Total: 5, Created: 2, Duplicates: 1, NoMatch: 1, Malformed: 1}
	if report != want {
		t.Fatalf("Report = %+v, want %+v", report, want)
	}

	list, err := store.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("stored = %d transactions, want 2", len(list))
	}

	settings, err := store.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if settings.LastSyncAt.IsZero() {
		t.Error("LastSyncAt not stamped after batch")
	}
}

func TestProcessBatchSkipsAlreadyStored(t *testing.T) {
	svc, _ := newIngestService(t)
	ctx := context.Background()

	if _, err := svc.ProcessOne(ctx, sms.RawMessage{ID: "sms-1", Body: hdfcBody}); err != nil {
		t.Fatalf("ProcessOne() error = %v", err)
	}

	report, err := svc.ProcessBatch(ctx, []sms.RawMessage{{ID: "sms-1", Body: hdfcBody}})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if report.Created != 0 || report.Duplicates != 1 {
		t.Fatalf("Report = %+v, want 0 created / 1 duplicate", report)
	}
}

func TestProcessBatchEmpty(t *testing.T) {
	svc, store := newIngestService(t)
	ctx := context.Background()

	report, err := svc.ProcessBatch(ctx, nil)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if report != (Report{}) {
		t.Fatalf("Report = %+v, want zero", report)
	}

	// Even an empty run counts as a sync.
	settings, err := store.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if settings.LastSyncAt.IsZero() {
		t.Error("LastSyncAt not stamped after empty batch")
	}
}
