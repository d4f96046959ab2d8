package worker

import (
	"context"
	"testing"

	"paisa/internal/amqp"
	"paisa/internal/services"
	"paisa/internal/sms"
	"paisa/internal/storage"
)

const hdfcBody = "HDFC Bank: Rs.1,250.00 debited from a/c *1234 on 15-05-2023 to SWIGGY. Avl bal: Rs.24,780.45. Info: UPI-P2M"

func newIngestWorker(t *testing.T) (*IngestWorker, *storage.MemoryStore) {
	t.Helper()
	table, err := sms.LoadKeywordTable()
	if err != nil {
		t.Fatalf("LoadKeywordTable() error = %v", err)
	}
	store := storage.NewMemoryStore()
	svc := services.NewIngestService(sms.NewParser(sms.NewCategorizer(table)), store)
	return NewIngestWorker(svc), store
}

func TestHandleSMSMessageStoresTransaction(t *testing.T) {
	w, store := newIngestWorker(t)
	ctx := context.Background()

	msg := amqp.NewSMSReceivedMessage("sms-1", hdfcBody)
	if err := w.HandleSMSMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSMSMessage() error = %v", err)
	}

	list, err := store.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("stored %d transactions, want 1", len(list))
	}
	if list[0].SMSID != "sms-1" {
		t.Errorf("SMSID = %q, want %q", list[0].SMSID, "sms-1")
	}
}

func TestHandleSMSMessageExpectedOutcomesAreAcked(t *testing.T) {
	w, store := newIngestWorker(t)
	ctx := context.Background()

	// No pattern match: acked, nothing stored.
	if err := w.HandleSMSMessage(ctx, amqp.NewSMSReceivedMessage("otp", "Your OTP is 482910")); err != nil {
		t.Fatalf("no-match message should not error, got %v", err)
	}

	// Malformed capture: acked, nothing stored.
	bad := "HDFC Bank: Rs.. debited from a/c *1234 on 15-05-2023 to STORE. Avl bal: Rs.1.00"
	if err := w.HandleSMSMessage(ctx, amqp.NewSMSReceivedMessage("bad", bad)); err != nil {
		t.Fatalf("malformed message should not error, got %v", err)
	}

	// Duplicate: first stored, second acked silently.
	if err := w.HandleSMSMessage(ctx, amqp.NewSMSReceivedMessage("sms-1", hdfcBody)); err != nil {
		t.Fatalf("HandleSMSMessage() error = %v", err)
	}
	if err := w.HandleSMSMessage(ctx, amqp.NewSMSReceivedMessage("sms-1", hdfcBody)); err != nil {
		t.Fatalf("duplicate message should not error, got %v", err)
	}

	list, err := store.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("stored %d transactions, want 1", len(list))
	}
}
