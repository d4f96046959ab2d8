// Package worker hosts the background halves of the pipeline: the AMQP
// ingest consumer and the periodic sheet exporter.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"paisa/internal/amqp"
	"paisa/internal/services"
	"paisa/internal/sms"
	"paisa/internal/storage"
)

// IngestWorker consumes raw SMS messages off the queue and runs them through
// the extraction pipeline.
type IngestWorker struct {
	ingest *services.IngestService
}

func NewIngestWorker(ingest *services.IngestService) *IngestWorker {
	return &IngestWorker{ingest: ingest}
}

// HandleSMSMessage processes one queued message. Expected outcomes (no
// pattern match, duplicate, malformed capture) return nil so the delivery is
// acked and never requeued; only infrastructure failures propagate.
func (w *IngestWorker) HandleSMSMessage(ctx context.Context, msg *amqp.SMSReceivedMessage) error {
	raw := sms.RawMessage{ID: msg.ID, Body: msg.Body, ReceivedAt: msg.ReceivedAt}

	created, err := w.ingest.ProcessOne(ctx, raw)
	switch {
	case errors.Is(err, sms.ErrNoMatch):
		slog.DebugContext(ctx, "Message matches no institution pattern", "sms_id", msg.ID)
		return nil
	case errors.Is(err, storage.ErrDuplicateSMSID):
		slog.InfoContext(ctx, "Message already ingested", "sms_id", msg.ID)
		return nil
	case err != nil:
		var malformed *sms.MalformedCaptureError
		if errors.As(err, &malformed) {
			slog.WarnContext(ctx, "Dropping malformed message",
				"sms_id", msg.ID,
				"institution", malformed.Institution,
				"field", malformed.Field,
				"error", err)
			return nil
		}
		return fmt.Errorf("process message %s: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Queued message ingested",
		"sms_id", msg.ID,
		"transaction_id", created.ID)
	return nil
}
