// Package services orchestrates the extraction pipeline against its
// collaborators: parsing raw messages, deduplicating against storage and
// recording sync bookkeeping.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"paisa/internal/core"
	"paisa/internal/sms"
	"paisa/internal/storage"
)

// writeConcurrency bounds parallel storage writes during a batch ingest.
const writeConcurrency = 4

// Report summarizes one ingest run. Every message lands in exactly one
// counter.
type Report struct {
	Total      int `json:"total"`
	Created    int `json:"created"`
	Duplicates int `json:"duplicates"`
	NoMatch    int `json:"no_match"`
	Malformed  int `json:"malformed"`
	Failed     int `json:"failed"`
}

// IngestService turns raw messages into stored transactions.
type IngestService struct {
	parser *sms.Parser
	store  storage.Store
}

func NewIngestService(parser *sms.Parser, store storage.Store) *IngestService {
	return &IngestService{parser: parser, store: store}
}

// ProcessOne parses and stores a single message. Returns sms.ErrNoMatch for
// unrecognized messages, storage.ErrDuplicateSMSID for already ingested ones
// and *sms.MalformedCaptureError for matched-but-broken captures.
func (s *IngestService) ProcessOne(ctx context.Context, msg sms.RawMessage) (core.Transaction, error) {
	tx, err := s.parser.Parse(msg)
	if err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, *tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("store transaction: %w", err)
	}

	slog.InfoContext(ctx, "Message ingested",
		"sms_id", msg.ID,
		"transaction_id", created.ID,
		"merchant", created.MerchantName,
		"category", created.Category)

	return created, nil
}

// ProcessBatch runs the pipeline over a whole batch. Parsing is sequential
// (pure CPU, pattern order matters for nothing across messages), storage
// writes run concurrently. Per-message failures are counted, not returned;
// the error is reserved for context cancellation.
func (s *IngestService) ProcessBatch(ctx context.Context, msgs []sms.RawMessage) (Report, error) {
	report := Report{Total: len(msgs)}

	candidates := make([]core.Transaction, 0, len(msgs))
	seen := make(map[string]bool)
	for _, msg := range msgs {
		tx, err := s.parser.Parse(msg)
		switch {
		case errors.Is(err, sms.ErrNoMatch):
			report.NoMatch++
			continue
		case err != nil:
			var malformed *sms.MalformedCaptureError
			if errors.As(err, &malformed) {
				slog.WarnContext(ctx, "Dropping malformed message",
					"sms_id", msg.ID,
					"institution", malformed.Institution,
					"field", malformed.Field,
					"error", err)
				report.Malformed++
			} else {
				slog.ErrorContext(ctx, "Parse failed", "sms_id", msg.ID, "error", err)
				report.Failed++
			}
			continue
		}

		// Duplicates inside the batch itself never reach storage.
		if tx.SMSID != "" && seen[tx.SMSID] {
			report.Duplicates++
			continue
		}
		seen[tx.SMSID] = true
		candidates = append(candidates, *tx)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(writeConcurrency)

	for _, candidate := range candidates {
		g.Go(func() error {
			_, err := s.store.CreateTransaction(gctx, candidate)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Created++
			case errors.Is(err, storage.ErrDuplicateSMSID):
				report.Duplicates++
			default:
				slog.ErrorContext(gctx, "Failed to store transaction",
					"sms_id", candidate.SMSID, "error", err)
				report.Failed++
			}
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("ingest batch: %w", err)
	}

	s.recordSync(ctx)

	slog.InfoContext(ctx, "Batch ingested",
		"total", report.Total,
		"created", report.Created,
		"duplicates", report.Duplicates,
		"no_match", report.NoMatch,
		"malformed", report.Malformed,
		"failed", report.Failed)

	return report, nil
}

// recordSync stamps the settings with the sync time. Best effort: a failed
// stamp never fails the ingest that preceded it.
func (s *IngestService) recordSync(ctx context.Context) {
	settings, err := s.store.Settings(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load settings for sync stamp", "error", err)
		return
	}
	settings.LastSyncAt = time.Now()
	if _, err := s.store.UpdateSettings(ctx, settings); err != nil {
		slog.WarnContext(ctx, "Failed to record sync time", "error", err)
	}
}
