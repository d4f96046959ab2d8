// Package storage persists transactions and settings. Two backends exist:
// a map-backed MemoryStore (default, also the test double) and a SQLite
// repository. Both assign durable integer identities on create.
package storage

import (
	"context"
	"errors"

	"paisa/internal/core"
)

var (
	// ErrNotFound is returned for lookups against unknown ids.
	ErrNotFound = errors.New("transaction not found")
	// ErrDuplicateSMSID is returned when a create would reuse an already
	// stored external message identifier.
	ErrDuplicateSMSID = errors.New("sms id already stored")
)

// Export states for the sheet-export bookkeeping.
const (
	ExportPending = "pending"
	ExportDone    = "exported"
	ExportFailed  = "error"
)

// Store is the storage collaborator contract the pipeline hands candidates
// to. Implementations must be safe for concurrent use.
type Store interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ListTransactionsByMonth(ctx context.Context, year, month int) ([]core.Transaction, error)
	MonthsWithActivity(ctx context.Context) ([]core.YearMonth, error)

	// CategorySummary sums debit amounts per category for one calendar
	// month, excludes categories with a zero total and sorts descending.
	CategorySummary(ctx context.Context, year, month int) ([]core.CategoryTotal, error)

	// ExistsBySMSID supports caller-level deduplication of source messages.
	ExistsBySMSID(ctx context.Context, smsID string) (bool, error)

	Settings(ctx context.Context) (core.Settings, error)
	UpdateSettings(ctx context.Context, s core.Settings) (core.Settings, error)

	// Export bookkeeping for the sheet-export worker.
	PendingExport(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkExported(ctx context.Context, id int64) error
	MarkExportError(ctx context.Context, id int64) error

	Close() error
}
