// Package sheets defines the outbound ports for the spreadsheet export.
package sheets

import (
	"context"

	"paisa/internal/core"
)

// TransactionWriter appends one transaction row to an external sheet and
// returns an opaque row reference.
type TransactionWriter interface {
	Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
}
