// Package memory is an in-process TransactionWriter used when no Google
// credentials are configured, and as the test double for the export worker.
package memory

import (
	"context"
	"fmt"
	"sync"

	"paisa/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

func New() *Store {
	return &Store{}
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...)
}
