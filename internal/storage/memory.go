package storage

import (
	"context"
	"sort"
	"sync"

	"paisa/internal/core"
)

// MemoryStore is the in-memory Store backend. It mirrors the SQLite
// repository's semantics (identity assignment, dedup, aggregation) without a
// database; it is the default backend and the test double.
type MemoryStore struct {
	mu           sync.RWMutex
	transactions map[int64]core.Transaction
	exportStatus map[int64]string
	settings     core.Settings
	nextID       int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[int64]core.Transaction),
		exportStatus: make(map[int64]string),
		nextID:       1,
	}
}

func (s *MemoryStore) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.SMSID != "" {
		for _, existing := range s.transactions {
			if existing.SMSID == tx.SMSID {
				return core.Transaction{}, ErrDuplicateSMSID
			}
		}
	}

	tx.ID = s.nextID
	s.nextID++
	s.transactions[tx.ID] = tx
	s.exportStatus[tx.ID] = ExportPending
	return tx, nil
}

func (s *MemoryStore) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, ErrNotFound
	}
	return tx, nil
}

func (s *MemoryStore) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[tx.ID]; !ok {
		return core.Transaction{}, ErrNotFound
	}
	s.transactions[tx.ID] = tx
	return tx, nil
}

func (s *MemoryStore) DeleteTransaction(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return ErrNotFound
	}
	delete(s.transactions, id)
	delete(s.exportStatus, id)
	return nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(core.Transaction) bool { return true }), nil
}

func (s *MemoryStore) ListTransactionsByMonth(ctx context.Context, year, month int) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(tx core.Transaction) bool {
		m := tx.Month()
		return m.Year == year && m.Month == month
	}), nil
}

// collect returns matching transactions newest first. Callers hold the lock.
func (s *MemoryStore) collect(match func(core.Transaction) bool) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, tx := range s.transactions {
		if match(tx) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *MemoryStore) MonthsWithActivity(ctx context.Context) ([]core.YearMonth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[core.YearMonth]bool)
	for _, tx := range s.transactions {
		seen[tx.Month()] = true
	}
	out := make([]core.YearMonth, 0, len(seen))
	for ym := range seen {
		out = append(out, ym)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

func (s *MemoryStore) CategorySummary(ctx context.Context, year, month int) ([]core.CategoryTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[core.Category]int64)
	for _, tx := range s.transactions {
		m := tx.Month()
		if m.Year != year || m.Month != month || tx.Direction != core.Debit {
			continue
		}
		totals[tx.Category] += tx.Amount.Paise
	}

	// Collect in category precedence order so equal totals sort stably.
	out := make([]core.CategoryTotal, 0, len(totals))
	for _, category := range core.Categories() {
		if paise, ok := totals[category]; ok && paise > 0 {
			out = append(out, core.CategoryTotal{Category: category, Total: core.Money{Paise: paise}})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Paise > out[j].Total.Paise
	})
	return out, nil
}

func (s *MemoryStore) ExistsBySMSID(ctx context.Context, smsID string) (bool, error) {
	if smsID == "" {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.transactions {
		if tx.SMSID == smsID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) Settings(ctx context.Context) (core.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *MemoryStore) UpdateSettings(ctx context.Context, settings core.Settings) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return s.settings, nil
}

func (s *MemoryStore) PendingExport(ctx context.Context, limit int) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0)
	for id, status := range s.exportStatus {
		if status == ExportPending {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]core.Transaction, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.transactions[id])
	}
	return out, nil
}

func (s *MemoryStore) MarkExported(ctx context.Context, id int64) error {
	return s.setExportStatus(id, ExportDone)
}

func (s *MemoryStore) MarkExportError(ctx context.Context, id int64) error {
	return s.setExportStatus(id, ExportFailed)
}

func (s *MemoryStore) setExportStatus(id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return ErrNotFound
	}
	s.exportStatus[id] = status
	return nil
}

func (s *MemoryStore) Close() error { return nil }
