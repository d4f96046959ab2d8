package core

import (
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		Timestamp:   time.Date(2023, 5, 15, 0, 0, 0, 0, time.Local),
		Amount:      Money{Paise: 125000},
		Direction:   Debit,
		Description: "Payment to SWIGGY",
		Category:    FoodAndDining,
		Source:      SourceUPI,
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTransaction().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"zero timestamp", func(tx *Transaction) { tx.Timestamp = time.Time{} }, ErrZeroTimestamp},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"bad direction", func(tx *Transaction) { tx.Direction = "transfer" }, ErrInvalidDirection},
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"bad category", func(tx *Transaction) { tx.Category = "Snacks" }, ErrInvalidCategory},
		{"bad source", func(tx *Transaction) { tx.Source = "Cheque" }, ErrInvalidSource},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			if err := tx.Validate(); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestClosedSets(t *testing.T) {
	if got := len(Categories()); got != 14 {
		t.Fatalf("expected 14 categories, got %d", got)
	}
	if got := len(Sources()); got != 6 {
		t.Fatalf("expected 6 sources, got %d", got)
	}
	if _, err := ParseCategory("Food & Dining"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if _, err := ParseCategory("food & dining"); err == nil {
		t.Fatal("category parsing must be exact, expected error")
	}
	if _, err := ParseSource("Net Banking"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if _, err := ParseDirection("debit"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if _, err := ParseDirection("withdrawn"); err == nil {
		t.Fatal("expected error for unknown direction")
	}
}

func TestTransactionMonth(t *testing.T) {
	tx := validTransaction()
	if m := tx.Month(); m.Year != 2023 || m.Month != 5 {
		t.Fatalf("expected 2023-05, got %+v", m)
	}
}
