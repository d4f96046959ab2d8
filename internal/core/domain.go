package core

import (
	"errors"
	"strings"
	"time"
)

// Direction tells whether money left (debit) or entered (credit) the account.
const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

// Spending categories. The declaration order is the categorizer precedence
// order: when a merchant matches keywords of more than one category, the
// first category in this list wins.
const (
	FoodAndDining  Category = "Food & Dining"
	Shopping       Category = "Shopping"
	Entertainment  Category = "Entertainment"
	Transportation Category = "Transportation"
	Utilities      Category = "Utilities"
	Health         Category = "Health"
	Education      Category = "Education"
	Travel         Category = "Travel"
	Groceries      Category = "Groceries"
	Investment     Category = "Investment"
	Salary         Category = "Salary"
	Rent           Category = "Rent"
	OtherIncome    Category = "Other Income"
	OtherExpense   Category = "Other Expense"
)

// Payment channels a transaction can originate from.
const (
	SourceUPI        PaymentSource = "UPI"
	SourceDebitCard  PaymentSource = "Debit Card"
	SourceCreditCard PaymentSource = "Credit Card"
	SourceNetBanking PaymentSource = "Net Banking"
	SourceATM        PaymentSource = "ATM"
	SourceOther      PaymentSource = "Other"
)

type (
	Direction     string
	Category      string
	PaymentSource string

	// Transaction is one normalized money movement. Records produced by the
	// SMS pipeline carry a date-only Timestamp (midnight local) and retain
	// the original message body for audit; records entered through the API
	// may carry a full timestamp and no SMS fields.
	Transaction struct {
		ID           int64
		Timestamp    time.Time
		Amount       Money
		Direction    Direction
		Description  string
		MerchantName string // optional
		Category     Category
		Source       PaymentSource
		SMSBody      string // optional, original message text
		SMSID        string // optional, external message identifier
	}

	// Settings is the single-row application configuration.
	Settings struct {
		SMSPermissionGranted bool
		DarkMode             bool
		LastSyncAt           time.Time // zero if never synced
	}

	// CategoryTotal is a debit sum for one category within a month.
	CategoryTotal struct {
		Category Category
		Total    Money
	}

	// YearMonth identifies a calendar month with recorded activity.
	YearMonth struct {
		Year  int
		Month int // 1-12
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidSource    = errors.New("invalid payment source")
	ErrEmptyDescription = errors.New("empty description")
	ErrZeroTimestamp    = errors.New("timestamp cannot be zero")
)

var categories = []Category{
	FoodAndDining, Shopping, Entertainment, Transportation, Utilities,
	Health, Education, Travel, Groceries, Investment, Salary, Rent,
	OtherIncome, OtherExpense,
}

var sources = []PaymentSource{
	SourceUPI, SourceDebitCard, SourceCreditCard,
	SourceNetBanking, SourceATM, SourceOther,
}

// Categories returns all categories in precedence order. The returned slice
// is a copy; the canonical order never changes at runtime.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Sources returns all payment sources.
func Sources() []PaymentSource {
	out := make([]PaymentSource, len(sources))
	copy(out, sources)
	return out
}

func (d Direction) Valid() bool {
	return d == Debit || d == Credit
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (s PaymentSource) Valid() bool {
	for _, known := range sources {
		if s == known {
			return true
		}
	}
	return false
}

// ParseDirection validates an incoming direction string against the closed set.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", ErrInvalidDirection
	}
	return d, nil
}

// ParseCategory validates an incoming category string against the closed set.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// ParseSource validates an incoming payment source string against the closed set.
func ParseSource(s string) (PaymentSource, error) {
	src := PaymentSource(s)
	if !src.Valid() {
		return "", ErrInvalidSource
	}
	return src, nil
}

func (t Transaction) Validate() error {
	if t.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Direction.Valid() {
		return ErrInvalidDirection
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	if !t.Source.Valid() {
		return ErrInvalidSource
	}
	return nil
}

// Month returns the calendar month the transaction belongs to.
func (t Transaction) Month() YearMonth {
	return YearMonth{Year: t.Timestamp.Year(), Month: int(t.Timestamp.Month())}
}
