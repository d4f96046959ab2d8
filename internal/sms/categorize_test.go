package sms

import (
	"testing"

	"paisa/internal/core"
)

func newTestCategorizer(t *testing.T) *Categorizer {
	t.Helper()
	table, err := LoadKeywordTable()
	if err != nil {
		t.Fatalf("load keyword table: %v", err)
	}
	return NewCategorizer(table)
}

func TestCategorizeEveryCategoryReachable(t *testing.T) {
	c := newTestCategorizer(t)

	// One probe per category, chosen so no earlier category's keywords hit.
	probes := map[core.Category]string{
		core.FoodAndDining:  "SWIGGY",
		core.Shopping:       "FLIPKART",
		core.Entertainment:  "NETFLIX",
		core.Transportation: "IRCTC",
		core.Utilities:      "ELECTRICITY BOARD",
		core.Health:         "APOLLO PHARMACY",
		core.Education:      "UNACADEMY",
		core.Travel:         "OYO ROOMS",
		core.Groceries:      "BIGBASKET",
		core.Investment:     "ZERODHA",
		core.Salary:         "PAYROLL CREDIT",
		core.Rent:           "LANDLORD TRANSFER",
		core.OtherIncome:    "CASHBACK",
		core.OtherExpense:   "PENALTY LEVIED",
	}
	if len(probes) != len(core.Categories()) {
		t.Fatalf("probe table incomplete: %d probes for %d categories", len(probes), len(core.Categories()))
	}
	for category, probe := range probes {
		if got := c.Categorize(probe); got != category {
			t.Errorf("Categorize(%q) = %q, want %q", probe, got, category)
		}
	}
}

func TestCategorizePrecedence(t *testing.T) {
	c := newTestCategorizer(t)
	// "hotel" is listed under both Food & Dining and Travel; the declared
	// category order decides.
	if got := c.Categorize("TAJ HOTEL"); got != core.FoodAndDining {
		t.Fatalf("Categorize(TAJ HOTEL) = %q, want %q", got, core.FoodAndDining)
	}
}

func TestCategorizeSalaryFallback(t *testing.T) {
	c := newTestCategorizer(t)
	// No keyword hit, but salary-shaped with the elided vowel.
	if got := c.Categorize("ACME CORP INCME"); got != core.Salary {
		t.Fatalf("expected Salary fallback, got %q", got)
	}
}

func TestCategorizeDefault(t *testing.T) {
	c := newTestCategorizer(t)
	if got := c.Categorize("XQZWJ VENTURES"); got != core.OtherExpense {
		t.Fatalf("expected Other Expense default, got %q", got)
	}
}

func TestCategorizeDeterministic(t *testing.T) {
	c := newTestCategorizer(t)
	for _, in := range []string{"TAJ HOTEL", "SWIGGY", "XQZWJ VENTURES", ""} {
		first := c.Categorize(in)
		for i := 0; i < 10; i++ {
			if got := c.Categorize(in); got != first {
				t.Fatalf("Categorize(%q) not deterministic: %q then %q", in, first, got)
			}
		}
	}
}
