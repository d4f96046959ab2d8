package sms

import (
	"regexp"
	"strings"

	"paisa/internal/core"
)

// Secondary heuristic for inputs no keyword catches: salary-shaped text,
// tolerant of the common elided-vowel misspelling "incme".
var salaryPattern = regexp.MustCompile(`(?i)salary|payroll|inc[o]?me`)

// Categorizer maps free-text merchant/description strings to spending
// categories by keyword lookup. Pure function of its input and the static
// table; deterministic.
type Categorizer struct {
	table *KeywordTable
}

func NewCategorizer(table *KeywordTable) *Categorizer {
	return &Categorizer{table: table}
}

// Categorize lowercases the input and scans categories in precedence order,
// returning the first category with any keyword substring hit. Overlapping
// keywords ("hotel" is listed under both Food & Dining and Travel) resolve
// strictly by that order. Unmatched text falls through the salary heuristic
// and then defaults to Other Expense.
func (c *Categorizer) Categorize(merchantOrDescription string) core.Category {
	lower := strings.ToLower(merchantOrDescription)

	for _, category := range core.Categories() {
		for _, kw := range c.table.Keywords(category) {
			if strings.Contains(lower, kw) {
				return category
			}
		}
	}

	if salaryPattern.MatchString(lower) {
		return core.Salary
	}

	return core.OtherExpense
}
