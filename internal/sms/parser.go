package sms

import (
	"errors"
	"fmt"
	"strings"

	"paisa/internal/core"
)

// ErrNoMatch reports that a message matches no known institution pattern.
// This is an expected outcome, not a failure; callers decide whether to log
// or silently drop the message.
var ErrNoMatch = errors.New("message matches no known institution pattern")

// MalformedCaptureError reports that an institution pattern matched but a
// captured fragment failed normalization. Fatal for that single message only;
// batch processing continues past it.
type MalformedCaptureError struct {
	Institution string
	Field       string
	Value       string
	Err         error
}

func (e *MalformedCaptureError) Error() string {
	return fmt.Sprintf("%s pattern matched but %s %q is malformed: %v",
		e.Institution, e.Field, e.Value, e.Err)
}

func (e *MalformedCaptureError) Unwrap() error { return e.Err }

// Parser extracts transactions from raw messages using the fixed institution
// registry. Safe for concurrent use.
type Parser struct {
	registry    []bankPattern
	categorizer *Categorizer
}

func NewParser(categorizer *Categorizer) *Parser {
	return &Parser{registry: registry, categorizer: categorizer}
}

// Parse tries each institution pattern in registration order and assembles a
// transaction from the first one that matches. Returns ErrNoMatch when no
// pattern fires and *MalformedCaptureError when a matched pattern carries an
// unparsable amount or date.
func (p *Parser) Parse(msg RawMessage) (*core.Transaction, error) {
	for _, entry := range p.registry {
		match := entry.re.FindStringSubmatch(msg.Body)
		if match == nil {
			continue
		}
		return p.assemble(entry, entry.extract(match), msg)
	}
	return nil, ErrNoMatch
}

func (p *Parser) assemble(entry bankPattern, c captures, msg RawMessage) (*core.Transaction, error) {
	amount, err := ParseAmount(c.amount)
	if err != nil {
		return nil, &MalformedCaptureError{Institution: entry.institution, Field: "amount", Value: c.amount, Err: err}
	}

	timestamp, err := ParseLocalDate(c.date)
	if err != nil {
		return nil, &MalformedCaptureError{Institution: entry.institution, Field: "date", Value: c.date, Err: err}
	}

	direction := entry.fixedDirection
	if direction == "" {
		verb := strings.ToLower(c.verb)
		var ok bool
		direction, ok = entry.verbs[verb]
		if !ok {
			return nil, &MalformedCaptureError{Institution: entry.institution, Field: "verb", Value: c.verb, Err: core.ErrInvalidDirection}
		}
	}

	c.merchant = strings.TrimSpace(c.merchant)
	c.method = strings.TrimSpace(c.method)

	var category core.Category
	if entry.cashCategory {
		// Cash formats carry no merchant worth categorizing; the direction
		// implies the category.
		if direction == core.Debit {
			category = core.OtherExpense
		} else {
			category = core.OtherIncome
		}
	} else {
		category = p.categorizer.Categorize(c.merchant)
	}

	source := entry.fixedSource
	if source == "" {
		// Classified over the full message text, not just the captured
		// fragment: channel hints ("Info: UPI-P2M") sit outside the groups.
		source = ClassifySource(msg.Body)
	}

	return &core.Transaction{
		Timestamp:    timestamp,
		Amount:       amount,
		Direction:    direction,
		Description:  entry.describe(direction, c),
		MerchantName: c.merchant,
		Category:     category,
		Source:       source,
		SMSBody:      msg.Body,
		SMSID:        msg.ID,
	}, nil
}
