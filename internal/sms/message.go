// Package sms turns raw bank and payment-app notification text into
// normalized transactions.
//
// The pipeline is pure and stateless per call: a message is matched against an
// ordered registry of per-institution patterns, captured fragments are
// normalized (amount, date), the counterparty is categorized against a static
// keyword table and the payment channel is classified from the full message
// text. All shared state (pattern registry, keyword table) is read-only after
// construction and safe for concurrent use.
package sms

import "time"

// RawMessage is one captured SMS as delivered by the host platform.
// It is never mutated by the pipeline.
type RawMessage struct {
	ID         string    `json:"id"`          // external message identifier
	Body       string    `json:"body"`        // opaque message text
	ReceivedAt time.Time `json:"received_at"` // receipt timestamp at the source
}
