package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"paisa/internal/core"
)

// transactionRequest is the JSON body for creating or updating a transaction.
// Amounts travel as decimal strings ("1250.00") to avoid float drift.
type transactionRequest struct {
	Timestamp    string `json:"timestamp"`
	Amount       string `json:"amount"`
	Direction    string `json:"direction"`
	Description  string `json:"description"`
	MerchantName string `json:"merchant_name"`
	Category     string `json:"category"`
	Source       string `json:"source"`
	SMSBody      string `json:"sms_body"`
	SMSID        string `json:"sms_id"`
}

// toTransaction validates every field and collects violations instead of
// stopping at the first, so a client can fix its whole request in one round.
func (req *transactionRequest) toTransaction() (core.Transaction, *ValidationError) {
	verr := &ValidationError{}
	var tx core.Transaction

	if strings.TrimSpace(req.Timestamp) == "" {
		verr.add("timestamp", "is required")
	} else {
		ts, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			verr.add("timestamp", "must be an RFC 3339 timestamp")
		} else {
			tx.Timestamp = ts
		}
	}

	if strings.TrimSpace(req.Amount) == "" {
		verr.add("amount", "is required")
	} else {
		paise, err := core.ParseDecimalToPaise(req.Amount)
		if err != nil {
			verr.add("amount", "must be a positive decimal amount")
		} else {
			tx.Amount = core.Money{Paise: paise}
		}
	}

	direction, err := core.ParseDirection(req.Direction)
	if err != nil {
		verr.add("direction", "must be \"debit\" or \"credit\"")
	} else {
		tx.Direction = direction
	}

	tx.Description = sanitizeInput(req.Description)
	if tx.Description == "" {
		verr.add("description", "is required")
	}

	tx.MerchantName = sanitizeInput(req.MerchantName)

	category, err := core.ParseCategory(req.Category)
	if err != nil {
		verr.add("category", "is not a known category")
	} else {
		tx.Category = category
	}

	source, err := core.ParseSource(req.Source)
	if err != nil {
		verr.add("source", "is not a known payment source")
	} else {
		tx.Source = source
	}

	tx.SMSBody = req.SMSBody
	tx.SMSID = strings.TrimSpace(req.SMSID)

	if !verr.ok() {
		return core.Transaction{}, verr
	}
	if err := tx.Validate(); err != nil {
		verr.add("transaction", err.Error())
		return core.Transaction{}, verr
	}
	return tx, nil
}

// settingsRequest is the JSON body for PUT /api/settings.
type settingsRequest struct {
	SMSPermissionGranted bool `json:"sms_permission_granted"`
	DarkMode             bool `json:"dark_mode"`
}

// syncRequest is the JSON body for POST /api/sms/sync: a batch of raw
// messages to run through the extraction pipeline.
type syncRequest struct {
	Messages []syncMessage `json:"messages"`
}

type syncMessage struct {
	ID         string    `json:"id"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

func decodeJSONBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// pathYearMonth parses the {year}/{month} path segments. Months are 1-12.
func pathYearMonth(r *http.Request) (int, int, *ValidationError) {
	verr := &ValidationError{}

	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < 1970 || year > 9999 {
		verr.add("year", "must be a four-digit year")
	}
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil || month < 1 || month > 12 {
		verr.add("month", "must be between 1 and 12")
	}

	if !verr.ok() {
		return 0, 0, verr
	}
	return year, month, nil
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
