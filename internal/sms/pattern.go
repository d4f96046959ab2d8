package sms

import (
	"fmt"
	"regexp"

	"paisa/internal/core"
)

// captures holds the named fragments one institution pattern pulled out of a
// message. Which fields are populated depends on the pattern's groups.
type captures struct {
	amount   string // required
	date     string // required
	verb     string // direction keyword, empty for direction-fixed patterns
	merchant string // counterparty / description text
	method   string // institution extra, e.g. SBI's payment method
	handle   string // institution extra, e.g. Axis UPI handle
}

// bankPattern is one institution's message template: a compiled pattern plus
// the data-driven rules a single generic extraction routine needs. No
// per-institution code paths exist outside this record.
type bankPattern struct {
	institution string
	re          *regexp.Regexp

	// fixedDirection, when set, wins over any captured verb ("sent to X via
	// UPI" is always a debit). Otherwise verbs maps the institution's verb
	// vocabulary to the canonical pair.
	fixedDirection core.Direction
	verbs          map[string]core.Direction

	// fixedSource, when set, skips channel classification: a UPI-app
	// specific template is inherently UPI.
	fixedSource core.PaymentSource

	// cashCategory patterns (cash withdrawal / deposit formats) bypass the
	// keyword categorizer and take a direction-implied category instead.
	cashCategory bool

	describe func(d core.Direction, c captures) string
}

// registry lists institution patterns in registration order; the first
// pattern to match wins, so the order is fixed for reproducibility.
var registry = []bankPattern{
	{
		institution: "HDFC",
		re:          regexp.MustCompile(`(?i)HDFC Bank: Rs\.(?P<amount>[0-9,.]+) (?P<verb>debited|credited) from a/c [*#]\d+ on (?P<date>\d{2}-\d{2}-\d{4}) to (?P<merchant>[^.]+)\. Avl bal: Rs\.[0-9,.]+`),
		verbs:       map[string]core.Direction{"debited": core.Debit, "credited": core.Credit},
		describe:    paymentDescription,
	},
	{
		institution: "ICICI",
		re:          regexp.MustCompile(`(?i)ICICI Bank: Rs\.(?P<amount>[0-9,.]+) (?P<verb>credited|debited) to your a/c XX\d+ on (?P<date>\d{2}-\d{2}-\d{4}) by (?P<merchant>[^.]+)\. Available balance: Rs\.[0-9,.]+`),
		verbs:       map[string]core.Direction{"debited": core.Debit, "credited": core.Credit},
		describe:    paymentDescription,
	},
	{
		institution: "SBI",
		re:          regexp.MustCompile(`(?i)SBI Alert: Rs\.(?P<amount>[0-9,.]+) (?P<verb>debited|credited) from your A/c no\. XX\d+ on (?P<date>\d{2}-\d{2}-\d{4}) using (?P<method>[^.]+) at (?P<merchant>[^.]+)\. Avl Bal:Rs\.[0-9,.]+`),
		verbs:       map[string]core.Direction{"debited": core.Debit, "credited": core.Credit},
		describe: func(d core.Direction, c captures) string {
			return fmt.Sprintf("%s using %s", paymentDescription(d, c), c.method)
		},
	},
	{
		institution:    "Axis",
		re:             regexp.MustCompile(`(?i)Axis Bank: Rs\.(?P<amount>[0-9,.]+) sent to (?P<merchant>[^@]+)@(?P<handle>\w+) via UPI on (?P<date>\d{2}-\d{2}-\d{4}) from a/c XX\d+`),
		fixedDirection: core.Debit,
		fixedSource:    core.SourceUPI,
		describe: func(d core.Direction, c captures) string {
			return fmt.Sprintf("UPI payment to %s@%s", c.merchant, c.handle)
		},
	},
	{
		institution:  "PNB",
		re:           regexp.MustCompile(`(?i)PNB: Rs\.(?P<amount>[0-9,.]+) (?P<verb>withdrawn|deposited) from (?P<merchant>.+?) on (?P<date>\d{2}-\d{2}-\d{4}) from a/c XX\d+`),
		verbs:        map[string]core.Direction{"withdrawn": core.Debit, "deposited": core.Credit},
		cashCategory: true,
		describe: func(d core.Direction, c captures) string {
			if d == core.Debit {
				return fmt.Sprintf("Withdrawal from %s", c.merchant)
			}
			return fmt.Sprintf("Deposit to %s", c.merchant)
		},
	},
	{
		institution:    "PhonePe",
		re:             regexp.MustCompile(`(?i)(?P<amount>[0-9,.]+) paid via PhonePe to (?P<merchant>[^.]+) on (?P<date>\d{2}-\d{2}-\d{4})`),
		fixedDirection: core.Debit,
		fixedSource:    core.SourceUPI,
		describe: func(d core.Direction, c captures) string {
			return fmt.Sprintf("PhonePe payment to %s", c.merchant)
		},
	},
	{
		institution: "Paytm",
		re:          regexp.MustCompile(`(?i)Rs\.(?P<amount>[0-9,.]+) (?P<verb>paid|received) to (?P<merchant>[^.]+) on (?P<date>\d{2}-\d{2}-\d{4}) from Paytm`),
		verbs:       map[string]core.Direction{"paid": core.Debit, "received": core.Credit},
		fixedSource: core.SourceUPI,
		describe: func(d core.Direction, c captures) string {
			if d == core.Debit {
				return fmt.Sprintf("Paytm paid to %s", c.merchant)
			}
			return fmt.Sprintf("Paytm received from %s", c.merchant)
		},
	},
	{
		institution:    "Amazon Pay",
		re:             regexp.MustCompile(`(?i)Amazon Pay: Rs\.(?P<amount>[0-9,.]+) (?P<verb>paid|debited) to (?P<merchant>[^.]+) on (?P<date>\d{2}-\d{2}-\d{4})`),
		fixedDirection: core.Debit,
		fixedSource:    core.SourceUPI,
		describe: func(d core.Direction, c captures) string {
			return fmt.Sprintf("Amazon Pay payment to %s", c.merchant)
		},
	},
	{
		institution: "Google Pay",
		re:          regexp.MustCompile(`(?i)Rs\.(?P<amount>[0-9,.]+) (?P<verb>sent|received) to (?P<merchant>[^.]+) via Google Pay on (?P<date>\d{2}-\d{2}-\d{4})`),
		verbs:       map[string]core.Direction{"sent": core.Debit, "received": core.Credit},
		fixedSource: core.SourceUPI,
		describe: func(d core.Direction, c captures) string {
			if d == core.Debit {
				return fmt.Sprintf("Google Pay sent to %s", c.merchant)
			}
			return fmt.Sprintf("Google Pay received from %s", c.merchant)
		},
	},
}

func paymentDescription(d core.Direction, c captures) string {
	if d == core.Debit {
		return fmt.Sprintf("Payment to %s", c.merchant)
	}
	return fmt.Sprintf("Payment from %s", c.merchant)
}

// extract pulls the named groups of a successful match into captures.
func (p bankPattern) extract(match []string) captures {
	var c captures
	for i, name := range p.re.SubexpNames() {
		if i == 0 || i >= len(match) {
			continue
		}
		switch name {
		case "amount":
			c.amount = match[i]
		case "date":
			c.date = match[i]
		case "verb":
			c.verb = match[i]
		case "merchant":
			c.merchant = match[i]
		case "method":
			c.method = match[i]
		case "handle":
			c.handle = match[i]
		}
	}
	return c
}

// Institutions returns the registered institution tags in match order.
func Institutions() []string {
	out := make([]string, len(registry))
	for i, p := range registry {
		out[i] = p.institution
	}
	return out
}
