package sms

import (
	"strings"

	"paisa/internal/core"
)

// Channel keyword rules, evaluated in priority order. The sets are not
// disjoint (a UPI message usually also names a bank), so the first rule with
// a hit wins.
var sourceRules = []struct {
	source   core.PaymentSource
	keywords []string
}{
	{core.SourceUPI, []string{"upi", "bhim", "phonepe", "google pay", "gpay", "paytm"}},
	{core.SourceCreditCard, []string{"credit card", "creditcard", "cc"}},
	{core.SourceDebitCard, []string{"debit card", "debitcard", "dc"}},
	{core.SourceNetBanking, []string{"netbanking", "net banking", "neft", "rtgs", "imps"}},
	{core.SourceATM, []string{"atm", "cash withdrawal", "withdrawal"}},
}

// ClassifySource inspects the full message text for payment-channel keywords
// and returns the first matching channel, or Other. Case-insensitive
// substring tests; pure function.
func ClassifySource(messageText string) core.PaymentSource {
	lower := strings.ToLower(messageText)
	for _, rule := range sourceRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.source
			}
		}
	}
	return core.SourceOther
}
