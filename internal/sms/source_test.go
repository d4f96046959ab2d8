package sms

import (
	"testing"

	"paisa/internal/core"
)

func TestClassifySource(t *testing.T) {
	cases := []struct {
		name string
		body string
		want core.PaymentSource
	}{
		{"upi keyword", "Rs.100 debited. Info: UPI-P2M", core.SourceUPI},
		{"upi app name", "Paid via PhonePe to merchant", core.SourceUPI},
		{"credit card", "spent on your Credit Card ending 1234", core.SourceCreditCard},
		{"debit card", "purchase using Debit Card at store", core.SourceDebitCard},
		{"net banking", "transferred via NEFT to beneficiary", core.SourceNetBanking},
		{"imps", "IMPS transfer of Rs.500 completed", core.SourceNetBanking},
		{"atm", "Cash withdrawn at ATM", core.SourceATM},
		{"none", "Your OTP for login is 482910", core.SourceOther},
		// UPI is checked before ATM; keyword sets overlap on purpose.
		{"upi beats atm", "UPI withdrawal at ATM of Rs.2000", core.SourceUPI},
		// Debit card messages frequently mention the bank; card beats Other.
		{"card beats bank name", "HDFC Bank Debit Card used for Rs.300", core.SourceDebitCard},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifySource(tc.body); got != tc.want {
				t.Fatalf("ClassifySource(%q) = %q, want %q", tc.body, got, tc.want)
			}
		})
	}
}
