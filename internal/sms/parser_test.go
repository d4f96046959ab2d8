package sms

import (
	"errors"
	"testing"
	"time"

	"paisa/internal/core"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	return NewParser(newTestCategorizer(t))
}

func localDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

func TestParseKnownInstitutions(t *testing.T) {
	p := newTestParser(t)

	cases := []struct {
		name string
		body string
		want core.Transaction
	}{
		{
			name: "HDFC debit",
			body: "HDFC Bank: Rs.1,250.00 debited from a/c *1234 on 15-05-2023 to SWIGGY. Avl bal: Rs.24,780.45. Info: UPI-P2M",
			want: core.Transaction{
				Timestamp:    localDate(2023, 5, 15),
				Amount:       core.Money{Paise: 125000},
				Direction:    core.Debit,
				Description:  "Payment to SWIGGY",
				MerchantName: "SWIGGY",
				Category:     core.FoodAndDining,
				Source:       core.SourceUPI,
			},
		},
		{
			name: "ICICI credit",
			body: "ICICI Bank: Rs.35,000.00 credited to your a/c XX5678 on 01-05-2023 by ACME PAYROLL. Available balance: Rs.50,120.00",
			want: core.Transaction{
				Timestamp:    localDate(2023, 5, 1),
				Amount:       core.Money{Paise: 3500000},
				Direction:    core.Credit,
				Description:  "Payment from ACME PAYROLL",
				MerchantName: "ACME PAYROLL",
				Category:     core.Salary,
				Source:       core.SourceOther,
			},
		},
		{
			name: "SBI debit with method",
			body: "SBI Alert: Rs.450.00 debited from your A/c no. XX9012 on 20-05-2023 using Debit Card at BIG BAZAAR. Avl Bal:Rs.12,340.00",
			want: core.Transaction{
				Timestamp:    localDate(2023, 5, 20),
				Amount:       core.Money{Paise: 45000},
				Direction:    core.Debit,
				Description:  "Payment to BIG BAZAAR using Debit Card",
				MerchantName: "BIG BAZAAR",
				Category:     core.Shopping,
				Source:       core.SourceDebitCard,
			},
		},
		{
			name: "Axis UPI is direction-fixed and source-fixed",
			body: "Axis Bank: Rs.890.00 sent to ramesh@okaxis via UPI on 18-05-2023 from a/c XX3456",
			want: core.Transaction{
				Timestamp:    localDate(2023, 5, 18),
				Amount:       core.Money{Paise: 89000},
				Direction:    core.Debit,
				Description:  "UPI payment to ramesh@okaxis",
				MerchantName: "ramesh",
				Category:     core.OtherExpense,
				Source:       core.SourceUPI,
			},
		},
		{
			name: "PNB withdrawal bypasses categorizer",
			body: "PNB: Rs.2,000.00 withdrawn from ATM on 22-05-2023 from a/c XX7890",
			want: core.Transaction{
				Timestamp:    localDate(2023, 5, 22),
				Amount:       core.Money{Paise: 200000},
				Direction:    core.Debit,
				Description:  "Withdrawal from ATM",
				MerchantName: "ATM",
				Category:     core.OtherExpense,
				Source:       core.SourceATM,
			},
		},
		{
			name: "PNB deposit maps to Other Income",
			body: "PNB: Rs.5,000.00 deposited from Branch Counter on 23-05-2023 from a/c XX7890",
			want: core.Transaction{
				Timestamp:    localDate(2023, 5, 23),
				Amount:       core.Money{Paise: 500000},
				Direction:    core.Credit,
				Description:  "Deposit to Branch Counter",
				MerchantName: "Branch Counter",
				Category:     core.OtherIncome,
				Source:       core.SourceOther,
			},
		},
		{
			name: "PhonePe payment",
			body: "350.00 paid via PhonePe to Chai Point on 10-05-2023",
			want: core.Transaction{
				Timestamp:    localDate(2023, 5, 10),
				Amount:       core.Money{Paise: 35000},
				Direction:    core.Debit,
				Description:  "PhonePe payment to Chai Point",
				MerchantName: "Chai Point",
				Category:     core.FoodAndDining,
				Source:       core.SourceUPI,
			},
		},
		{
			name: "Paytm received",
			body: "Rs.1,000.00 received to Rahul Verma on 11-05-2023 from Paytm",
			want: core.Transaction{
				Timestamp:    localDate(2023, 5, 11),
				Amount:       core.Money{Paise: 100000},
				Direction:    core.Credit,
				Description:  "Paytm received from Rahul Verma",
				MerchantName: "Rahul Verma",
				Category:     core.OtherExpense,
				Source:       core.SourceUPI,
			},
		},
		{
			name: "Amazon Pay is always debit",
			body: "Amazon Pay: Rs.799.00 paid to NETMEDS on 12-05-2023",
			want: core.Transaction{
				Timestamp:    localDate(2023, 5, 12),
				Amount:       core.Money{Paise: 79900},
				Direction:    core.Debit,
				Description:  "Amazon Pay payment to NETMEDS",
				MerchantName: "NETMEDS",
				Category:     core.Health,
				Source:       core.SourceUPI,
			},
		},
		{
			name: "Google Pay sent",
			body: "Rs.220.00 sent to Uber Rides via Google Pay on 13-05-2023",
			want: core.Transaction{
				Timestamp:    localDate(2023, 5, 13),
				Amount:       core.Money{Paise: 22000},
				Direction:    core.Debit,
				Description:  "Google Pay sent to Uber Rides",
				MerchantName: "Uber Rides",
				Category:     core.Transportation,
				Source:       core.SourceUPI,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := RawMessage{ID: "sms-1", Body: tc.body, ReceivedAt: time.Now()}
			got, err := p.Parse(msg)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !got.Timestamp.Equal(tc.want.Timestamp) {
				t.Errorf("timestamp = %v, want %v", got.Timestamp, tc.want.Timestamp)
			}
			if got.Amount != tc.want.Amount {
				t.Errorf("amount = %v, want %v", got.Amount, tc.want.Amount)
			}
			if got.Direction != tc.want.Direction {
				t.Errorf("direction = %q, want %q", got.Direction, tc.want.Direction)
			}
			if got.Description != tc.want.Description {
				t.Errorf("description = %q, want %q", got.Description, tc.want.Description)
			}
			if got.MerchantName != tc.want.MerchantName {
				t.Errorf("merchant = %q, want %q", got.MerchantName, tc.want.MerchantName)
			}
			if got.Category != tc.want.Category {
				t.Errorf("category = %q, want %q", got.Category, tc.want.Category)
			}
			if got.Source != tc.want.Source {
				t.Errorf("source = %q, want %q", got.Source, tc.want.Source)
			}
			if got.SMSBody != tc.body {
				t.Errorf("raw message body not retained")
			}
			if got.SMSID != "sms-1" {
				t.Errorf("sms id not retained")
			}
			if err := got.Validate(); err != nil {
				t.Errorf("assembled transaction invalid: %v", err)
			}
		})
	}
}

func TestParseNoMatch(t *testing.T) {
	p := newTestParser(t)
	bodies := []string{
		"Your OTP for login is 482910. Do not share it with anyone.",
		"Recharge offer: get 2GB/day at Rs.299",
		"",
	}
	for _, body := range bodies {
		_, err := p.Parse(RawMessage{ID: "x", Body: body})
		if !errors.Is(err, ErrNoMatch) {
			t.Fatalf("Parse(%q) expected ErrNoMatch, got %v", body, err)
		}
	}
}

func TestParseMalformedCaptures(t *testing.T) {
	p := newTestParser(t)

	t.Run("bad amount", func(t *testing.T) {
		body := "HDFC Bank: Rs.. debited from a/c *1234 on 15-05-2023 to STORE. Avl bal: Rs.1.00"
		_, err := p.Parse(RawMessage{Body: body})
		var malformed *MalformedCaptureError
		if !errors.As(err, &malformed) {
			t.Fatalf("expected MalformedCaptureError, got %v", err)
		}
		if malformed.Field != "amount" || malformed.Institution != "HDFC" {
			t.Fatalf("unexpected error detail: %+v", malformed)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		body := "HDFC Bank: Rs.100.00 debited from a/c *1234 on 31-02-2023 to STORE. Avl bal: Rs.1.00"
		_, err := p.Parse(RawMessage{Body: body})
		var malformed *MalformedCaptureError
		if !errors.As(err, &malformed) {
			t.Fatalf("expected MalformedCaptureError, got %v", err)
		}
		if malformed.Field != "date" {
			t.Fatalf("unexpected field %q", malformed.Field)
		}
	})
}

func TestFirstPatternWins(t *testing.T) {
	// Registration order is part of the contract.
	want := []string{"HDFC", "ICICI", "SBI", "Axis", "PNB", "PhonePe", "Paytm", "Amazon Pay", "Google Pay"}
	got := Institutions()
	if len(got) != len(want) {
		t.Fatalf("expected %d institutions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("institution %d = %q, want %q", i, got[i], want[i])
		}
	}
}
