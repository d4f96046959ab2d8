package sms

import (
	"time"

	"paisa/internal/core"
)

// Bank SMS dates are day-month-year with dash separators, e.g. "15-05-2023".
const localDateLayout = "02-01-2006"

// ParseAmount normalizes a captured amount substring into Money. Comma group
// separators are stripped; anything that is not a positive decimal fails.
func ParseAmount(text string) (core.Money, error) {
	paise, err := core.ParseDecimalToPaise(text)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Paise: paise}, nil
}

// ParseLocalDate parses a DD-MM-YYYY substring to local midnight. Bank
// messages carry no time of day, so pipeline-produced timestamps are always
// 00:00; that distinguishes them from API-entered records which may carry a
// full timestamp.
func ParseLocalDate(text string) (time.Time, error) {
	return time.ParseInLocation(localDateLayout, text, time.Local)
}
