package timeutil

import (
	"time"
)

// EAT is the East Africa Time location (UTC+3). All business dates
// (gate entry dates, session keys, daily pallet sequences) are anchored here.
var EAT *time.Location

func init() {
	var err error
	EAT, err = time.LoadLocation("Africa/Nairobi")
	if err != nil {
		// Fallback: create fixed zone if Africa/Nairobi not available
		EAT = time.FixedZone("EAT", 3*60*60) // UTC+3
	}
}

// Now returns the current time in EAT
func Now() time.Time {
	return time.Now().In(EAT)
}

// ToEAT converts any time to EAT
func ToEAT(t time.Time) time.Time {
	return t.In(EAT)
}

// DateOnly formats a time as its EAT calendar date (YYYY-MM-DD)
func DateOnly(t time.Time) string {
	return t.In(EAT).Format(DateLayout)
}

// StartOfDay returns the start of day (00:00:00) in EAT for the given time
func StartOfDay(t time.Time) time.Time {
	eat := t.In(EAT)
	return time.Date(eat.Year(), eat.Month(), eat.Day(), 0, 0, 0, 0, EAT)
}

// Common layouts for EAT formatting
const (
	DateLayout        = "2006-01-02"
	CompactDateLayout = "20060102"
	PalletDateLayout  = "0102"
	DateTimeLayout    = "2006-01-02 15:04:05"
)
