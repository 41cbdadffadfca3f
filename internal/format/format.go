// Package format turns minor-unit amounts and timestamps into display strings.
package format

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Jan 2, 2006, 03:04 PM"
	timeLayout     = "03:04 PM"
)

// Price formats an amount stored as cents, e.g. 1999 -> "$19.99".
func Price(cents int64) string {
	d := decimal.New(cents, -2)
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}

	return "$" + d.StringFixed(2)
}

// Amount formats cents without a currency symbol, e.g. 1999 -> "19.99".
func Amount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Date formats t as "Jan 2, 2006".
func Date(t time.Time) string {
	return t.Format(dateLayout)
}

// DateTime formats t as "Jan 2, 2006, 03:04 PM".
func DateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// Time formats t as "03:04 PM".
func Time(t time.Time) string {
	return t.Format(timeLayout)
}

// ParseTimestamp parses an ISO 8601 / RFC 3339 timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}

	return t, nil
}
