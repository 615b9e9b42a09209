// Package chain composes expiry selection, strike windowing and snapshot
// retrieval into the option-chain service.
package chain

import (
	"time"

	"nse-analyst/internal/errors"
)

// Expiry date formats accepted from the exchange and from callers.
var expiryFormats = []string{
	"02-Jan-2006", // NSE native
	"2006-01-02",  // ISO-like
}

// ParseExpiryDate parses an expiry date string in DD-MMM-YYYY or
// YYYY-MM-DD form.
func ParseExpiryDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range expiryFormats {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, errors.Wrapf(lastErr, "parsing expiry date %q", s)
}

// ExpiryPolicy controls fallback behavior when no expiry matches the
// target month.
type ExpiryPolicy int

const (
	// PolicyStrict fails when the target month has no expiry.
	PolicyStrict ExpiryPolicy = iota
	// PolicyFallback walks monthsAhead down toward 0 until a month with
	// an expiry is found.
	PolicyFallback
)

// SelectTargetExpiry picks one expiry from the list: the latest expiry
// within the month monthsAhead calendar months after now (the month-end
// expiry when a month lists several). Deterministic for a fixed now.
func SelectTargetExpiry(dates []string, monthsAhead int, now time.Time, policy ExpiryPolicy) (string, error) {
	parsed := make([]time.Time, len(dates))
	valid := make([]bool, len(dates))
	for i, d := range dates {
		t, err := ParseExpiryDate(d)
		if err != nil {
			continue
		}
		parsed[i] = t
		valid[i] = true
	}

	var tried []int
	for months := monthsAhead; months >= 0; months-- {
		tried = append(tried, months)

		targetYear, targetMonth := addMonths(now.Year(), int(now.Month()), months)

		best := -1
		for i := range dates {
			if !valid[i] {
				continue
			}
			if parsed[i].Year() != targetYear || int(parsed[i].Month()) != targetMonth {
				continue
			}
			if best < 0 || parsed[i].Day() > parsed[best].Day() {
				best = i
			}
		}
		if best >= 0 {
			return dates[best], nil
		}

		if policy == PolicyStrict {
			break
		}
	}

	return "", errors.NewNoExpiryFoundError("", tried)
}

// addMonths adds calendar months to (year, month), normalizing month
// overflow into year increments. month is 1-based.
func addMonths(year, month, add int) (int, int) {
	total := year*12 + (month - 1) + add
	return total / 12, total%12 + 1
}
