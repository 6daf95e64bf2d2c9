package deribit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// expiryPattern matches the date segment of an instrument name, e.g.
// "28MAR25" out of "BTC-28MAR25-100000-C".
var expiryPattern = regexp.MustCompile(`^(\d+)([A-Z]+)(\d+)$`)

var monthsByCode = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// ParseExpiry extracts the expiration from a Deribit instrument name such
// as "BTC-28MAR25-100000-C". Deribit options expire at 08:00 UTC on the
// named day.
func ParseExpiry(instrumentName string) (time.Time, error) {
	parts := strings.Split(instrumentName, "-")
	if len(parts) < 3 {
		return time.Time{}, fmt.Errorf("deribit: malformed instrument name %q", instrumentName)
	}

	m := expiryPattern.FindStringSubmatch(parts[1])
	if m == nil {
		return time.Time{}, fmt.Errorf("deribit: malformed expiry in %q", instrumentName)
	}

	day, _ := strconv.Atoi(m[1])
	month, ok := monthsByCode[m[2]]
	if !ok {
		return time.Time{}, fmt.Errorf("deribit: unknown month in %q", instrumentName)
	}
	year, _ := strconv.Atoi(m[3])

	return time.Date(2000+year, month, day, 8, 0, 0, 0, time.UTC), nil
}
