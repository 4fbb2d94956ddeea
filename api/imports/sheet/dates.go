package sheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"TradeFlowERP/api/constants"
)

// ParseDate tries the date layouts seen in hand-built trip sheets and sales
// reports. dd/mm/yyyy layouts come first: the sheets are authored locally
// and 05/01/2024 means 5 January, not 1 May.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date string")
	}
	layouts := []string{
		// dd/mm/yyyy variants - must stay ahead of mm/dd/yyyy
		"02/01/2006", "02/01/06", "2/1/2006", "2/1/06",
		"02-01-2006", "2-1-2006", "02-01-06", "2-1-06",
		// named month
		"02-Jan-06", "02-Jan-2006", "2-Jan-2006", "02/Jan/2006", "02/Jan/06",
		"2 Jan 2006", "2 January 2006",
		// ISO and spreadsheet exports
		constants.DateFormat, "2006/01/02", "2006-01-02 15:04:05",
		"2006-01-02T15:04:05", time.RFC3339,
		// mm/dd/yyyy last, for the odd sheet copied out of a US template
		"01/02/2006", "1/2/2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			// Two-digit-year layouts land in 0001-0099 when the source
			// wrote a bare year; shift into the 2000s.
			if t.Year() < 100 {
				t = t.AddDate(2000, 0, 0)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date: %s", s)
}

// ParseDateOrSerial first attempts layout parsing, then falls back to Excel
// serial date numbers. Returns the zero time when neither applies.
func ParseDateOrSerial(s string) time.Time {
	if t, err := ParseDate(s); err == nil && !t.IsZero() {
		return t
	}
	if t, err := parseExcelSerial(s); err == nil {
		return t
	}
	return time.Time{}
}

// parseExcelSerial converts an Excel serial date (possibly with a fractional
// time-of-day part) into a time.Time. Excel counts from 1899-12-30 and
// includes the fake 1900-02-29 day.
func parseExcelSerial(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty excel serial")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}
	if f < 61 || f > 200000 {
		// Below the 1900 leap-bug boundary or far future: almost certainly a
		// quantity or code, not a date.
		return time.Time{}, fmt.Errorf("implausible excel serial: %s", s)
	}
	days := int(f)
	frac := f - float64(days)
	// The 1899-12-30 epoch already absorbs Excel's phantom 1900-02-29 for
	// serials past the bug boundary.
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	d := base.AddDate(0, 0, days)
	return d.Add(time.Duration(frac * float64(24*time.Hour))), nil
}
