package parser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

var (
	errNotAmount = errors.New("not an amount")
	errNotDate   = errors.New("not a date")
)

// Layouts tried before the general purpose parser. Month-first comes before
// day-first for numeric dates, so 03/04/2024 is the 4th of March and
// 15/04/2024 still parses. Layouts without a year come last.
var dateLayouts = []string{
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 2006",
	"2 Jan 06",
	"2 January 2006",
	"2-January-2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"2/1/2006",
	"1/2/06",
	"2/1/06",
	"1-2-2006",
	"2-1-2006",
	"2 Jan",
	"2-Jan",
	"2 January",
	"Jan 2",
	"January 2",
}

// ParseAmount parses a cell as a float after removing thousands separators.
// Non-finite values are rejected.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, errNotAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errNotAmount, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", errNotAmount, s)
	}
	return v, nil
}

// ParseDate strictly parses a whole cell as a calendar date. Text around
// the date is not skipped and ambiguous input is a failure. Cells that are
// amounts, or that contain no digit at all, are never dates. A date printed
// without a year, like "01 Jan", takes the current year.
func ParseDate(s string) (time.Time, error) {
	t, err := parseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	if t.Year() == 0 {
		t = time.Date(time.Now().Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsFunc(s, unicode.IsDigit) {
		return time.Time{}, errNotDate
	}
	if _, err := ParseAmount(s); err == nil {
		return time.Time{}, fmt.Errorf("%w: %q is an amount", errNotDate, s)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return parseStrict(s)
}

func parseStrict(s string) (t time.Time, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, err = time.Time{}, fmt.Errorf("%w: %q: date parser crashed: %v", errNotDate, s, r)
		}
	}()

	t, err = dateparse.ParseStrict(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", errNotDate, s, err)
	}
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("%w: %q", errNotDate, s)
	}
	return t, nil
}
