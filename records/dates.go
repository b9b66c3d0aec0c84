package records

import (
	"strings"
	"time"
)

// =============================================================================
// DATE NORMALIZER - input form (YYYY-MM-DD) <-> display form (DD/MM/YYYY)
// =============================================================================

// Layouts. Dates are calendar dates; no timezone is involved.
const (
	InputLayout   = "2006-01-02"
	DisplayLayout = "02/01/2006"
)

// ToDisplay converts a date-picker value to the stored display form.
// Empty input means "no date" and yields "".
func ToDisplay(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}
	t, err := time.Parse(InputLayout, input)
	if err != nil {
		return "", &FormatError{Value: input, Layout: "YYYY-MM-DD"}
	}
	return t.Format(DisplayLayout), nil
}

// ToInput converts a stored display date back to the date-picker form.
// Empty input yields "".
func ToInput(display string) (string, error) {
	t, err := ParseDisplay(display)
	if err != nil {
		return "", err
	}
	if t.IsZero() {
		return "", nil
	}
	return t.Format(InputLayout), nil
}

// ParseDisplay parses a stored display date into a UTC midnight time.
// Empty input yields the zero time and no error.
func ParseDisplay(display string) (time.Time, error) {
	display = strings.TrimSpace(display)
	if display == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DisplayLayout, display)
	if err != nil {
		return time.Time{}, &FormatError{Value: display, Layout: "DD/MM/YYYY"}
	}
	return t, nil
}

// CalendarDate truncates t to its calendar date in t's own location,
// returned at UTC midnight so it compares with ParseDisplay results.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(CalendarDate(b).Sub(CalendarDate(a)).Hours() / 24)
}

// EndDateLess orders policies by end date: earliest first, policies without a
// readable end date last, ties by id.
func EndDateLess(a, b Policy) bool {
	ta, errA := ParseDisplay(a.EndDate)
	tb, errB := ParseDisplay(b.EndDate)
	okA := errA == nil && !ta.IsZero()
	okB := errB == nil && !tb.IsZero()

	switch {
	case okA && okB && !ta.Equal(tb):
		return ta.Before(tb)
	case okA != okB:
		return okA
	}
	return a.ID < b.ID
}
