package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateInputLayout is the layout of the form's due date field.
	DateInputLayout = "2006-01-02"
	// ISOLayout matches what browsers emit from Date.toISOString.
	ISOLayout = "2006-01-02T15:04:05.000Z07:00"

	displayLayout = "Jan 2, 2006"
)

// DateInputToISO converts a YYYY-MM-DD value to an ISO-8601 instant at UTC
// midnight. An empty input yields "".
func DateInputToISO(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	d, err := time.ParseInLocation(DateInputLayout, s, time.UTC)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return d.Format(ISOLayout), nil
}

// ISOToDateInput converts an ISO-8601 instant back to YYYY-MM-DD using its
// UTC calendar date.
func ISOToDateInput(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	ts, err := ParseISO(s)
	if err != nil {
		return "", err
	}
	return DateInput(ts), nil
}

func ParseISO(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	if d, err := time.ParseInLocation(DateInputLayout, s, time.UTC); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q (expected RFC3339)", s)
}

func DateInput(t time.Time) string {
	return t.UTC().Format(DateInputLayout)
}

// FormatDueDate renders a due date as its UTC calendar date.
func FormatDueDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "No due date"
	}
	return t.UTC().Format(displayLayout)
}

// FormatCreatedAt renders an instant in local time.
func FormatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.Local().Format(displayLayout)
}
