package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical civil date layout used on the wire and in reports.
const DateLayout = "2006-01-02"

var dateLayouts = []string{DateLayout, "02-01-2006", "02/01/2006", "2006/01/02"}

// ParseDate accepts the date formats found in imported spreadsheets. Anything
// after the first whitespace (a time component) is ignored. The result is a
// midnight UTC value that only carries the calendar date.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" || value == "-" {
		return time.Time{}, ErrInvalidDate
	}
	if idx := strings.IndexAny(value, " T"); idx > 0 {
		value = value[:idx]
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, WrapError(ErrCodeInvalid, "invalid date", fmt.Errorf("cannot parse %q", raw))
}

// CivilDate truncates t to its calendar date in loc, returned as midnight UTC.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
