// Package normalize types the raw Synthea tables: timestamps, numerics and
// trimmed strings. Cells that cannot be coerced become nil rather than
// failing the row.
package normalize

import (
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// ParseTimestamp parses a Synthea timestamp or date into UTC. Returns nil
// for empty or unrecognized input.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			ts = ts.UTC()
			return &ts
		}
	}
	return nil
}

// ParseFloat parses a numeric cell, tolerating "$" and thousands separators.
// "$1,200.50" → 1200.5
func ParseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// CleanString trims the cell and replaces invalid UTF-8.
func CleanString(s string) string {
	return strings.ToValidUTF8(strings.TrimSpace(s), "\uFFFD")
}
