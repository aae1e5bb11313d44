package extracts

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts deckt die in den Extrakten beobachteten Datumsformate ab.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"2006-01-02T15:04:05Z07:00",
}

// CleanDate normalizes a raw date cell to a time pointer, nil when the cell is
// empty or unparseable. The serving layer treats nil as "date unknown".
func CleanDate(val string) *time.Time {
	val = strings.TrimSpace(val)
	if val == "" || strings.EqualFold(val, "nan") || strings.EqualFold(val, "nat") {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return &t
		}
	}
	return nil
}

// CleanFloat parses a numeric cell; accepts the comma decimal separator used
// in some CORDIS financial columns. Empty or broken cells become 0.
func CleanFloat(val string) float64 {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	val = strings.ReplaceAll(val, ",", ".")
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}
	return f
}

// CleanInt parses an integer cell, 0 bei leeren oder kaputten Werten.
func CleanInt(val string) int {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	// manche Extrakte liefern "2021.0"
	if i := strings.IndexByte(val, '.'); i >= 0 {
		val = val[:i]
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return n
}

// CleanBool maps the extract's true/false spellings onto a bool.
func CleanBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes", "y":
		return true
	default:
		return false
	}
}
