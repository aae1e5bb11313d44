package extracts

import (
	"sort"
	"strings"
	"time"
)

// Durchschnittliche Monats-/Jahreslängen in Tagen (Gregorianischer Kalender).
const (
	daysPerMonth = 30.44
	daysPerYear  = 365.25
)

// DurationFields computes the derived duration columns from the calendar
// difference between start and end date. All three are 0 when either date is
// unknown or the range is inverted.
func DurationFields(start, end *time.Time) (days, months, years int) {
	if start == nil || end == nil || end.Before(*start) {
		return 0, 0, 0
	}
	days = int(end.Sub(*start).Hours() / 24)
	months = int(float64(days) / daysPerMonth)
	years = int(float64(days) / daysPerYear)
	return days, months, years
}

// PathLevel returns the n-th segment of a euroSciVoc path (1-based, the empty
// leading segment of "/natural sciences/..." does not count), "" when the path
// is too shallow.
func PathLevel(path string, level int) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if level < 1 || level > len(parts) {
		return ""
	}
	return strings.TrimSpace(parts[level-1])
}

// Classification bündelt die abgeleiteten Klassifikationslisten eines Projekts.
type Classification struct {
	FieldClasses []string
	Fields       []string
	SubFields    []string
	Niches       []string
}

// ClassifyPaths derives the list-valued classification of a project from its
// sci-voc path set: level 1 → field class, 2 → field, 3 → sub-field,
// 4 → niche. Duplicates collapse, output is sorted for determinism, and a
// project without any tags classifies as ["other"] like the source dataset.
func ClassifyPaths(paths []string) Classification {
	collect := func(level int) []string {
		seen := make(map[string]struct{})
		for _, p := range paths {
			if v := PathLevel(p, level); v != "" {
				seen[v] = struct{}{}
			}
		}
		out := make([]string, 0, len(seen))
		for v := range seen {
			out = append(out, v)
		}
		sort.Strings(out)
		return out
	}

	c := Classification{
		FieldClasses: collect(1),
		Fields:       collect(2),
		SubFields:    collect(3),
		Niches:       collect(4),
	}
	if len(c.FieldClasses) == 0 {
		c.FieldClasses = []string{"other"}
	}
	if len(c.Fields) == 0 {
		c.Fields = []string{"other"}
	}
	if len(c.SubFields) == 0 {
		c.SubFields = []string{"other"}
	}
	if len(c.Niches) == 0 {
		c.Niches = []string{"other"}
	}
	return c
}

// TopLevelField liefert das oberste Pfadsegment ("natural sciences", ...).
func TopLevelField(path string) string {
	return PathLevel(path, 1)
}
