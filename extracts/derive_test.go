package extracts

import (
	"reflect"
	"testing"
	"time"
)

func date(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestDurationFields(t *testing.T) {
	tests := []struct {
		name       string
		start, end *time.Time
		days       int
		months     int
		years      int
	}{
		{"four years", date(2020, 1, 1), date(2024, 1, 1), 1461, 47, 4},
		{"half year", date(2021, 1, 1), date(2021, 7, 1), 181, 5, 0},
		{"same day", date(2021, 1, 1), date(2021, 1, 1), 0, 0, 0},
		{"inverted range", date(2022, 1, 1), date(2021, 1, 1), 0, 0, 0},
		{"missing start", nil, date(2021, 1, 1), 0, 0, 0},
		{"missing end", date(2021, 1, 1), nil, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, months, years := DurationFields(tt.start, tt.end)
			if days != tt.days || months != tt.months || years != tt.years {
				t.Errorf("DurationFields = (%d, %d, %d), want (%d, %d, %d)",
					days, months, years, tt.days, tt.months, tt.years)
			}
		})
	}
}

func TestPathLevel(t *testing.T) {
	path := "/natural sciences/physical sciences/astronomy/planetary science"
	tests := []struct {
		level int
		want  string
	}{
		{1, "natural sciences"},
		{2, "physical sciences"},
		{3, "astronomy"},
		{4, "planetary science"},
		{5, ""},
		{0, ""},
	}
	for _, tt := range tests {
		if got := PathLevel(path, tt.level); got != tt.want {
			t.Errorf("PathLevel(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestClassifyPaths(t *testing.T) {
	c := ClassifyPaths([]string{
		"/natural sciences/physical sciences/astronomy",
		"/natural sciences/computer and information sciences",
		"/engineering and technology/civil engineering",
	})

	if want := []string{"engineering and technology", "natural sciences"}; !reflect.DeepEqual(c.FieldClasses, want) {
		t.Errorf("FieldClasses = %v, want %v", c.FieldClasses, want)
	}
	if want := []string{"civil engineering", "computer and information sciences", "physical sciences"}; !reflect.DeepEqual(c.Fields, want) {
		t.Errorf("Fields = %v, want %v", c.Fields, want)
	}
	if want := []string{"astronomy"}; !reflect.DeepEqual(c.SubFields, want) {
		t.Errorf("SubFields = %v, want %v", c.SubFields, want)
	}
	// Kein Pfad reicht bis Level 4
	if want := []string{"other"}; !reflect.DeepEqual(c.Niches, want) {
		t.Errorf("Niches = %v, want %v", c.Niches, want)
	}
}

func TestClassifyPathsEmpty(t *testing.T) {
	c := ClassifyPaths(nil)
	for _, list := range [][]string{c.FieldClasses, c.Fields, c.SubFields, c.Niches} {
		if !reflect.DeepEqual(list, []string{"other"}) {
			t.Errorf("empty classification = %v, want [other]", list)
		}
	}
}

func TestTopLevelField(t *testing.T) {
	if got := TopLevelField("/medical and health sciences/basic medicine"); got != "medical and health sciences" {
		t.Errorf("TopLevelField = %q", got)
	}
	if got := TopLevelField(""); got != "" {
		t.Errorf("TopLevelField(empty) = %q, want empty", got)
	}
}
