package services

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

// ChartSpec ist eine renderfertige Diagramm-Beschreibung für die
// Präsentationsschicht (Balken, Linien, Histogramm). Empty series are a valid
// "no data" state, never an error.
type ChartSpec struct {
	Type   string        `json:"type"` // bar, line, histogram
	Title  string        `json:"title"`
	XLabel string        `json:"x_label,omitempty"`
	YLabel string        `json:"y_label,omitempty"`
	Series []ChartSeries `json:"series"`
}

// ChartSeries ist eine benannte Datenreihe eines Diagramms.
type ChartSeries struct {
	Name string    `json:"name,omitempty"`
	X    []string  `json:"x"`
	Y    []float64 `json:"y"`
}

// ChartService berechnet die Aggregationen für die Dashboard-Diagramme
// direkt auf dem Snapshot.
type ChartService struct {
	Logger *zap.Logger
}

// NewChartService erstellt eine neue Instanz des ChartService.
func NewChartService(logger *zap.Logger) *ChartService {
	return &ChartService{Logger: logger}
}

// sortedBars turns an aggregation map into descending bars.
func sortedBars(agg map[string]float64) ([]string, []float64) {
	keys := make([]string, 0, len(agg))
	for k := range agg {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if agg[keys[i]] != agg[keys[j]] {
			return agg[keys[i]] > agg[keys[j]]
		}
		return keys[i] < keys[j]
	})
	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = agg[k]
	}
	return keys, values
}

// EcContributionByCountry summiert die EC-Beiträge aller Beteiligungen
// pro Land der Einrichtung.
func (c *ChartService) EcContributionByCountry(s *Snapshot) ChartSpec {
	agg := make(map[string]float64)
	for _, view := range s.Projects() {
		for _, p := range view.Participants {
			if p.Country != "" {
				agg[p.Country] += p.EcContribution
			}
		}
	}
	x, y := sortedBars(agg)
	return ChartSpec{
		Type:   "bar",
		Title:  "Total EC Contribution by Country",
		XLabel: "Country",
		YLabel: "EC Contribution (EUR)",
		Series: []ChartSeries{{X: x, Y: y}},
	}
}

// ProjectsPerCountry zählt distinkte Projekte pro Land.
func (c *ChartService) ProjectsPerCountry(s *Snapshot) ChartSpec {
	agg := make(map[string]float64)
	for _, view := range s.Projects() {
		countries := make(map[string]struct{})
		for _, p := range view.Participants {
			if p.Country != "" {
				countries[p.Country] = struct{}{}
			}
		}
		for country := range countries {
			agg[country]++
		}
	}
	x, y := sortedBars(agg)
	return ChartSpec{
		Type:   "bar",
		Title:  "Number of Projects per Country",
		XLabel: "Country",
		YLabel: "Projects",
		Series: []ChartSeries{{X: x, Y: y}},
	}
}

// TopInstitutionsByFunding liefert die Top-N Einrichtungen nach Summe der
// EC-Beiträge über alle Beteiligungen.
func (c *ChartService) TopInstitutionsByFunding(s *Snapshot, topN int) ChartSpec {
	if topN <= 0 {
		topN = 15
	}
	agg := make(map[string]float64)
	for _, view := range s.Projects() {
		for _, p := range view.Participants {
			if p.Name != "" {
				agg[p.Name] += p.EcContribution
			}
		}
	}
	x, y := sortedBars(agg)
	if len(x) > topN {
		x, y = x[:topN], y[:topN]
	}
	return ChartSpec{
		Type:   "bar",
		Title:  fmt.Sprintf("Top %d Institutions by EC Contribution", topN),
		XLabel: "Institution",
		YLabel: "EC Contribution (EUR)",
		Series: []ChartSeries{{X: x, Y: y}},
	}
}

// FundingOverTimeByField summiert die maximale EC-Förderung pro Startjahr und
// Field-Class; Projekte mit mehreren Field-Classes zählen in jeder.
func (c *ChartService) FundingOverTimeByField(s *Snapshot) ChartSpec {
	type key struct {
		year  int
		field string
	}
	agg := make(map[key]float64)
	years := make(map[int]struct{})
	fields := make(map[string]struct{})

	for _, view := range s.Projects() {
		if view.StartDate == nil {
			continue
		}
		year := view.StartDate.Year()
		years[year] = struct{}{}
		for _, fc := range view.FieldClasses {
			fields[fc] = struct{}{}
			agg[key{year: year, field: fc}] += view.EcMaxContribution
		}
	}

	yearList := make([]int, 0, len(years))
	for y := range years {
		yearList = append(yearList, y)
	}
	sort.Ints(yearList)
	fieldList := make([]string, 0, len(fields))
	for f := range fields {
		fieldList = append(fieldList, f)
	}
	sort.Strings(fieldList)

	spec := ChartSpec{
		Type:   "line",
		Title:  "Funding Over Time per Scientific Field",
		XLabel: "Year",
		YLabel: "Funding (EUR)",
		Series: []ChartSeries{},
	}
	for _, field := range fieldList {
		series := ChartSeries{Name: field}
		for _, year := range yearList {
			series.X = append(series.X, fmt.Sprintf("%d", year))
			series.Y = append(series.Y, agg[key{year: year, field: field}])
		}
		spec.Series = append(spec.Series, series)
	}
	return spec
}

// FundingDistribution histogrammiert die EC-Förderung pro Projekt.
func (c *ChartService) FundingDistribution(s *Snapshot, bins int) ChartSpec {
	if bins <= 0 {
		bins = 20
	}
	spec := ChartSpec{
		Type:   "histogram",
		Title:  "Distribution of EC Funding per Project",
		XLabel: "EC Funding (EUR)",
		YLabel: "Projects",
		Series: []ChartSeries{},
	}

	var values []float64
	for _, view := range s.Projects() {
		values = append(values, view.EcMaxContribution)
	}
	if len(values) == 0 {
		return spec
	}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	width := (maxV - minV) / float64(bins)
	if width == 0 {
		// alle Projekte gleich gefördert: ein einziger Bin
		spec.Series = append(spec.Series, ChartSeries{
			X: []string{fmt.Sprintf("%.0f", minV)},
			Y: []float64{float64(len(values))},
		})
		return spec
	}

	counts := make([]float64, bins)
	for _, v := range values {
		idx := int((v - minV) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	series := ChartSeries{}
	for i := 0; i < bins; i++ {
		lo := minV + float64(i)*width
		series.X = append(series.X, fmt.Sprintf("%.0f-%.0f", lo, lo+width))
		series.Y = append(series.Y, counts[i])
	}
	spec.Series = append(spec.Series, series)
	return spec
}
