package services

import (
	"testing"

	"horizon-dash/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartFixture() *Snapshot {
	return NewSnapshot(SnapshotInput{
		Projects: []models.Project{
			{ID: "1", Acronym: "A", StartDate: datePtr(2020, 1, 1), EcMaxContribution: 100},
			{ID: "2", Acronym: "B", StartDate: datePtr(2020, 7, 1), EcMaxContribution: 300},
			{ID: "3", Acronym: "C", StartDate: datePtr(2021, 1, 1), EcMaxContribution: 500},
		},
		Organizations: []models.Organization{
			{ID: "o1", Name: "Uni Freiburg", Country: "DE"},
			{ID: "o2", Name: "CNRS", Country: "FR"},
			{ID: "o3", Name: "Acme", Country: "DE"},
		},
		Participations: []models.ProjectOrganization{
			{ProjectID: "1", OrganizationID: "o1", EcContribution: 60},
			{ProjectID: "1", OrganizationID: "o2", EcContribution: 40},
			{ProjectID: "2", OrganizationID: "o1", EcContribution: 200},
			{ProjectID: "2", OrganizationID: "o3", EcContribution: 100},
			{ProjectID: "3", OrganizationID: "o2", EcContribution: 500},
		},
		SciVocCodes: []models.SciVocCode{
			{Code: "n", Path: "/natural sciences/physics"},
			{Code: "e", Path: "/engineering and technology/materials"},
		},
		ProjectSciVoc: []models.ProjectSciVoc{
			{ProjectID: "1", SciVocCode: "n"},
			{ProjectID: "2", SciVocCode: "n"},
			{ProjectID: "3", SciVocCode: "e"},
		},
	})
}

func TestEcContributionByCountry(t *testing.T) {
	charts := NewChartService(nil)
	spec := charts.EcContributionByCountry(chartFixture())

	require.Len(t, spec.Series, 1)
	// DE: 60+200+100=360, FR: 40+500=540, absteigend sortiert
	assert.Equal(t, []string{"FR", "DE"}, spec.Series[0].X)
	assert.Equal(t, []float64{540, 360}, spec.Series[0].Y)
	assert.Equal(t, "bar", spec.Type)
}

func TestProjectsPerCountryCountsDistinct(t *testing.T) {
	charts := NewChartService(nil)
	spec := charts.ProjectsPerCountry(chartFixture())

	require.Len(t, spec.Series, 1)
	got := make(map[string]float64)
	for i, c := range spec.Series[0].X {
		got[c] = spec.Series[0].Y[i]
	}
	// DE beteiligt an Projekt 1 und 2, FR an 1 und 3
	assert.Equal(t, map[string]float64{"DE": 2, "FR": 2}, got)
}

func TestTopInstitutionsByFunding(t *testing.T) {
	charts := NewChartService(nil)

	spec := charts.TopInstitutionsByFunding(chartFixture(), 2)
	require.Len(t, spec.Series, 1)
	// CNRS 540, Uni Freiburg 260, Acme 100 → Top 2
	assert.Equal(t, []string{"CNRS", "Uni Freiburg"}, spec.Series[0].X)
	assert.Equal(t, []float64{540, 260}, spec.Series[0].Y)

	// topN <= 0 fällt auf den Default zurück
	spec = charts.TopInstitutionsByFunding(chartFixture(), 0)
	assert.Len(t, spec.Series[0].X, 3)
}

func TestFundingOverTimeByField(t *testing.T) {
	charts := NewChartService(nil)
	spec := charts.FundingOverTimeByField(chartFixture())

	assert.Equal(t, "line", spec.Type)
	require.Len(t, spec.Series, 2)

	byName := make(map[string]ChartSeries)
	for _, s := range spec.Series {
		byName[s.Name] = s
	}
	nat := byName["natural sciences"]
	require.Equal(t, []string{"2020", "2021"}, nat.X)
	assert.Equal(t, []float64{400, 0}, nat.Y)

	eng := byName["engineering and technology"]
	assert.Equal(t, []float64{0, 500}, eng.Y)
}

func TestFundingDistribution(t *testing.T) {
	charts := NewChartService(nil)

	spec := charts.FundingDistribution(chartFixture(), 2)
	require.Len(t, spec.Series, 1)
	// Spannweite 100-500, zwei Bins: [100,300) → 1 Projekt, [300,500] → 2
	assert.Equal(t, []float64{1, 2}, spec.Series[0].Y)

	// Leerer Snapshot: gültige, leere Antwort
	spec = charts.FundingDistribution(NewSnapshot(SnapshotInput{}), 10)
	assert.Empty(t, spec.Series)

	// Identische Förderung: ein einzelner Bin
	uniform := NewSnapshot(SnapshotInput{Projects: []models.Project{
		{ID: "1", EcMaxContribution: 50},
		{ID: "2", EcMaxContribution: 50},
	}})
	spec = charts.FundingDistribution(uniform, 10)
	require.Len(t, spec.Series, 1)
	assert.Equal(t, []float64{2}, spec.Series[0].Y)
}
