package services

import (
	"errors"
	"testing"
	"time"

	"horizon-dash/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(year, month, day int) *time.Time {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

// collaborationFixture: two projects, four organizations. Project 101 links
// org-a/org-b/org-c, project 102 links org-a/org-b again plus org-d.
func collaborationFixture() *Snapshot {
	return NewSnapshot(SnapshotInput{
		Projects: []models.Project{
			{ID: "101", Acronym: "ALPHA", StartDate: datePtr(2021, 1, 1), EcMaxContribution: 2_000_000, FundingScheme: "RIA"},
			{ID: "102", Acronym: "BETA", StartDate: datePtr(2022, 6, 1), EcMaxContribution: 500_000, FundingScheme: "CSA"},
		},
		Organizations: []models.Organization{
			{ID: "org-a", Name: "Uni Freiburg", Country: "DE", ActivityType: "HES"},
			{ID: "org-b", Name: "CNRS", Country: "FR", ActivityType: "REC"},
			{ID: "org-c", Name: "Acme Robotics", Country: "DE", ActivityType: "PRC"},
			{ID: "org-d", Name: "TU Wien", Country: "AT", ActivityType: "HES"},
		},
		Participations: []models.ProjectOrganization{
			{ProjectID: "101", OrganizationID: "org-a", Role: "coordinator"},
			{ProjectID: "101", OrganizationID: "org-b", Role: "participant"},
			{ProjectID: "101", OrganizationID: "org-c", Role: "participant"},
			{ProjectID: "102", OrganizationID: "org-a", Role: "coordinator"},
			{ProjectID: "102", OrganizationID: "org-b", Role: "participant"},
			{ProjectID: "102", OrganizationID: "org-d", Role: "participant"},
		},
		SciVocCodes: []models.SciVocCode{
			{Code: "23", Path: "/natural sciences/physical sciences/astronomy", Title: "astronomy"},
		},
		ProjectSciVoc: []models.ProjectSciVoc{
			{ProjectID: "101", SciVocCode: "23"},
		},
	})
}

func TestBuildCollaborationNetworkCliqueFromSingleProject(t *testing.T) {
	s := collaborationFixture()

	layout, err := BuildCollaborationNetwork(s, NetworkFilter{Field: "natural sciences"})
	require.NoError(t, err)

	// Nur Projekt 101 trägt den Tag: Clique aus drei Einrichtungen
	require.Len(t, layout.Nodes, 3)
	require.Len(t, layout.Edges, 3)
	for _, e := range layout.Edges {
		assert.Equal(t, 1, e.Weight)
	}

	// Pro Kante zwei Koordinaten plus nil-Sentinel
	require.Len(t, layout.EdgeX, 9)
	require.Len(t, layout.EdgeY, 9)
	assert.Nil(t, layout.EdgeX[2])
	assert.Nil(t, layout.EdgeX[5])
	assert.Nil(t, layout.EdgeX[8])
	assert.NotNil(t, layout.EdgeX[0])
}

func TestBuildCollaborationNetworkWeightAccumulatesAcrossProjects(t *testing.T) {
	s := collaborationFixture()

	layout, err := BuildCollaborationNetwork(s, NetworkFilter{})
	require.NoError(t, err)

	// org-a und org-b teilen beide Projekte, alle anderen Paare nur eins
	weights := make(map[string]int)
	for _, e := range layout.Edges {
		weights[e.SourceID+"|"+e.TargetID] = e.Weight
	}
	assert.Equal(t, 2, weights["org-a|org-b"])
	assert.Equal(t, 1, weights["org-a|org-c"])
	assert.Equal(t, 1, weights["org-b|org-d"])
}

func TestBuildCollaborationNetworkMinParticipants(t *testing.T) {
	s := collaborationFixture()

	// Schwellwert über beiden Projektgrößen: gültiger, leerer Graph
	layout, err := BuildCollaborationNetwork(s, NetworkFilter{MinParticipants: 4})
	require.NoError(t, err)
	assert.Empty(t, layout.Nodes)
	assert.Empty(t, layout.Edges)
	assert.Empty(t, layout.EdgeX)

	// Unter 2 ist keine Kollaboration definierbar
	_, err = BuildCollaborationNetwork(s, NetworkFilter{MinParticipants: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMinParticipants))
}

func TestBuildCollaborationNetworkMaxProjectsCapIsIDOrdered(t *testing.T) {
	s := collaborationFixture()

	// Cap 1 behält das Projekt mit der kleinsten ID (101), nicht 102
	layout, err := BuildCollaborationNetwork(s, NetworkFilter{MaxProjects: 1})
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, n := range layout.Nodes {
		ids[n.OrganizationID] = true
	}
	assert.True(t, ids["org-c"])
	assert.False(t, ids["org-d"])
	require.Len(t, layout.Edges, 3)
}

func TestBuildCollaborationNetworkOrganizationFilters(t *testing.T) {
	s := collaborationFixture()

	// Länderfilter DE+FR wirft org-d aus Projekt 102; der Rest bleibt Clique
	layout, err := BuildCollaborationNetwork(s, NetworkFilter{Countries: []string{"DE", "FR"}})
	require.NoError(t, err)
	for _, n := range layout.Nodes {
		assert.NotEqual(t, "org-d", n.OrganizationID)
	}

	// Aktivitätsfilter PRC lässt in keinem Projekt zwei Teilnehmer übrig
	layout, err = BuildCollaborationNetwork(s, NetworkFilter{ActivityTypes: []string{"PRC"}})
	require.NoError(t, err)
	assert.Empty(t, layout.Edges)
}

func TestBuildCollaborationNetworkProjectFilters(t *testing.T) {
	s := collaborationFixture()

	layout, err := BuildCollaborationNetwork(s, NetworkFilter{StartYear: 2022})
	require.NoError(t, err)
	require.Len(t, layout.Nodes, 3)

	layout, err = BuildCollaborationNetwork(s, NetworkFilter{FundingSchemes: []string{"ria"}})
	require.NoError(t, err)
	require.Len(t, layout.Nodes, 3)

	layout, err = BuildCollaborationNetwork(s, NetworkFilter{MinContribution: 1_000_000})
	require.NoError(t, err)
	require.Len(t, layout.Edges, 3)
}

func TestBuildCollaborationNetworkDeterministicLayout(t *testing.T) {
	s := collaborationFixture()

	first, err := BuildCollaborationNetwork(s, NetworkFilter{Seed: 42})
	require.NoError(t, err)

	// Wiederholte Builds mit gleichem Seed müssen bitidentische Koordinaten
	// liefern, nicht nur ungefähr gleiche.
	for run := 0; run < 3; run++ {
		next, err := BuildCollaborationNetwork(s, NetworkFilter{Seed: 42})
		require.NoError(t, err)
		require.Equal(t, first.Nodes, next.Nodes, "run %d", run)
		require.Equal(t, first.Edges, next.Edges, "run %d", run)
		require.Equal(t, first.EdgeX, next.EdgeX, "run %d", run)
		require.Equal(t, first.EdgeY, next.EdgeY, "run %d", run)
	}
}

func TestBuildCollaborationNetworkEmptySnapshot(t *testing.T) {
	layout, err := BuildCollaborationNetwork(NewSnapshot(SnapshotInput{}), NetworkFilter{})
	require.NoError(t, err)
	assert.NotNil(t, layout.Nodes)
	assert.Empty(t, layout.Nodes)
	assert.Empty(t, layout.Edges)
}

func TestBuildCollaborationNetworkTitle(t *testing.T) {
	s := collaborationFixture()

	layout, err := BuildCollaborationNetwork(s, NetworkFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Institution Collaboration Network", layout.Title)

	layout, err = BuildCollaborationNetwork(s, NetworkFilter{Field: "natural sciences"})
	require.NoError(t, err)
	assert.Contains(t, layout.Title, "natural sciences")
}
