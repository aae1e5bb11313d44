package extracts

import (
	"horizon-dash/models"
)

// ParseProjects baut Projekt-Modelle aus dem project-Extrakt.
// Rows without an identifier are skipped and counted; everything else is
// loaded as-is, the derived columns are filled in later by the loader once
// the sci-voc and organization links are known.
func ParseProjects(t *Table) ([]models.Project, int) {
	var projects []models.Project
	skipped := 0
	seen := make(map[string]struct{}, len(t.Rows))

	for _, row := range t.Rows {
		id := t.Col(row, "id")
		if id == "" {
			skipped++
			continue
		}
		if _, dup := seen[id]; dup {
			skipped++
			continue
		}
		seen[id] = struct{}{}

		start := CleanDate(t.Col(row, "startDate"))
		end := CleanDate(t.Col(row, "endDate"))
		days, months, years := DurationFields(start, end)

		p := models.Project{
			ID:                 id,
			Acronym:            t.Col(row, "acronym"),
			Title:              t.Col(row, "title"),
			Status:             t.Col(row, "status"),
			StartDate:          start,
			EndDate:            end,
			EcSignatureDate:    CleanDate(t.Col(row, "ecSignatureDate")),
			TotalCost:          CleanFloat(t.Col(row, "totalCost")),
			EcMaxContribution:  CleanFloat(t.Col(row, "ecMaxContribution")),
			FundingScheme:      t.Col(row, "fundingScheme"),
			FrameworkProgramme: t.Col(row, "frameworkProgramme"),
			MasterCall:         t.Col(row, "masterCall"),
			SubCall:            t.Col(row, "subCall"),
			Nature:             t.Col(row, "nature"),
			Objective:          t.Col(row, "objective"),
			RCN:                t.Col(row, "rcn"),
			GrantDOI:           t.Col(row, "grantDoi"),
			DurationDays:       days,
			DurationMonths:     months,
			DurationYears:      years,
		}
		if years > 0 {
			p.EcContributionPerYear = p.EcMaxContribution / float64(years)
			p.TotalCostPerYear = p.TotalCost / float64(years)
		}
		projects = append(projects, p)
	}
	return projects, skipped
}
