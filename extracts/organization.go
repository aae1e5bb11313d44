package extracts

import (
	"horizon-dash/models"
)

// ParseOrganizations zerlegt den organization-Extrakt in Einrichtungen und
// Projekt-Beteiligungen. The raw file carries one row per participation with
// the organization attributes repeated, so organizations de-duplicate on their
// identifier while every valid row yields one ProjectOrganization link.
func ParseOrganizations(t *Table) ([]models.Organization, []models.ProjectOrganization, int) {
	var (
		orgs  []models.Organization
		links []models.ProjectOrganization
	)
	skipped := 0
	seenOrg := make(map[string]struct{})
	seenLink := make(map[[2]string]struct{})

	for _, row := range t.Rows {
		orgID := t.Col(row, "organisationID")
		if orgID == "" {
			orgID = t.Col(row, "id")
		}
		projectID := t.Col(row, "projectID")
		if orgID == "" {
			skipped++
			continue
		}

		if _, dup := seenOrg[orgID]; !dup {
			seenOrg[orgID] = struct{}{}
			orgs = append(orgs, models.Organization{
				ID:              orgID,
				Name:            t.Col(row, "name"),
				ShortName:       t.Col(row, "shortName"),
				VatNumber:       t.Col(row, "vatNumber"),
				SME:             CleanBool(t.Col(row, "SME")),
				ActivityType:    t.Col(row, "activityType"),
				Street:          t.Col(row, "street"),
				PostCode:        t.Col(row, "postCode"),
				City:            t.Col(row, "city"),
				Country:         t.Col(row, "country"),
				NutsCode:        t.Col(row, "nutsCode"),
				Geolocation:     t.Col(row, "geolocation"),
				OrganizationURL: t.Col(row, "organizationURL"),
				ContactForm:     t.Col(row, "contactForm"),
			})
		}

		// Beteiligung nur mit Projektbezug; Zeile ohne projectID ist trotzdem
		// eine gültige Einrichtung.
		if projectID == "" {
			continue
		}
		key := [2]string{projectID, orgID}
		if _, dup := seenLink[key]; dup {
			skipped++
			continue
		}
		seenLink[key] = struct{}{}
		links = append(links, models.ProjectOrganization{
			ProjectID:          projectID,
			OrganizationID:     orgID,
			Role:               t.Col(row, "role"),
			OrderIndex:         CleanInt(t.Col(row, "order")),
			EcContribution:     CleanFloat(t.Col(row, "ecContribution")),
			NetEcContribution:  CleanFloat(t.Col(row, "netEcContribution")),
			TotalCost:          CleanFloat(t.Col(row, "totalCost")),
			Active:             CleanBool(t.Col(row, "active")),
			EndOfParticipation: CleanBool(t.Col(row, "endOfParticipation")),
		})
	}
	return orgs, links, skipped
}
