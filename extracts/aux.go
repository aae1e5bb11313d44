package extracts

import (
	"horizon-dash/models"
)

// ParseDeliverables baut Deliverable-Modelle aus dem projectDeliverables-Extrakt.
// A row needs its own identifier and a project reference; anything else is
// free-form metadata and loaded verbatim.
func ParseDeliverables(t *Table) ([]models.Deliverable, int) {
	var out []models.Deliverable
	skipped := 0
	seen := make(map[string]struct{})

	for _, row := range t.Rows {
		id := t.Col(row, "deliverableID")
		if id == "" {
			id = t.Col(row, "id")
		}
		projectID := t.Col(row, "projectID")
		if id == "" || projectID == "" {
			skipped++
			continue
		}
		if _, dup := seen[id]; dup {
			skipped++
			continue
		}
		seen[id] = struct{}{}
		out = append(out, models.Deliverable{
			ID:              id,
			ProjectID:       projectID,
			Title:           t.Col(row, "title"),
			DeliverableType: t.Col(row, "deliverableType"),
			Description:     t.Col(row, "description"),
			URL:             t.Col(row, "url"),
			Collection:      t.Col(row, "collection"),
		})
	}
	return out, skipped
}

// ParsePublications baut Publication-Modelle aus dem projectPublications-Extrakt.
func ParsePublications(t *Table) ([]models.Publication, int) {
	var out []models.Publication
	skipped := 0
	seen := make(map[string]struct{})

	for _, row := range t.Rows {
		id := t.Col(row, "publicationID")
		if id == "" {
			id = t.Col(row, "id")
		}
		projectID := t.Col(row, "projectID")
		if id == "" || projectID == "" {
			skipped++
			continue
		}
		if _, dup := seen[id]; dup {
			skipped++
			continue
		}
		seen[id] = struct{}{}
		out = append(out, models.Publication{
			ID:             id,
			ProjectID:      projectID,
			Title:          t.Col(row, "title"),
			Authors:        t.Col(row, "authors"),
			DOI:            t.Col(row, "doi"),
			IsPublishedAs:  t.Col(row, "isPublishedAs"),
			JournalTitle:   t.Col(row, "journalTitle"),
			JournalNumber:  t.Col(row, "journalNumber"),
			PublishedYear:  CleanInt(t.Col(row, "publishedYear")),
			PublishedPages: t.Col(row, "publishedPages"),
		})
	}
	return out, skipped
}
