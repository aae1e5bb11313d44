package extracts

import (
	"horizon-dash/models"
)

// ParseSciVoc zerlegt den euroSciVoc-Extrakt in Vokabular-Codes und
// Projekt-Verknüpfungen. Codes de-duplicate on their identifier.
func ParseSciVoc(t *Table) ([]models.SciVocCode, []models.ProjectSciVoc, int) {
	var (
		codes []models.SciVocCode
		links []models.ProjectSciVoc
	)
	skipped := 0
	seenCode := make(map[string]struct{})
	seenLink := make(map[[2]string]struct{})

	for _, row := range t.Rows {
		code := t.Col(row, "euroSciVocCode")
		if code == "" {
			code = t.Col(row, "code")
		}
		projectID := t.Col(row, "projectID")
		if code == "" || projectID == "" {
			skipped++
			continue
		}

		if _, dup := seenCode[code]; !dup {
			seenCode[code] = struct{}{}
			path := t.Col(row, "euroSciVocPath")
			if path == "" {
				path = t.Col(row, "path")
			}
			title := t.Col(row, "euroSciVocTitle")
			if title == "" {
				title = t.Col(row, "title")
			}
			codes = append(codes, models.SciVocCode{
				Code:        code,
				Path:        path,
				Title:       title,
				Description: t.Col(row, "euroSciVocDescription"),
			})
		}

		key := [2]string{projectID, code}
		if _, dup := seenLink[key]; dup {
			continue
		}
		seenLink[key] = struct{}{}
		links = append(links, models.ProjectSciVoc{ProjectID: projectID, SciVocCode: code})
	}
	return codes, links, skipped
}

// ParseTopics zerlegt den topics-Extrakt.
func ParseTopics(t *Table) ([]models.Topic, []models.ProjectTopic, int) {
	var (
		topics []models.Topic
		links  []models.ProjectTopic
	)
	skipped := 0
	seenTopic := make(map[string]struct{})
	seenLink := make(map[[2]string]struct{})

	for _, row := range t.Rows {
		code := t.Col(row, "topic")
		if code == "" {
			code = t.Col(row, "code")
		}
		projectID := t.Col(row, "projectID")
		if code == "" || projectID == "" {
			skipped++
			continue
		}
		if _, dup := seenTopic[code]; !dup {
			seenTopic[code] = struct{}{}
			topics = append(topics, models.Topic{Code: code, Title: t.Col(row, "title")})
		}
		key := [2]string{projectID, code}
		if _, dup := seenLink[key]; dup {
			continue
		}
		seenLink[key] = struct{}{}
		links = append(links, models.ProjectTopic{ProjectID: projectID, TopicCode: code})
	}
	return topics, links, skipped
}

// ParseLegalBasis zerlegt den legalBasis-Extrakt.
func ParseLegalBasis(t *Table) ([]models.LegalBasis, []models.ProjectLegalBasis, int) {
	var (
		bases []models.LegalBasis
		links []models.ProjectLegalBasis
	)
	skipped := 0
	seenBasis := make(map[string]struct{})
	seenLink := make(map[[2]string]struct{})

	for _, row := range t.Rows {
		code := t.Col(row, "legalBasis")
		if code == "" {
			code = t.Col(row, "code")
		}
		projectID := t.Col(row, "projectID")
		if code == "" || projectID == "" {
			skipped++
			continue
		}
		if _, dup := seenBasis[code]; !dup {
			seenBasis[code] = struct{}{}
			bases = append(bases, models.LegalBasis{
				Code:                code,
				Title:               t.Col(row, "title"),
				UniqueProgrammePart: t.Col(row, "uniqueProgrammePart"),
			})
		}
		key := [2]string{projectID, code}
		if _, dup := seenLink[key]; dup {
			continue
		}
		seenLink[key] = struct{}{}
		links = append(links, models.ProjectLegalBasis{ProjectID: projectID, LegalBasisCode: code})
	}
	return bases, links, skipped
}
