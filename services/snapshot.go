package services

import (
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"horizon-dash/extracts"
	"horizon-dash/models"
)

// Participant ist eine Projektbeteiligung inklusive der Einrichtungsdaten,
// die der Network-Builder zum Filtern braucht.
type Participant struct {
	OrganizationID string  `json:"organization_id"`
	Name           string  `json:"name"`
	Country        string  `json:"country"`
	ActivityType   string  `json:"activity_type"`
	Role           string  `json:"role"`
	SME            bool    `json:"sme"`
	EcContribution float64 `json:"ec_contribution"`
}

// ProjectView ist die vereinheitlichte Sicht auf ein Projekt: Stammdaten plus
// alle angereicherten Felder aus Organisationen, Topics und euroSciVoc.
type ProjectView struct {
	ID                 string     `json:"id"`
	Acronym            string     `json:"acronym"`
	Title              string     `json:"title"`
	Status             string     `json:"status"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	TotalCost          float64    `json:"total_cost"`
	EcMaxContribution  float64    `json:"ec_max_contribution"`
	FundingScheme      string     `json:"funding_scheme"`
	FrameworkProgramme string     `json:"framework_programme"`

	DurationDays          int     `json:"duration_days"`
	DurationMonths        int     `json:"duration_months"`
	DurationYears         int     `json:"duration_years"`
	EcContributionPerYear float64 `json:"ec_contribution_per_year"`
	TotalCostPerYear      float64 `json:"total_cost_per_year"`
	CoordinatorName       string  `json:"coordinator_name,omitempty"`

	SciVocPaths  []string `json:"sci_voc_paths,omitempty"`
	SciVocTitles []string `json:"sci_voc_titles,omitempty"`
	TopicTitles  []string `json:"topic_titles,omitempty"`

	// Abgeleitete Klassifikation (Level 1-4 der euroSciVoc-Pfade)
	FieldClasses []string `json:"field_classes"`
	Fields       []string `json:"fields"`
	SubFields    []string `json:"sub_fields"`
	Niches       []string `json:"niches"`

	Participants []Participant `json:"participants,omitempty"`
}

// SnapshotInput bündelt die geladenen Tabellen für den Snapshot-Aufbau.
// The loader fills it from the database, tests fill it directly.
type SnapshotInput struct {
	Projects       []models.Project
	Organizations  []models.Organization
	Participations []models.ProjectOrganization
	SciVocCodes    []models.SciVocCode
	ProjectSciVoc  []models.ProjectSciVoc
	Topics         []models.Topic
	ProjectTopics  []models.ProjectTopic
	Deliverables   []models.Deliverable
	Publications   []models.Publication
}

// Snapshot ist die unveränderliche In-Memory-Sicht auf den Datenbestand, gegen
// die alle Lese-Anfragen laufen. A reload builds a complete new snapshot and
// swaps it in; nothing here mutates after NewSnapshot returns.
type Snapshot struct {
	projects  []*ProjectView // ascending project ID
	byID      map[string]*ProjectView
	byAcronym map[string]*ProjectView

	organizations map[string]models.Organization
	deliverables  map[string][]models.Deliverable
	publications  map[string][]models.Publication

	fields   []string
	loadedAt time.Time
}

// lessProjectID orders project identifiers numerically where possible (CORDIS
// IDs are unpadded digit strings), lexicographically otherwise.
func lessProjectID(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

// NewSnapshot joins the loaded tables into the unified project view and
// recomputes every derived field from scratch, so the classification always
// reflects the current vocabulary tag set.
func NewSnapshot(in SnapshotInput) *Snapshot {
	s := &Snapshot{
		byID:          make(map[string]*ProjectView, len(in.Projects)),
		byAcronym:     make(map[string]*ProjectView, len(in.Projects)),
		organizations: make(map[string]models.Organization, len(in.Organizations)),
		deliverables:  make(map[string][]models.Deliverable),
		publications:  make(map[string][]models.Publication),
		loadedAt:      time.Now().UTC(),
	}

	for _, org := range in.Organizations {
		s.organizations[org.ID] = org
	}

	pathByCode := make(map[string]models.SciVocCode, len(in.SciVocCodes))
	for _, c := range in.SciVocCodes {
		pathByCode[c.Code] = c
	}
	titleByTopic := make(map[string]string, len(in.Topics))
	for _, t := range in.Topics {
		titleByTopic[t.Code] = t.Title
	}

	for _, p := range in.Projects {
		view := &ProjectView{
			ID:                    p.ID,
			Acronym:               p.Acronym,
			Title:                 p.Title,
			Status:                p.Status,
			StartDate:             p.StartDate,
			EndDate:               p.EndDate,
			TotalCost:             p.TotalCost,
			EcMaxContribution:     p.EcMaxContribution,
			FundingScheme:         p.FundingScheme,
			FrameworkProgramme:    p.FrameworkProgramme,
			DurationDays:          p.DurationDays,
			DurationMonths:        p.DurationMonths,
			DurationYears:         p.DurationYears,
			EcContributionPerYear: p.EcContributionPerYear,
			TotalCostPerYear:      p.TotalCostPerYear,
		}
		s.byID[p.ID] = view
		if p.Acronym != "" {
			s.byAcronym[p.Acronym] = view
		}
		s.projects = append(s.projects, view)
	}

	// Vokabular-Anreicherung; Links auf unbekannte Projekte fallen weg.
	for _, link := range in.ProjectSciVoc {
		view, ok := s.byID[link.ProjectID]
		if !ok {
			continue
		}
		if code, ok := pathByCode[link.SciVocCode]; ok {
			view.SciVocPaths = append(view.SciVocPaths, code.Path)
			view.SciVocTitles = append(view.SciVocTitles, code.Title)
		}
	}
	for _, link := range in.ProjectTopics {
		view, ok := s.byID[link.ProjectID]
		if !ok {
			continue
		}
		if title, ok := titleByTopic[link.TopicCode]; ok && title != "" {
			view.TopicTitles = append(view.TopicTitles, title)
		}
	}

	// Beteiligungen; Links mit unbekanntem Projekt oder unbekannter
	// Einrichtung fallen weg (referenzielle Integrität der Sicht).
	for _, link := range in.Participations {
		view, ok := s.byID[link.ProjectID]
		if !ok {
			continue
		}
		org, ok := s.organizations[link.OrganizationID]
		if !ok {
			continue
		}
		view.Participants = append(view.Participants, Participant{
			OrganizationID: org.ID,
			Name:           org.Name,
			Country:        org.Country,
			ActivityType:   org.ActivityType,
			Role:           link.Role,
			SME:            org.SME,
			EcContribution: link.EcContribution,
		})
		if strings.EqualFold(link.Role, "coordinator") && view.CoordinatorName == "" {
			view.CoordinatorName = org.Name
		}
	}

	for _, d := range in.Deliverables {
		if _, ok := s.byID[d.ProjectID]; ok {
			s.deliverables[d.ProjectID] = append(s.deliverables[d.ProjectID], d)
		}
	}
	for _, p := range in.Publications {
		if _, ok := s.byID[p.ProjectID]; ok {
			s.publications[p.ProjectID] = append(s.publications[p.ProjectID], p)
		}
	}

	// Abgeleitete Felder aus den nun bekannten Verknüpfungen neu berechnen
	fieldSet := make(map[string]struct{})
	for _, view := range s.projects {
		c := extracts.ClassifyPaths(view.SciVocPaths)
		view.FieldClasses = c.FieldClasses
		view.Fields = c.Fields
		view.SubFields = c.SubFields
		view.Niches = c.Niches

		sort.Slice(view.Participants, func(i, j int) bool {
			return view.Participants[i].OrganizationID < view.Participants[j].OrganizationID
		})
		for _, p := range view.SciVocPaths {
			if top := extracts.TopLevelField(p); top != "" {
				fieldSet[top] = struct{}{}
			}
		}
	}

	s.fields = make([]string, 0, len(fieldSet))
	for f := range fieldSet {
		s.fields = append(s.fields, f)
	}
	sort.Strings(s.fields)

	sort.Slice(s.projects, func(i, j int) bool {
		return lessProjectID(s.projects[i].ID, s.projects[j].ID)
	})
	return s
}

// Projects liefert alle Projekte in stabiler Reihenfolge (ID aufsteigend).
func (s *Snapshot) Projects() []*ProjectView { return s.projects }

// ProjectByID liefert die vereinheitlichte Projektsicht.
func (s *Snapshot) ProjectByID(id string) (*ProjectView, bool) {
	v, ok := s.byID[id]
	return v, ok
}

// ProjectByAcronym liefert die Projektsicht über das Akronym.
func (s *Snapshot) ProjectByAcronym(acronym string) (*ProjectView, bool) {
	v, ok := s.byAcronym[acronym]
	return v, ok
}

// Organization liefert die Stammdaten einer Einrichtung.
func (s *Snapshot) Organization(id string) (models.Organization, bool) {
	org, ok := s.organizations[id]
	return org, ok
}

// ScientificFields sind alle im Bestand vorkommenden Top-Level-Felder.
func (s *Snapshot) ScientificFields() []string { return s.fields }

// ProjectCount und OrganizationCount für Health/Status-Ausgaben.
func (s *Snapshot) ProjectCount() int      { return len(s.projects) }
func (s *Snapshot) OrganizationCount() int { return len(s.organizations) }

// LoadedAt ist der Aufbauzeitpunkt des Snapshots.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// ProjectsByField groups project acronyms by top-level scientific field, the
// untagged ones under "other".
func (s *Snapshot) ProjectsByField() map[string][]string {
	out := make(map[string][]string)
	for _, view := range s.projects {
		tops := make(map[string]struct{})
		for _, p := range view.SciVocPaths {
			if t := extracts.TopLevelField(p); t != "" {
				tops[t] = struct{}{}
			}
		}
		if len(tops) == 0 {
			tops["other"] = struct{}{}
		}
		for t := range tops {
			if view.Acronym != "" {
				out[t] = append(out[t], view.Acronym)
			}
		}
	}
	for _, acronyms := range out {
		sort.Strings(acronyms)
	}
	return out
}

// ProjectsByInstitution returns the acronyms of all projects with at least one
// participant whose name contains the keyword (case-insensitive).
func (s *Snapshot) ProjectsByInstitution(keyword string) []string {
	keyword = strings.ToLower(keyword)
	var acronyms []string
	for _, view := range s.projects {
		for _, part := range view.Participants {
			if strings.Contains(strings.ToLower(part.Name), keyword) {
				if view.Acronym != "" {
					acronyms = append(acronyms, view.Acronym)
				}
				break
			}
		}
	}
	sort.Strings(acronyms)
	return acronyms
}

// ProjectSummary ist die verdichtete Detailsicht eines Projekts.
type ProjectSummary struct {
	ProjectID string `json:"project_id"`
	Acronym   string `json:"acronym"`
	Title     string `json:"title"`

	Temporal struct {
		StartYear    int `json:"start_year,omitempty"`
		EndYear      int `json:"end_year,omitempty"`
		DurationDays int `json:"duration_days"`
	} `json:"temporal"`

	Institutions struct {
		NPartners     int            `json:"n_partners"`
		Countries     map[string]int `json:"countries"`
		ActivityTypes map[string]int `json:"activity_types"`
	} `json:"institutions"`

	Financials struct {
		EcTotal             float64 `json:"ec_total"`
		TotalCost           float64 `json:"total_cost"`
		EcSumFromPartners   float64 `json:"ec_sum_from_partners"`
		EcPerDeliverable    float64 `json:"ec_per_deliverable,omitempty"`
		EcPerPublication    float64 `json:"ec_per_publication,omitempty"`
		ContributionPerYear float64 `json:"ec_contribution_per_year"`
	} `json:"financials"`

	Keywords struct {
		SciVoc           []string       `json:"sci_voc"`
		Topics           []string       `json:"topics"`
		PublicationTypes map[string]int `json:"publication_types"`
		DeliverableTypes map[string]int `json:"deliverable_types"`
	} `json:"keywords"`
}

// Summary verdichtet Projektsicht, Deliverables und Publikationen.
func (s *Snapshot) Summary(id string) (*ProjectSummary, bool) {
	view, ok := s.byID[id]
	if !ok {
		return nil, false
	}

	sum := &ProjectSummary{ProjectID: view.ID, Acronym: view.Acronym, Title: view.Title}
	if view.StartDate != nil {
		sum.Temporal.StartYear = view.StartDate.Year()
	}
	if view.EndDate != nil {
		sum.Temporal.EndYear = view.EndDate.Year()
	}
	sum.Temporal.DurationDays = view.DurationDays

	sum.Institutions.Countries = make(map[string]int)
	sum.Institutions.ActivityTypes = make(map[string]int)
	partnerIDs := make(map[string]struct{})
	ecSum := 0.0
	for _, p := range view.Participants {
		partnerIDs[p.OrganizationID] = struct{}{}
		if p.Country != "" {
			sum.Institutions.Countries[p.Country]++
		}
		if p.ActivityType != "" {
			sum.Institutions.ActivityTypes[p.ActivityType]++
		}
		ecSum += p.EcContribution
	}
	sum.Institutions.NPartners = len(partnerIDs)

	sum.Financials.EcTotal = view.EcMaxContribution
	sum.Financials.TotalCost = view.TotalCost
	sum.Financials.EcSumFromPartners = ecSum
	sum.Financials.ContributionPerYear = view.EcContributionPerYear

	deliverables := s.deliverables[view.ID]
	publications := s.publications[view.ID]
	if n := len(deliverables); n > 0 {
		sum.Financials.EcPerDeliverable = view.EcMaxContribution / float64(n)
	}
	if n := len(publications); n > 0 {
		sum.Financials.EcPerPublication = view.EcMaxContribution / float64(n)
	}

	sum.Keywords.SciVoc = view.SciVocTitles
	sum.Keywords.Topics = view.TopicTitles
	sum.Keywords.PublicationTypes = make(map[string]int)
	for _, p := range publications {
		if p.IsPublishedAs != "" {
			sum.Keywords.PublicationTypes[p.IsPublishedAs]++
		}
	}
	sum.Keywords.DeliverableTypes = make(map[string]int)
	for _, d := range deliverables {
		if d.DeliverableType != "" {
			sum.Keywords.DeliverableTypes[d.DeliverableType]++
		}
	}
	return sum, true
}

// SnapshotStore hält den aktuell servierten Snapshot. Swap is atomic so
// in-flight requests keep reading the old snapshot while a reload publishes
// the new one.
type SnapshotStore struct {
	current atomic.Pointer[Snapshot]
}

// NewSnapshotStore erstellt einen Store mit leerem Start-Snapshot.
func NewSnapshotStore() *SnapshotStore {
	store := &SnapshotStore{}
	store.current.Store(NewSnapshot(SnapshotInput{}))
	return store
}

// Current liefert den aktuell servierten Snapshot.
func (s *SnapshotStore) Current() *Snapshot { return s.current.Load() }

// Swap veröffentlicht einen fertig aufgebauten Snapshot.
func (s *SnapshotStore) Swap(next *Snapshot) { s.current.Store(next) }
