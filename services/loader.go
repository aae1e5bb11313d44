package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"horizon-dash/config"
	"horizon-dash/extracts"
	"horizon-dash/models"
	"horizon-dash/storage"
)

const upsertBatchSize = 200

// Dateinamen der CORDIS-Extrakte im Extract-Verzeichnis bzw. S3-Prefix.
const (
	extractProjects      = "project.csv"
	extractOrganizations = "organization.csv"
	extractSciVoc        = "euroSciVoc.csv"
	extractTopics        = "topics.csv"
	extractLegalBasis    = "legalBasis.csv"
	extractDeliverables  = "projectDeliverables.csv"
	extractPublications  = "projectPublications.csv"
)

var (
	recordsLoaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extract_records_loaded_total",
			Help: "Number of extract records upserted into the relational store.",
		},
		[]string{"table"},
	)
	recordsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extract_records_skipped_total",
			Help: "Number of extract records skipped because they were malformed or dangling.",
		},
		[]string{"table"},
	)
	snapshotRebuilds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_rebuilds_total",
			Help: "Number of snapshot rebuilds since process start.",
		},
	)
)

func init() {
	prometheus.MustRegister(recordsLoaded, recordsSkipped, snapshotRebuilds)
}

// LoadReport fasst einen Refresh für Operator-Sichtbarkeit zusammen.
type LoadReport struct {
	Loaded   map[string]int `json:"loaded"`
	Skipped  map[string]int `json:"skipped"`
	Projects int            `json:"projects"`
	Duration string         `json:"duration"`
}

// LoadService orchestriert den Dataset-Refresh: Extrakte lesen (lokal oder
// aus S3), bereinigen, in Postgres upserten und anschließend den Snapshot neu
// aufbauen und austauschen. Refreshes are serialized; reads keep going
// against the previous snapshot until the swap.
type LoadService struct {
	Config   *config.Config
	DB       *gorm.DB
	S3Client *s3.Client
	Logger   *zap.Logger
	Store    *SnapshotStore

	mu sync.Mutex
}

// NewLoadService erstellt eine neue Instanz des LoadService.
func NewLoadService(cfg *config.Config, db *gorm.DB, s3Client *s3.Client, logger *zap.Logger, store *SnapshotStore) *LoadService {
	return &LoadService{Config: cfg, DB: db, S3Client: s3Client, Logger: logger, Store: store}
}

// upsertEntities schreibt Stammdaten-Zeilen mit Update bei ID-Konflikt.
func upsertEntities[T any](db *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(rows, upsertBatchSize).Error
}

// upsertLinks schreibt Join-Zeilen; reine Schlüssel-Duplikate werden ignoriert.
func upsertLinks[T any](db *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, upsertBatchSize).Error
}

func jsonList(values []string) datatypes.JSON {
	b, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}

// fetchExtracts lädt die Roh-Extrakte aus dem konfigurierten Bucket ins
// Extract-Verzeichnis. Ohne Bucket-Konfiguration ist das ein No-Op und die
// lokalen Dateien werden direkt gelesen.
func (l *LoadService) fetchExtracts(ctx context.Context) error {
	if l.Config.ExtractS3Bucket == "" || l.S3Client == nil {
		return nil
	}
	if err := os.MkdirAll(l.Config.ExtractDir, 0o755); err != nil {
		return err
	}
	for _, name := range []string{
		extractProjects, extractOrganizations, extractSciVoc, extractTopics,
		extractLegalBasis, extractDeliverables, extractPublications,
	} {
		key := strings.TrimPrefix(l.Config.ExtractS3Prefix+name, "/")
		data, err := storage.DownloadFile(ctx, l.S3Client, l.Config.ExtractS3Bucket, key)
		if err != nil {
			l.Logger.Warn("Extract download failed, keeping local copy if present",
				zap.String("key", key), zap.Error(err))
			continue
		}
		if err := os.WriteFile(filepath.Join(l.Config.ExtractDir, name), data, 0o644); err != nil {
			return err
		}
		l.Logger.Info("Extract downloaded", zap.String("key", key), zap.Int("bytes", len(data)))
	}
	return nil
}

func (l *LoadService) readTable(name string) (*extracts.Table, int, error) {
	return extracts.ReadTableFile(filepath.Join(l.Config.ExtractDir, name))
}

// Refresh führt den kompletten Load-Schritt aus. Malformed rows are skipped
// and counted, dangling link rows are rejected without touching their parent
// project, and only a fully built snapshot replaces the served one.
//
// Upsert-only: rows that vanished from the current extracts are not deleted
// from Postgres. The served snapshot reflects the extracts, while a restart
// via LoadSnapshotFromDB still sees the stale rows until the tables are
// rebuilt from a fresh database.
func (l *LoadService) Refresh(ctx context.Context) (*LoadReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	started := time.Now()
	report := &LoadReport{Loaded: make(map[string]int), Skipped: make(map[string]int)}

	if err := l.fetchExtracts(ctx); err != nil {
		return nil, fmt.Errorf("fetch extracts: %w", err)
	}

	// Projekte sind Pflicht, alles andere darf fehlen.
	projectTable, broken, err := l.readTable(extractProjects)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", extractProjects, err)
	}
	projects, skipped := extracts.ParseProjects(projectTable)
	report.Skipped["projects"] += broken + skipped

	orgTable, broken, err := l.readTable(extractOrganizations)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", extractOrganizations, err)
	}
	organizations, participations, skipped := extracts.ParseOrganizations(orgTable)
	report.Skipped["organizations"] += broken + skipped

	var (
		sciVocCodes  []models.SciVocCode
		projSciVoc   []models.ProjectSciVoc
		topics       []models.Topic
		projTopics   []models.ProjectTopic
		legalBases   []models.LegalBasis
		projLegal    []models.ProjectLegalBasis
		deliverables []models.Deliverable
		publications []models.Publication
	)

	if t, broken, err := l.readTable(extractSciVoc); err != nil {
		l.Logger.Warn("SciVoc extract missing, classification falls back to 'other'", zap.Error(err))
	} else {
		var n int
		sciVocCodes, projSciVoc, n = extracts.ParseSciVoc(t)
		report.Skipped["sci_voc"] += broken + n
	}
	if t, broken, err := l.readTable(extractTopics); err != nil {
		l.Logger.Warn("Topics extract missing", zap.Error(err))
	} else {
		var n int
		topics, projTopics, n = extracts.ParseTopics(t)
		report.Skipped["topics"] += broken + n
	}
	if t, broken, err := l.readTable(extractLegalBasis); err != nil {
		l.Logger.Warn("Legal basis extract missing", zap.Error(err))
	} else {
		var n int
		legalBases, projLegal, n = extracts.ParseLegalBasis(t)
		report.Skipped["legal_basis"] += broken + n
	}
	if t, broken, err := l.readTable(extractDeliverables); err != nil {
		l.Logger.Warn("Deliverables extract missing", zap.Error(err))
	} else {
		var n int
		deliverables, n = extracts.ParseDeliverables(t)
		report.Skipped["deliverables"] += broken + n
	}
	if t, broken, err := l.readTable(extractPublications); err != nil {
		l.Logger.Warn("Publications extract missing", zap.Error(err))
	} else {
		var n int
		publications, n = extracts.ParsePublications(t)
		report.Skipped["publications"] += broken + n
	}

	// Referenzielle Integrität: Link-Zeilen ohne Eltern fliegen raus,
	// die Eltern selbst bleiben unberührt.
	projectIDs := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		projectIDs[p.ID] = struct{}{}
	}
	orgIDs := make(map[string]struct{}, len(organizations))
	for _, o := range organizations {
		orgIDs[o.ID] = struct{}{}
	}

	participations, n := filterLinks(participations, func(link models.ProjectOrganization) bool {
		_, okP := projectIDs[link.ProjectID]
		_, okO := orgIDs[link.OrganizationID]
		return okP && okO
	})
	report.Skipped["project_organizations"] += n

	projSciVoc, n = filterLinks(projSciVoc, func(link models.ProjectSciVoc) bool {
		_, ok := projectIDs[link.ProjectID]
		return ok
	})
	report.Skipped["project_sci_voc"] += n

	projTopics, n = filterLinks(projTopics, func(link models.ProjectTopic) bool {
		_, ok := projectIDs[link.ProjectID]
		return ok
	})
	report.Skipped["project_topics"] += n

	projLegal, n = filterLinks(projLegal, func(link models.ProjectLegalBasis) bool {
		_, ok := projectIDs[link.ProjectID]
		return ok
	})
	report.Skipped["project_legal_basis"] += n

	deliverables, n = filterLinks(deliverables, func(d models.Deliverable) bool {
		_, ok := projectIDs[d.ProjectID]
		return ok
	})
	report.Skipped["deliverables"] += n

	publications, n = filterLinks(publications, func(p models.Publication) bool {
		_, ok := projectIDs[p.ProjectID]
		return ok
	})
	report.Skipped["publications"] += n

	l.deriveProjectColumns(projects, organizations, participations, sciVocCodes, projSciVoc)

	// Upsert-or-replace in den relationalen Store
	db := l.DB.WithContext(ctx)
	steps := []struct {
		table string
		count int
		write func() error
	}{
		{"projects", len(projects), func() error { return upsertEntities(db, projects) }},
		{"organizations", len(organizations), func() error { return upsertEntities(db, organizations) }},
		{"topics", len(topics), func() error { return upsertEntities(db, topics) }},
		{"legal_basis", len(legalBases), func() error { return upsertEntities(db, legalBases) }},
		{"sci_voc", len(sciVocCodes), func() error { return upsertEntities(db, sciVocCodes) }},
		{"project_organizations", len(participations), func() error { return upsertEntities(db, participations) }},
		{"project_topics", len(projTopics), func() error { return upsertLinks(db, projTopics) }},
		{"project_legal_basis", len(projLegal), func() error { return upsertLinks(db, projLegal) }},
		{"project_sci_voc", len(projSciVoc), func() error { return upsertLinks(db, projSciVoc) }},
		{"deliverables", len(deliverables), func() error { return upsertEntities(db, deliverables) }},
		{"publications", len(publications), func() error { return upsertEntities(db, publications) }},
	}
	for _, step := range steps {
		if err := step.write(); err != nil {
			return nil, fmt.Errorf("upsert %s: %w", step.table, err)
		}
		report.Loaded[step.table] = step.count
		recordsLoaded.WithLabelValues(step.table).Add(float64(step.count))
	}
	for table, count := range report.Skipped {
		recordsSkipped.WithLabelValues(table).Add(float64(count))
	}

	// Copy-on-Reload: Snapshot komplett aufbauen, dann atomar tauschen
	snapshot := NewSnapshot(SnapshotInput{
		Projects:       projects,
		Organizations:  organizations,
		Participations: participations,
		SciVocCodes:    sciVocCodes,
		ProjectSciVoc:  projSciVoc,
		Topics:         topics,
		ProjectTopics:  projTopics,
		Deliverables:   deliverables,
		Publications:   publications,
	})
	l.Store.Swap(snapshot)
	snapshotRebuilds.Inc()

	report.Projects = snapshot.ProjectCount()
	report.Duration = time.Since(started).Round(time.Millisecond).String()
	l.Logger.Info("Dataset refresh completed",
		zap.Int("projects", report.Projects),
		zap.Any("skipped", report.Skipped),
		zap.String("duration", report.Duration))
	return report, nil
}

// filterLinks behält nur Zeilen, deren Eltern existieren; Rest wird gezählt.
func filterLinks[T any](rows []T, keep func(T) bool) ([]T, int) {
	kept := rows[:0]
	dropped := 0
	for _, row := range rows {
		if keep(row) {
			kept = append(kept, row)
		} else {
			dropped++
		}
	}
	return kept, dropped
}

// deriveProjectColumns berechnet die abgeleiteten Projekt-Spalten neu:
// Institutionszahl, Koordinator und die Klassifikationslisten aus dem
// aktuellen euroSciVoc-Tag-Set.
func (l *LoadService) deriveProjectColumns(
	projects []models.Project,
	organizations []models.Organization,
	participations []models.ProjectOrganization,
	sciVocCodes []models.SciVocCode,
	projSciVoc []models.ProjectSciVoc,
) {
	orgName := make(map[string]string, len(organizations))
	for _, o := range organizations {
		orgName[o.ID] = o.Name
	}
	pathByCode := make(map[string]string, len(sciVocCodes))
	for _, c := range sciVocCodes {
		pathByCode[c.Code] = c.Path
	}

	orgsByProject := make(map[string]map[string]struct{})
	coordinator := make(map[string]string)
	for _, link := range participations {
		set, ok := orgsByProject[link.ProjectID]
		if !ok {
			set = make(map[string]struct{})
			orgsByProject[link.ProjectID] = set
		}
		set[link.OrganizationID] = struct{}{}
		if strings.EqualFold(link.Role, "coordinator") {
			if _, ok := coordinator[link.ProjectID]; !ok {
				coordinator[link.ProjectID] = orgName[link.OrganizationID]
			}
		}
	}

	pathsByProject := make(map[string][]string)
	for _, link := range projSciVoc {
		if path, ok := pathByCode[link.SciVocCode]; ok && path != "" {
			pathsByProject[link.ProjectID] = append(pathsByProject[link.ProjectID], path)
		}
	}

	for i := range projects {
		p := &projects[i]
		p.NInstitutions = len(orgsByProject[p.ID])
		p.CoordinatorName = coordinator[p.ID]

		c := extracts.ClassifyPaths(pathsByProject[p.ID])
		p.FieldClasses = jsonList(c.FieldClasses)
		p.Fields = jsonList(c.Fields)
		p.SubFields = jsonList(c.SubFields)
		p.Niches = jsonList(c.Niches)
	}
}

// LoadSnapshotFromDB baut den Snapshot beim Start aus dem bestehenden
// Datenbankbestand auf, ohne die Extrakte anzufassen.
func (l *LoadService) LoadSnapshotFromDB(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	db := l.DB.WithContext(ctx)
	var in SnapshotInput
	reads := []struct {
		name string
		dest any
	}{
		{"projects", &in.Projects},
		{"organizations", &in.Organizations},
		{"project_organizations", &in.Participations},
		{"sci_voc", &in.SciVocCodes},
		{"project_sci_voc", &in.ProjectSciVoc},
		{"topics", &in.Topics},
		{"project_topics", &in.ProjectTopics},
		{"deliverables", &in.Deliverables},
		{"publications", &in.Publications},
	}
	for _, r := range reads {
		if err := db.Find(r.dest).Error; err != nil {
			return fmt.Errorf("load %s: %w", r.name, err)
		}
	}

	snapshot := NewSnapshot(in)
	l.Store.Swap(snapshot)
	snapshotRebuilds.Inc()
	l.Logger.Info("Snapshot loaded from database",
		zap.Int("projects", snapshot.ProjectCount()),
		zap.Int("organizations", snapshot.OrganizationCount()))
	return nil
}
