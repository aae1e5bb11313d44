package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"horizon-dash/config"
	"horizon-dash/models"
	"horizon-dash/services"
	"horizon-dash/storage"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to the CORDIS database.")

	// Auto-Migration
	logging.Info("Running database auto-migration...")
	if err := db.AutoMigrate(
		&models.Project{}, &models.Organization{},
		&models.Topic{}, &models.LegalBasis{}, &models.SciVocCode{},
		&models.ProjectOrganization{}, &models.ProjectTopic{},
		&models.ProjectLegalBasis{}, &models.ProjectSciVoc{},
		&models.Deliverable{}, &models.Publication{},
	); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Optionaler Extract-Storage
	var s3Client *s3.Client
	if cfg.S3Enabled() {
		s3Client, err = storage.NewS3Client(cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		logging.Info("Extract storage configured", zap.String("bucket", cfg.ExtractS3Bucket))
	}

	// Setup Services
	store := services.NewSnapshotStore()
	loadService := services.NewLoadService(cfg, db, s3Client, logging, store)
	chartService := services.NewChartService(logging)

	// Start-Snapshot: entweder frisch laden oder aus dem DB-Bestand aufbauen
	if cfg.RefreshOnStart {
		if _, err := loadService.Refresh(context.Background()); err != nil {
			logging.Error("Initial refresh failed, serving empty snapshot", zap.Error(err))
		}
	} else if err := loadService.LoadSnapshotFromDB(context.Background()); err != nil {
		logging.Error("Snapshot load from database failed, serving empty snapshot", zap.Error(err))
	}

	// Setup Router
	router := gin.Default()
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		snap := store.Current()
		c.JSON(http.StatusOK, gin.H{
			"status":        "healthy",
			"projects":      snap.ProjectCount(),
			"organizations": snap.OrganizationCount(),
			"loaded_at":     snap.LoadedAt(),
		})
	})

	// Setup Routes
	setupProjectRoutes(router, store, db, logging)
	setupOrganizationRoutes(router, store, db, logging)
	setupFieldRoutes(router, store)
	setupChartRoutes(router, store, chartService)
	setupNetworkRoutes(router, store, logging)
	setupRefreshRoutes(router, loadService, logging)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled dataset refresh...")
		report, err := loadService.Refresh(context.Background())
		if err != nil {
			logging.Error("Scheduled refresh failed", zap.Error(err))
		} else {
			logging.Info("Scheduled refresh completed", zap.Int("projects", report.Projects))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupProjectRoutes(router *gin.Engine, store *services.SnapshotStore, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/projects")

	// GET mit einfacher Offset-Paginierung über den Snapshot
	rg.GET("/", func(c *gin.Context) {
		snap := store.Current()
		projects := snap.Projects()

		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 1000 {
			limit = 100
		}
		if offset > len(projects) {
			offset = len(projects)
		}
		end := offset + limit
		if end > len(projects) {
			end = len(projects)
		}
		c.JSON(http.StatusOK, gin.H{
			"total":    len(projects),
			"offset":   offset,
			"projects": projects[offset:end],
		})
	})

	// Verdichtete Detailsicht eines Projekts; ID oder Akronym
	rg.GET("/:id", func(c *gin.Context) {
		snap := store.Current()
		id := c.Param("id")
		summary, ok := snap.Summary(id)
		if !ok {
			if view, found := snap.ProjectByAcronym(id); found {
				summary, ok = snap.Summary(view.ID)
			}
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusOK, summary)
	})

	// Projekt-Akronyme nach Einrichtungs-Stichwort
	rg.GET("/by-institution/:keyword", func(c *gin.Context) {
		snap := store.Current()
		keyword := c.Param("keyword")
		c.JSON(http.StatusOK, gin.H{
			"keyword":  keyword,
			"acronyms": snap.ProjectsByInstitution(keyword),
		})
	})

	// Body-gesteuerte Abfrage direkt gegen die Datenbank
	rg.POST("/query", func(c *gin.Context) {
		type ProjectQuery struct {
			Status             string   `json:"status"`
			FundingScheme      string   `json:"funding_scheme"`
			FrameworkProgramme string   `json:"framework_programme"`
			Country            string   `json:"country"`
			Field              string   `json:"field"`
			StartYear          int      `json:"start_year"`
			MinContribution    *float64 `json:"min_contribution"`
			Limit              int      `json:"limit"`
		}

		var req ProjectQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.Project{})

		if req.Status != "" {
			query = query.Where("status = ?", req.Status)
		}
		if req.FundingScheme != "" {
			query = query.Where("funding_scheme = ?", req.FundingScheme)
		}
		if req.FrameworkProgramme != "" {
			query = query.Where("framework_programme = ?", req.FrameworkProgramme)
		}
		if req.Country != "" {
			query = query.Where(
				"id IN (SELECT po.project_id FROM project_organizations po JOIN organizations o ON o.id = po.organization_id WHERE o.country = ?)",
				req.Country)
		}
		if req.Field != "" {
			// Die denormalisierten JSONB-Listen tragen die Klassifikation
			member := fmt.Sprintf("[%q]", req.Field)
			query = query.Where("(field_classes @> ?::jsonb OR fields @> ?::jsonb)", member, member)
		}
		if req.StartYear > 0 {
			query = query.Where("EXTRACT(YEAR FROM start_date) = ?", req.StartYear)
		}
		if req.MinContribution != nil {
			query = query.Where("ec_max_contribution >= ?", *req.MinContribution)
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var projects []models.Project
		if err := query.Order("id asc").Find(&projects).Error; err != nil {
			log.Error("Database query for projects failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, projects)
	})
}

func setupOrganizationRoutes(router *gin.Engine, store *services.SnapshotStore, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/organizations")

	rg.GET("/:id", func(c *gin.Context) {
		snap := store.Current()
		org, ok := snap.Organization(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
			return
		}
		c.JSON(http.StatusOK, org)
	})

	rg.POST("/query", func(c *gin.Context) {
		type OrganizationQuery struct {
			Name         string `json:"name"` // Teilstring, case-insensitive
			Country      string `json:"country"`
			ActivityType string `json:"activity_type"`
			SME          *bool  `json:"sme"`
			Limit        int    `json:"limit"`
		}

		var req OrganizationQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.Organization{})

		if req.Name != "" {
			query = query.Where("name ILIKE ?", "%"+req.Name+"%")
		}
		if req.Country != "" {
			query = query.Where("country = ?", req.Country)
		}
		if req.ActivityType != "" {
			query = query.Where("activity_type = ?", req.ActivityType)
		}
		if req.SME != nil {
			query = query.Where("sme = ?", *req.SME)
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var orgs []models.Organization
		if err := query.Order("name asc").Find(&orgs).Error; err != nil {
			log.Error("Database query for organizations failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, orgs)
	})
}

func setupFieldRoutes(router *gin.Engine, store *services.SnapshotStore) {
	rg := router.Group("/fields")

	rg.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"fields": store.Current().ScientificFields()})
	})

	// Projekt-Akronyme gruppiert nach Top-Level-Feld
	rg.GET("/projects", func(c *gin.Context) {
		c.JSON(http.StatusOK, store.Current().ProjectsByField())
	})
}

func setupChartRoutes(router *gin.Engine, store *services.SnapshotStore, charts *services.ChartService) {
	rg := router.Group("/charts")

	rg.GET("/ec-contribution-by-country", func(c *gin.Context) {
		c.JSON(http.StatusOK, charts.EcContributionByCountry(store.Current()))
	})
	rg.GET("/projects-per-country", func(c *gin.Context) {
		c.JSON(http.StatusOK, charts.ProjectsPerCountry(store.Current()))
	})
	rg.GET("/top-institutions", func(c *gin.Context) {
		topN, _ := strconv.Atoi(c.DefaultQuery("limit", "15"))
		c.JSON(http.StatusOK, charts.TopInstitutionsByFunding(store.Current(), topN))
	})
	rg.GET("/funding-over-time", func(c *gin.Context) {
		c.JSON(http.StatusOK, charts.FundingOverTimeByField(store.Current()))
	})
	rg.GET("/funding-distribution", func(c *gin.Context) {
		bins, _ := strconv.Atoi(c.DefaultQuery("bins", "20"))
		c.JSON(http.StatusOK, charts.FundingDistribution(store.Current(), bins))
	})
}

func setupNetworkRoutes(router *gin.Engine, store *services.SnapshotStore, log *zap.Logger) {
	rg := router.Group("/network")

	rg.POST("/collaboration", func(c *gin.Context) {
		var filter services.NetworkFilter
		if err := c.ShouldBindJSON(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		graphLayout, err := services.BuildCollaborationNetwork(store.Current(), filter)
		if err != nil {
			if errors.Is(err, services.ErrMinParticipants) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			log.Error("Network build failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "network build failed"})
			return
		}

		log.Info("Collaboration network built",
			zap.Int("nodes", len(graphLayout.Nodes)),
			zap.Int("edges", len(graphLayout.Edges)),
			zap.String("field", filter.Field))
		c.JSON(http.StatusOK, graphLayout)
	})
}

func setupRefreshRoutes(router *gin.Engine, loadService *services.LoadService, log *zap.Logger) {
	rg := router.Group("/refresh")

	// Refresh läuft asynchron, die Antwort kommt sofort
	rg.POST("/", func(c *gin.Context) {
		go func() {
			report, err := loadService.Refresh(context.Background())
			if err != nil {
				log.Error("Async dataset refresh failed", zap.Error(err))
				return
			}
			log.Info("Async dataset refresh completed",
				zap.Int("projects", report.Projects),
				zap.String("duration", report.Duration))
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Dataset refresh triggered."})
	})
}
