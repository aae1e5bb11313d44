package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"4280"`

	// API-Key für schreibende/teure Endpunkte; leer = Auth deaktiviert
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Verzeichnis mit den CORDIS-Extrakten (project.csv, organization.csv, ...)
	ExtractDir string `envconfig:"EXTRACT_DIR" default:"data/raw"`

	// Optionaler S3-kompatibler Storage, aus dem die Extrakte vor einem
	// Refresh gezogen werden. Ohne Bucket wird nur lokal gelesen.
	ExtractS3Bucket string `envconfig:"EXTRACT_S3_BUCKET"`
	ExtractS3Prefix string `envconfig:"EXTRACT_S3_PREFIX" default:"cordis/"`

	S3Key    string `envconfig:"S3_KEY"`
	S3Secret string `envconfig:"S3_SECRET"`
	S3URL    string `envconfig:"S3_URL"`
	S3Region string `envconfig:"S3_REGION" default:"eu-central-1"`

	// Zeitplan für den automatischen Dataset-Refresh
	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 3 * * *"`

	// Refresh beim Start erzwingen, statt den DB-Bestand zu laden
	RefreshOnStart bool `envconfig:"REFRESH_ON_START" default:"false"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// S3Enabled meldet, ob der Extract-Storage konfiguriert ist.
func (c *Config) S3Enabled() bool {
	return c.S3URL != "" && c.S3Key != "" && c.S3Secret != ""
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
