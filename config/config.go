package config

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataSource   string `envconfig:"DATA_SOURCE" default:"csv" validate:"oneof=csv postgres"`
	CSVPath      string `envconfig:"CSV_PATH" default:"./data/listings.csv" validate:"required_if=DataSource csv"`
	CSVDelimiter string `envconfig:"CSV_DELIMITER" default:"," validate:"len=1"`

	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"scraper"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"scraper123"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"rental_db"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	PostgresTable    string `envconfig:"POSTGRES_TABLE" default:"listings" validate:"required"`

	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8501" validate:"required"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	DashboardTitle  string        `envconfig:"DASHBOARD_TITLE" default:"Vancouver Airbnb Data Dashboard"`

	CheapestLimit        int     `envconfig:"CHEAPEST_LIMIT" default:"10" validate:"min=1,max=100"`
	HistogramBins        int     `envconfig:"HISTOGRAM_BINS" default:"30" validate:"min=1,max=200"`
	MarkerPriceThreshold float64 `envconfig:"MARKER_PRICE_THRESHOLD" default:"100" validate:"gte=0"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn warning error"`

	ChromeBin           string `envconfig:"CHROME_BIN"`
	SnapshotPresets     string `envconfig:"SNAPSHOT_PRESETS" default:"./presets.yaml"`
	SnapshotDir         string `envconfig:"SNAPSHOT_DIR" default:"./output/snapshots"`
	SnapshotConcurrency int    `envconfig:"SNAPSHOT_CONCURRENCY" default:"2" validate:"min=1,max=16"`
	RateLimitMs         int    `envconfig:"RATE_LIMIT_MS" default:"500" validate:"gte=0"`
	MaxRetries          int    `envconfig:"MAX_RETRIES" default:"3" validate:"min=1"`
}

// Load reads the .env file, decodes the environment and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv decodes and validates the current environment without touching .env.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: decode env: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return &cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Delimiter returns the CSV field separator as a rune.
func (c *Config) Delimiter() rune {
	return []rune(c.CSVDelimiter)[0]
}
