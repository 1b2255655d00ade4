package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"realestate-insights/models"
)

// Data sources the engine can fetch listings from.
const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
	SourceCSV      = "csv"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataSource   string
	APIBaseURL   string
	CSVInputPath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	DefaultCity       string
	DefaultGroupField string

	HTTPAddr string
	LogLevel string

	FetchTimeoutMs int
	MaxConcurrency int
	MaxRetries     int

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool
}

// Load reads the .env file, if any, and returns a populated Config struct.
func Load() *Config {
	loaded := godotenv.Load() == nil

	return &Config{
		DataSource:   getEnv("DATA_SOURCE", SourceHTTP),
		APIBaseURL:   getEnv("API_BASE_URL", "http://localhost:3000/api"),
		CSVInputPath: getEnv("CSV_INPUT_PATH", "./data/listings.csv"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "realestate"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "realestate"),
		PostgresDB:       getEnv("POSTGRES_DB", "realestate"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		DefaultCity:       getEnv("DEFAULT_CITY", models.CityKrakow),
		DefaultGroupField: getEnv("DEFAULT_GROUP_FIELD", "buildingType"),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		FetchTimeoutMs: getEnvInt("FETCH_TIMEOUT_MS", 30000),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		EnvFileLoaded: loaded,
	}
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	switch c.DataSource {
	case SourceHTTP, SourcePostgres, SourceCSV:
	default:
		return fmt.Errorf("%w: DATA_SOURCE %q", ErrInvalidConfig, c.DataSource)
	}
	if !models.IsAllowedCity(c.DefaultCity) {
		return fmt.Errorf("%w: DEFAULT_CITY %q: %w", ErrInvalidConfig, c.DefaultCity, models.ErrUnknownCity)
	}
	if !models.IsAllowedGroupField(c.DefaultGroupField) {
		return fmt.Errorf("%w: DEFAULT_GROUP_FIELD %q: %w", ErrInvalidConfig, c.DefaultGroupField, models.ErrUnsupportedGroupField)
	}
	if c.FetchTimeoutMs <= 0 {
		return fmt.Errorf("%w: FETCH_TIMEOUT_MS must be positive", ErrInvalidConfig)
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("%w: MAX_CONCURRENCY must be positive", ErrInvalidConfig)
	}
	return nil
}

// FetchTimeout is FetchTimeoutMs as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMs) * time.Millisecond
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

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
