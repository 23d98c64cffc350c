// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAllowedOrigins are the local front-end dev servers allowed by CORS.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
	"http://localhost:5175",
}

// Config holds application configuration
type Config struct {
	Port              int
	LogLevel          string
	DevMode           bool
	ServiceName       string
	AllowedOrigins    []string
	RequestTimeout    time.Duration
	LegacyErrorStatus bool // Render export errors with HTTP 200, like the first backend did
	Firebase          FirebaseConfig
	Archive           ArchiveConfig
}

// FirebaseConfig configures access to the Realtime Database holding the activities.
type FirebaseConfig struct {
	DatabaseURL     string
	CredentialsFile string // Service account JSON; empty means unauthenticated requests
	ActivitiesPath  string
	Timeout         time.Duration
}

// ArchiveConfig configures the optional S3 copy of every exported workbook.
// Archiving is disabled when Bucket is empty.
type ArchiveConfig struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // S3-compatible endpoint (MinIO, R2, ...); empty uses AWS
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether exports should be archived.
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnvAsInt("PORT", 8000),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		ServiceName:       getEnv("SERVICE_NAME", "Reportes Backend"),
		AllowedOrigins:    getEnvAsList("CORS_ALLOWED_ORIGINS", DefaultAllowedOrigins),
		RequestTimeout:    getEnvAsDuration("REQUEST_TIMEOUT", 60*time.Second),
		LegacyErrorStatus: getEnvAsBool("LEGACY_ERROR_STATUS", false),
		Firebase: FirebaseConfig{
			DatabaseURL:     getEnv("FIREBASE_DATABASE_URL", "https://sistemasreportes-default-rtdb.firebaseio.com"),
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json"),
			ActivitiesPath:  getEnv("FIREBASE_ACTIVITIES_PATH", "activities"),
			Timeout:         getEnvAsDuration("FIREBASE_TIMEOUT", 10*time.Second),
		},
		Archive: ArchiveConfig{
			Bucket:          getEnv("EXPORT_ARCHIVE_BUCKET", ""),
			Prefix:          getEnv("EXPORT_ARCHIVE_PREFIX", "exports"),
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Endpoint:        getEnv("AWS_ENDPOINT_URL", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	dbURL, err := url.Parse(c.Firebase.DatabaseURL)
	if err != nil || dbURL.Scheme == "" || dbURL.Host == "" {
		return fmt.Errorf("invalid FIREBASE_DATABASE_URL %q", c.Firebase.DatabaseURL)
	}

	if strings.Trim(c.Firebase.ActivitiesPath, "/") == "" {
		return fmt.Errorf("FIREBASE_ACTIVITIES_PATH must not be empty")
	}

	// Static keys are all-or-nothing; otherwise the default AWS chain is used
	if (c.Archive.AccessKeyID == "") != (c.Archive.SecretAccessKey == "") {
		return fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
