package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Analysis providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the full runtime configuration, loaded once at startup.
type Config struct {
	// Server
	Host        string
	Port        string
	Environment string

	// Database
	DBDriver    string
	SQLitePath  string
	PostgresDSN string

	// Analysis
	AnalysisProvider string
	AnalysisModel    string
	APIKeys          APIKeys

	// Workers
	WorkerCount   int
	QueueCapacity int

	// Object storage
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// HTTP timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load reads the .env file if present, then builds and validates the full
// configuration. Missing required settings fail here, not at first use.
func Load() (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, err
	}

	apiKeys, err := GetAPIKeys()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Host:        getEnvOrDefault("HOST", "0.0.0.0"),
		Port:        getEnvOrDefault("PORT", "8080"),
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		DBDriver:    getEnvOrDefault("DB_DRIVER", DriverSQLite),
		SQLitePath:  getEnvOrDefault("SQLITE_PATH", "coachlens.db"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		AnalysisProvider: getEnvOrDefault("ANALYSIS_PROVIDER", ProviderOpenAI),
		AnalysisModel:    os.Getenv("ANALYSIS_MODEL"),
		APIKeys:          *apiKeys,

		WorkerCount:   getEnvIntOrDefault("WORKER_COUNT", 2),
		QueueCapacity: getEnvIntOrDefault("QUEUE_CAPACITY", 64),

		MinioEndpoint:  getEnvOrDefault("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnvOrDefault("MINIO_BUCKET", "coachlens-recordings"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",

		ReadTimeout:  getEnvDurationOrDefault("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDurationOrDefault("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:  getEnvDurationOrDefault("IDLE_TIMEOUT", 60*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on settings the process cannot run without.
func (c *Config) Validate() error {
	if err := ValidatePort(c.Port, "HTTP"); err != nil {
		return err
	}
	if err := ValidateConcurrency(c.WorkerCount, "worker"); err != nil {
		return err
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required with DB_DRIVER=sqlite")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required with DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (want %s or %s)", c.DBDriver, DriverSQLite, DriverPostgres)
	}

	switch c.AnalysisProvider {
	case ProviderOpenAI:
		if err := ValidateAPIKey(c.APIKeys.OpenAI, "OpenAI"); err != nil {
			return err
		}
	case ProviderGemini:
		if err := ValidateAPIKey(c.APIKeys.Gemini, "Gemini"); err != nil {
			return err
		}
		// Transcription still runs on whisper regardless of analysis provider.
		if err := ValidateAPIKey(c.APIKeys.OpenAI, "OpenAI"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown ANALYSIS_PROVIDER %q (want %s or %s)", c.AnalysisProvider, ProviderOpenAI, ProviderGemini)
	}

	if c.MinioEndpoint == "" || c.MinioBucket == "" {
		return fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET are required")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDurationOrDefault(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
