package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds settings for the Redis storage backend.
type RedisConfig struct {
	URL    string
	Prefix string
}

// BadgerConfig holds settings for the embedded Badger storage backend.
type BadgerConfig struct {
	Path     string
	InMemory bool
}

// StorageConfig selects where the document collection blob is kept.
// Backend is one of: memory, badger, redis, minio, postgres.
type StorageConfig struct {
	Backend  string
	Key      string
	CacheTTL time.Duration
}

// OpenAIConfig configures the completion gateway.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

// SessionConfig configures editor session expiry.
type SessionConfig struct {
	TTL time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string
	Environment string
	LogFilePath string
	Database    DatabaseConfig
	MinIO       MinIOConfig
	Redis       RedisConfig
	Badger      BadgerConfig
	Storage     StorageConfig
	OpenAI      OpenAIConfig
	Session     SessionConfig
}

// IsProduction reports whether the app runs with production defaults.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		LogFilePath: getEnv("LOG_FILE_PATH", ""),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			URL:    getEnv("REDIS_URL", "redis://localhost:6379"),
			Prefix: getEnv("REDIS_PREFIX", "docsai:"),
		},
		Badger: BadgerConfig{
			Path:     getEnv("BADGER_PATH", "data/badger"),
			InMemory: getEnvBool("BADGER_IN_MEMORY", false),
		},
		Storage: StorageConfig{
			Backend:  getEnv("STORAGE_BACKEND", "memory"),
			Key:      getEnv("STORAGE_KEY", "ai-text-editor-documents"),
			CacheTTL: getEnvDuration("STORAGE_CACHE_TTL", 0),
		},
		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Temperature: getEnvFloat32("OPENAI_TEMPERATURE", 0.7),
			MaxTokens:   getEnvInt("OPENAI_MAX_TOKENS", 1000),
		},
		Session: SessionConfig{
			TTL: getEnvDuration("SESSION_TTL", 2*time.Hour),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat32(key string, def float32) float32 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err == nil {
			return float32(f)
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
