package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Session SessionConfig
	Content ContentConfig
	Events  EventsConfig
	Tracing TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	TranscriptLogPath  string
	CorsAllowedOrigins string
	StaticDir          string
}

// SessionConfig selects where conversation contexts are persisted.
// Backend is one of file, sqlite, redis, postgres or memory.
type SessionConfig struct {
	Backend         string
	FilePath        string
	SQLitePath      string
	RedisURL        string
	RedisKey        string
	DatabaseConnStr string
}

type ContentConfig struct {
	Path          string // empty uses the embedded catalog
	KnowledgePath string // empty uses the catalog's knowledge list
}

type EventsConfig struct {
	NatsURL string // empty disables the NATS bridge
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			TranscriptLogPath:  getEnv("TRANSCRIPT_LOG_PATH", "logs/transcript.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			StaticDir:          getEnv("STATIC_DIR", "./frontend"),
		},
		Session: SessionConfig{
			Backend:         strings.ToLower(getEnv("SESSION_BACKEND", BackendFile)),
			FilePath:        getEnv("SESSION_FILE_PATH", "chat_memory.json"),
			SQLitePath:      getEnv("SQLITE_PATH", "data/sessions.db"),
			RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
			RedisKey:        getEnv("REDIS_SESSION_KEY", "heystack:sessions"),
			DatabaseConnStr: getEnv("DB_CONNECTION_STRING", ""),
		},
		Content: ContentConfig{
			Path:          getEnv("CONTENT_PATH", ""),
			KnowledgePath: getEnv("KNOWLEDGE_PATH", ""),
		},
		Events: EventsConfig{
			NatsURL: getEnv("NATS_URL", ""),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
