package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	// Server settings
	ServerPort string

	// OpenTelemetry settings
	OTLPEndpoint string
	ServiceName  string
	Environment  string

	// Document store the board reads and writes
	StoreURL     string
	StoreTimeout time.Duration

	// Optional integrations; empty disables them
	NATSURL string
	LogFile string

	// Document store server settings
	DocstorePort string
	DocstorePath string
}

// Load reads configuration from the environment, after seeding it from a
// .env file in the working directory if one exists. Variables already set
// in the environment win over the file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "kanban-board"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		StoreURL:     getEnv("STORE_URL", "http://localhost:9090"),
		StoreTimeout: getDuration("STORE_TIMEOUT", 10*time.Second),
		NATSURL:      getEnv("NATS_URL", ""),
		LogFile:      getEnv("LOG_FILE", ""),
		DocstorePort: getEnv("DOCSTORE_PORT", "9090"),
		DocstorePath: getEnv("DOCSTORE_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
