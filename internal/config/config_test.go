package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME", "ENVIRONMENT",
		"STORE_URL", "STORE_TIMEOUT", "NATS_URL", "LOG_FILE", "DOCSTORE_PORT", "DOCSTORE_PATH",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, "kanban-board", cfg.ServiceName)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "http://localhost:9090", cfg.StoreURL)
	assert.Equal(t, 10*time.Second, cfg.StoreTimeout)
	assert.Empty(t, cfg.NATSURL)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, "9090", cfg.DocstorePort)
	assert.Empty(t, cfg.DocstorePath)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_URL", "http://store:9000")
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("NATS_URL", "nats://localhost:4222")

	cfg := Load()

	assert.Equal(t, "http://store:9000", cfg.StoreURL)
	assert.Equal(t, 250*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
}

func TestGetDurationRejectsInvalid(t *testing.T) {
	t.Setenv("STORE_TIMEOUT", "soon")
	assert.Equal(t, time.Second, getDuration("STORE_TIMEOUT", time.Second))

	t.Setenv("STORE_TIMEOUT", "-5s")
	assert.Equal(t, time.Second, getDuration("STORE_TIMEOUT", time.Second))
}
