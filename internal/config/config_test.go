package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCartManagerDefaults(t *testing.T) {
	cfg, err := LoadCartManager()
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "http://localhost:3333", cfg.CatalogURL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, BackendFile, cfg.StorageBackend)
	assert.Equal(t, "@shop:cart", cfg.StorageKey)
	assert.Equal(t, 50, cfg.NotificationHistory)
	assert.False(t, cfg.SerializeMutations)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestLoadCartManagerOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("UPSTREAM_TIMEOUT", "1500ms")
	t.Setenv("STORAGE_BACKEND", " Redis ")
	t.Setenv("REDIS_ADDR", "redis://cache:6379/1")
	t.Setenv("SERIALIZE_MUTATIONS", "true")
	t.Setenv("NOTIFICATION_HISTORY", "5")

	cfg, err := LoadCartManager()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 1500*time.Millisecond, cfg.UpstreamTimeout)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisAddr)
	assert.True(t, cfg.SerializeMutations)
	assert.Equal(t, 5, cfg.NotificationHistory)
}

func TestLoadCartManagerInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown backend":     {"STORAGE_BACKEND": "sqlite"},
		"postgres without db": {"STORAGE_BACKEND": "postgres"},
		"bad duration":        {"UPSTREAM_TIMEOUT": "soon"},
		"zero timeout":        {"UPSTREAM_TIMEOUT": "0s"},
		"bad bool":            {"SERIALIZE_MUTATIONS": "maybe"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := LoadCartManager()
			require.Error(t, err)
		})
	}
}

func TestLoadCatalogServer(t *testing.T) {
	cfg, err := LoadCatalogServer()
	require.NoError(t, err)
	assert.Equal(t, ":3333", cfg.HTTPAddr)
	assert.Equal(t, BackendMemory, cfg.Backend)

	t.Setenv("CATALOG_BACKEND", "postgres")
	_, err = LoadCatalogServer()
	require.Error(t, err)

	t.Setenv("CATALOG_DB_DSN", "postgres://catalog@localhost/catalog?sslmode=disable")
	cfg, err = LoadCatalogServer()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.Backend)
}
