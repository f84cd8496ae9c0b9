package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "sqlite", cfg.StorageBackend)
	assert.Equal(t, "qnachat.db", cfg.DatabaseURL)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "", cfg.QnAPath)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "file")
	t.Setenv("DATA_DIR", "/tmp/qnachat")
	t.Setenv("QNA_PATH", "/etc/qnachat/table.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "file", cfg.StorageBackend)
	assert.Equal(t, "/tmp/qnachat", cfg.DataDir)
	assert.Equal(t, "/etc/qnachat/table.json", cfg.QnAPath)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORAGE_BACKEND", "redis")

	_, err := Load()
	assert.Error(t, err)
}
