package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "MEDirect Edge", cfg.AppName)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.SeedDemoData)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SEED_DEMO_DATA", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.False(t, cfg.SeedDemoData)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app_name: Test Edge\napi_prefix: api/v2/\nhttp_port: 8081\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Test Edge", cfg.AppName)
	assert.Equal(t, "/api/v2", cfg.APIPrefix)
	assert.Equal(t, 8081, cfg.HTTPPort)
}

func TestLoad_MissingFileFallsBackToEnv(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.HTTPPort)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{StoreBackend: "memory", HTTPPort: 8000}, false},
		{"postgres without url", Config{StoreBackend: "postgres", HTTPPort: 8000}, true},
		{"postgres with url", Config{StoreBackend: "postgres", DatabaseURL: "postgres://x", HTTPPort: 8000}, false},
		{"redis without url", Config{StoreBackend: "redis", HTTPPort: 8000}, true},
		{"unknown backend", Config{StoreBackend: "mongo", HTTPPort: 8000}, true},
		{"bad port", Config{StoreBackend: "memory", HTTPPort: 70000}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
