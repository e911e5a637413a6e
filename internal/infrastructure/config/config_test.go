package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Iris", cfg.App.Name)
	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, "https://ianthea-luki120.koyeb.app/v1/auth/", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, 60, cfg.Timer.StudyMinutes)
	assert.Equal(t, 20, cfg.Timer.BreakMinutes)
	assert.Equal(t, 8080, cfg.DevServer.Port)
	assert.NotEmpty(t, cfg.Data.Dir)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("IRIS_API_BASE_URL", "http://localhost:8080/v1/auth/")
	t.Setenv("IRIS_STUDY_MINUTES", "25")
	t.Setenv("IRIS_DATA_DIR", "/tmp/iris-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/v1/auth/", cfg.API.BaseURL)
	assert.Equal(t, 25, cfg.Timer.StudyMinutes)
	assert.Equal(t, "/tmp/iris-test", cfg.Data.Dir)
}

func TestLoadRejectsBadTimerIntervals(t *testing.T) {
	t.Setenv("IRIS_STUDY_MINUTES", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("IRIS_DEVSERVER_PORT", "99999")

	_, err := Load()
	assert.Error(t, err)
}

func TestDataPaths(t *testing.T) {
	data := DataConfig{Dir: "/data/iris"}

	assert.Equal(t, filepath.Join("/data/iris", "token"), data.TokenPath())
	assert.Equal(t, filepath.Join("/data/iris", "users", "user-1"), data.UserDir("user-1"))
}
