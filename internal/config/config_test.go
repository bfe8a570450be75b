package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boothscan/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:8000/extract", cfg.Extractor.Endpoint)
	assert.Equal(t, "adaptive", cfg.Extractor.Strategy)
	assert.True(t, cfg.Extractor.HighRes)
	assert.Equal(t, int64(10485760), cfg.Intake.MaxFileSizeBytes)
	assert.Equal(t, "application/pdf", cfg.Intake.AcceptedType)
	assert.True(t, cfg.Intake.SniffContent)
	assert.Equal(t, 100, cfg.Session.MaxSessions)
	assert.Equal(t, 30*time.Minute, cfg.Session.MaxAge)
	assert.False(t, cfg.S3.ArchiveEnabled)
	assert.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:5173")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BOOTHSCAN_EXTRACTOR_ENDPOINT", "https://extract.example/extract")
	t.Setenv("BOOTHSCAN_INTAKE_MAX_FILE_SIZE_BYTES", "2048")
	t.Setenv("BOOTHSCAN_PIPELINE_RESET_AFTER_SECS", "5")
	t.Setenv("BOOTHSCAN_CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://extract.example/extract", cfg.Extractor.Endpoint)
	assert.Equal(t, int64(2048), cfg.Intake.MaxFileSizeBytes)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.ResetAfter())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("BOOTHSCAN_SERVER_PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Port)
}

func TestPipelineConfig_Durations(t *testing.T) {
	p := config.PipelineConfig{TimeoutSecs: 90, ResetAfterSecs: 0}

	assert.Equal(t, 90*time.Second, p.Timeout())
	assert.Equal(t, time.Duration(0), p.ResetAfter())
}
