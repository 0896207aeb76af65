package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchview.yaml")
	content := `
dashboard: ws://bench-agg:12000
capture: session.blog
log_level: debug
retry:
  delay: 250ms
  backoff: 2.5
  max: 10s
stations:
  - host: bench-a
    port: 9000
  - host: bench-b
    port: 9001
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://bench-agg:12000", cfg.Dashboard)
	assert.Equal(t, "session.blog", cfg.Capture)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, Duration(250*time.Millisecond), cfg.Retry.Delay)
	assert.Equal(t, 2.5, cfg.Retry.Backoff)
	assert.Equal(t, Duration(10*time.Second), cfg.Retry.Max)
	require.Len(t, cfg.Stations, 2)
	assert.Equal(t, "bench-a", cfg.Stations[0].Host)
	assert.Equal(t, 9000, cfg.Stations[0].Port)
}

func TestLoadFileConfigMissingFile(t *testing.T) {
	_, err := LoadFileConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFileConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dashboard: [unclosed"), 0o644))

	_, err := LoadFileConfig(path)
	assert.Error(t, err)
}
