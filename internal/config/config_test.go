package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
	assert.Equal(t, "export_tasks.csv", cfg.Export.File)
	assert.True(t, cfg.UI.AltScreen)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
api:
  base_url: https://tasks.example.com/api/
  timeout: 5s
logging:
  development: true
export:
  file: out.csv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("TASKBOARD_EXPORT_FILE", "from-env.csv")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://tasks.example.com/api", cfg.API.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, "from-env.csv", cfg.Export.File, "environment wins over file")
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestDump(t *testing.T) {
	cfg := Default()
	cfg.API.Timeout = 3 * time.Second

	var buf bytes.Buffer
	require.NoError(t, cfg.Dump(&buf))

	var raw map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "http://localhost:8000/api", raw["api"]["base_url"])
	assert.Equal(t, "3s", raw["api"]["timeout"])
}
