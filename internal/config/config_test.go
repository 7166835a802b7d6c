package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Data.File)
	assert.False(t, cfg.Data.Watch)
	assert.Equal(t, FormatTable, cfg.Output.Format)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsql.yaml")
	content := "data:\n  file: rooms.yaml\n  watch: true\noutput:\n  format: CSV\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rooms.yaml", cfg.Data.File)
	assert.True(t, cfg.Data.Watch)
	assert.Equal(t, FormatCSV, cfg.Output.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsql.toml")
	require.NoError(t, os.WriteFile(path, []byte("[output]\nformat = \"csv\"\n"), 0o644))
	t.Setenv("DOCSQL_OUTPUT_FORMAT", "json")
	t.Setenv("DOCSQL_DATA_FILE", "/tmp/doc.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, "/tmp/doc.yaml", cfg.Data.File)
}

func TestMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read")
}

func TestValidateRejectsUnknownFormat(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("output.format", "xml")

	_, err := LoadWithViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `got "xml"`)
}
