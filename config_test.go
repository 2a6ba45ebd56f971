package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	config, err := LoadDefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultIncomeRange(), config.GetRange())
	assert.Equal(t, "reports", config.GetOutputDir())
	assert.True(t, config.ShouldOpenBrowser())
	assert.Equal(t, "localhost:0", config.GetServerAddr())
	assert.Equal(t, "info", config.GetLogLevel())
	assert.Contains(t, config.GetAllowedOrigins(), "http://localhost:8080")
	assert.NoError(t, config.Validate())
}

func TestConfig_NilGettersUseDefaults(t *testing.T) {
	var config *Config

	assert.Equal(t, DefaultIncomeRange(), config.GetRange())
	assert.Equal(t, "reports", config.GetOutputDir())
	assert.True(t, config.ShouldOpenBrowser())
	assert.Equal(t, "localhost:0", config.GetServerAddr())
	assert.Equal(t, "info", config.GetLogLevel())
	assert.NotEmpty(t, config.GetAllowedOrigins())
}

func TestConfig_GetRangeFillsMissingFields(t *testing.T) {
	config := &Config{Range: IncomeRange{End: 200000}}

	assert.Equal(t, IncomeRange{Start: 5000, End: 200000, Step: 5000}, config.GetRange())
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `range:
  start: 10000
  end: 60000
  step: 2500
output:
  dir: out
  open_browser: false
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, IncomeRange{Start: 10000, End: 60000, Step: 2500}, config.GetRange())
	assert.Equal(t, "out", config.GetOutputDir())
	assert.False(t, config.ShouldOpenBrowser())
	assert.Equal(t, "debug", config.GetLogLevel())
	assert.Equal(t, "localhost:0", config.GetServerAddr())
}

func TestLoadConfig_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("range: [not, a, map"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigOrDefault_MissingFile(t *testing.T) {
	config, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultIncomeRange(), config.GetRange())
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	openBrowser := false
	original := &Config{
		Range:    IncomeRange{Start: 20000, End: 80000, Step: 1000},
		Output:   OutputConfig{Dir: "custom", OpenBrowser: &openBrowser},
		Server:   ServerConfig{Addr: ":8080"},
		LogLevel: "warn",
	}

	require.NoError(t, SaveConfig(original, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Tax Rate Explorer Configuration")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, original.GetRange(), loaded.GetRange())
	assert.Equal(t, "custom", loaded.GetOutputDir())
	assert.False(t, loaded.ShouldOpenBrowser())
	assert.Equal(t, ":8080", loaded.GetServerAddr())
	assert.Equal(t, "warn", loaded.GetLogLevel())
}

func TestConfig_Validate(t *testing.T) {
	bad := &Config{Range: IncomeRange{Start: 100000, End: 50000, Step: 5000}}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidRange)

	badLevel := &Config{LogLevel: "verbose"}
	assert.Error(t, badLevel.Validate())
}

func TestConfigureLogging(t *testing.T) {
	assert.NoError(t, configureLogging("debug"))
	assert.Error(t, configureLogging("verbose"))
	require.NoError(t, configureLogging("info"))
}
