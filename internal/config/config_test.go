package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.parallel.ai", cfg.Parallel.BaseURL)
	assert.Equal(t, 100, cfg.Parallel.TaskTimeoutSecs)
	assert.Equal(t, 3, cfg.Parallel.MaxRetries)
	assert.Equal(t, 5, cfg.Match.MaxResults)
	assert.Equal(t, "search_first", cfg.Match.Strategy)
	assert.Equal(t, 3, cfg.Match.SearchOverfetch)
	assert.Equal(t, 2, cfg.Match.SufficientDivisor)
	assert.Equal(t, 1500, cfg.Match.MaxCharsPerResult)
	assert.Equal(t, "base", cfg.Match.SearchProcessor)
	assert.Equal(t, "base", cfg.Match.TaskProcessor)
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)

	yaml := `
parallel:
  key: pk-test
  task_timeout_secs: 60
match:
  max_results: 10
  strategy: task_first
log:
  level: debug
  format: console
server:
  port: 9090
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pk-test", cfg.Parallel.Key)
	assert.Equal(t, 60, cfg.Parallel.TaskTimeoutSecs)
	assert.Equal(t, 10, cfg.Match.MaxResults)
	assert.Equal(t, "task_first", cfg.Match.Strategy)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.Match.SearchOverfetch)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chtemp(t)

	yaml := `
match:
  strategy: task_first
log:
  level: debug
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ITEMMATCH_MATCH_STRATEGY", "search_only")
	t.Setenv("ITEMMATCH_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "search_only", cfg.Match.Strategy)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chtemp(t)

	t.Setenv("ITEMMATCH_SERVER_PORT", "3000")
	t.Setenv("ITEMMATCH_PARALLEL_KEY", "pk-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "pk-env", cfg.Parallel.Key)
}

func validDefaults() *Config {
	cfg := &Config{}
	cfg.Parallel.Key = "pk-test"
	cfg.Match.MaxResults = 5
	cfg.Match.SearchOverfetch = 3
	cfg.Match.SufficientDivisor = 2
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateMatch_AllPresent(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("match"))
}

func TestValidateMatch_MissingKey(t *testing.T) {
	cfg := validDefaults()
	cfg.Parallel.Key = ""

	err := cfg.Validate("match")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parallel.key is required")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateMatchBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Match.MaxResults = 0
	err := cfg.Validate("match")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_results must be between 1 and 50")

	cfg.Match.MaxResults = 51
	err = cfg.Validate("match")
	assert.Error(t, err)

	cfg.Match.MaxResults = 50
	assert.NoError(t, cfg.Validate("match"))

	cfg.Match.SufficientDivisor = 0
	err = cfg.Validate("match")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sufficient_divisor must be >= 1")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
