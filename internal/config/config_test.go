package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every BREACHWATCH_ env var that Load() reads.
var allConfigKeys = []string{
	"BREACHWATCH_HIBP_API_KEY",
	"BREACHWATCH_API_URL",
	"BREACHWATCH_PASSWORDS_URL",
	"BREACHWATCH_USER_AGENT",
	"BREACHWATCH_REQUEST_TIMEOUT",
	"BREACHWATCH_AUTH_DELAY",
	"BREACHWATCH_CHECK_DELAY",
	"BREACHWATCH_CHECK_TIMEOUT",
	"BREACHWATCH_LISTEN_ADDR",
	"BREACHWATCH_DB_PATH",
	"BREACHWATCH_REPORTS_DIR",
	"BREACHWATCH_REPORT_RETENTION",
	"BREACHWATCH_VAULT_COMMAND",
}

// isolateConfigEnv saves and unsets all BREACHWATCH_ env vars so tests don't
// inherit values from the host environment. t.Cleanup restores original
// values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("BREACHWATCH_HIBP_API_KEY", "hibp-test-key")
	t.Setenv("BREACHWATCH_REQUEST_TIMEOUT", "30s")
	t.Setenv("BREACHWATCH_AUTH_DELAY", "2s")
	t.Setenv("BREACHWATCH_CHECK_TIMEOUT", "5m")
	t.Setenv("BREACHWATCH_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("BREACHWATCH_DB_PATH", "/tmp/test.db")
	t.Setenv("BREACHWATCH_REPORTS_DIR", "/tmp/reports")
	t.Setenv("BREACHWATCH_REPORT_RETENTION", "25")
	t.Setenv("BREACHWATCH_VAULT_COMMAND", "/usr/local/bin/bw")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "hibp-test-key", cfg.HIBPAPIKey)
	assert.True(t, cfg.HasAPIKey())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.AuthDelay)
	assert.Equal(t, 5*time.Minute, cfg.CheckTimeout)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "/tmp/reports", cfg.ReportsDir)
	assert.Equal(t, 25, cfg.ReportRetention)
	assert.Equal(t, "/usr/local/bin/bw", cfg.VaultCommand)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.AuthDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.CheckDelay)
	assert.Equal(t, 10*time.Minute, cfg.CheckTimeout)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "breachwatch.db", cfg.DBPath)
	assert.Equal(t, 10, cfg.ReportRetention)
	assert.Equal(t, "bw", cfg.VaultCommand)
	assert.NotEmpty(t, cfg.ReportsDir)
}

// TestLoad_MissingAPIKey verifies that a missing API key is not an error;
// password range checks work unauthenticated.
func TestLoad_MissingAPIKey(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "", cfg.HIBPAPIKey)
	assert.False(t, cfg.HasAPIKey())
}

func TestLoad_InvalidDuration(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("BREACHWATCH_CHECK_DELAY", "not-a-duration")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BREACHWATCH_CHECK_DELAY")
}

func TestLoad_InvalidRetention(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("BREACHWATCH_REPORT_RETENTION", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BREACHWATCH_REPORT_RETENTION")
}

func TestLoad_ReportsDirFromXDG(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/breachwatch/reports", cfg.ReportsDir)
}
