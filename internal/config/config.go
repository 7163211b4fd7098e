// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	HIBPAPIKey      string
	BaseURL         string
	PasswordsURL    string
	UserAgent       string
	RequestTimeout  time.Duration
	AuthDelay       time.Duration
	CheckDelay      time.Duration
	CheckTimeout    time.Duration
	ListenAddr      string
	DBPath          string
	ReportsDir      string
	ReportRetention int
	VaultCommand    string
}

// HasAPIKey returns true when an API key is configured. Password range
// checks work without one; the account endpoints do not.
func (c *Config) HasAPIKey() bool {
	return c.HIBPAPIKey != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. The API key (BREACHWATCH_HIBP_API_KEY) is optional; without it the
// app starts with account checks disabled. Optional variables with defaults:
// BREACHWATCH_REQUEST_TIMEOUT (10s), BREACHWATCH_AUTH_DELAY (1.5s),
// BREACHWATCH_CHECK_DELAY (100ms), BREACHWATCH_CHECK_TIMEOUT (10m),
// BREACHWATCH_LISTEN_ADDR (127.0.0.1:8080), BREACHWATCH_DB_PATH
// (breachwatch.db), BREACHWATCH_REPORTS_DIR (~/.local/share/breachwatch/reports),
// BREACHWATCH_REPORT_RETENTION (10), BREACHWATCH_VAULT_COMMAND (bw).
func Load() (*Config, error) {
	cfg := &Config{
		HIBPAPIKey:      os.Getenv("BREACHWATCH_HIBP_API_KEY"),
		RequestTimeout:  10 * time.Second,
		AuthDelay:       1500 * time.Millisecond,
		CheckDelay:      100 * time.Millisecond,
		CheckTimeout:    10 * time.Minute,
		ListenAddr:      "127.0.0.1:8080",
		DBPath:          "breachwatch.db",
		ReportRetention: 10,
		VaultCommand:    "bw",
	}

	cfg.BaseURL = os.Getenv("BREACHWATCH_API_URL")
	cfg.PasswordsURL = os.Getenv("BREACHWATCH_PASSWORDS_URL")
	cfg.UserAgent = os.Getenv("BREACHWATCH_USER_AGENT")

	for _, d := range []struct {
		name string
		dst  *time.Duration
	}{
		{"BREACHWATCH_REQUEST_TIMEOUT", &cfg.RequestTimeout},
		{"BREACHWATCH_AUTH_DELAY", &cfg.AuthDelay},
		{"BREACHWATCH_CHECK_DELAY", &cfg.CheckDelay},
		{"BREACHWATCH_CHECK_TIMEOUT", &cfg.CheckTimeout},
	} {
		if v, ok := os.LookupEnv(d.name); ok {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("%s has invalid duration %q: %w", d.name, v, err)
			}
			*d.dst = parsed
		}
	}

	if v, ok := os.LookupEnv("BREACHWATCH_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("BREACHWATCH_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("BREACHWATCH_VAULT_COMMAND"); ok {
		cfg.VaultCommand = v
	}

	if v, ok := os.LookupEnv("BREACHWATCH_REPORT_RETENTION"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("BREACHWATCH_REPORT_RETENTION has invalid count %q", v)
		}
		cfg.ReportRetention = n
	}

	if v, ok := os.LookupEnv("BREACHWATCH_REPORTS_DIR"); ok {
		cfg.ReportsDir = v
	} else {
		dir, err := defaultReportsDir()
		if err != nil {
			return nil, err
		}
		cfg.ReportsDir = dir
	}

	return cfg, nil
}

// defaultReportsDir follows the XDG data directory convention.
func defaultReportsDir() (string, error) {
	if v, ok := os.LookupEnv("XDG_DATA_HOME"); ok && v != "" {
		return filepath.Join(v, "breachwatch", "reports"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "breachwatch", "reports"), nil
}
