package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the entire application configuration.
type Config struct {
	Columns ColumnsConfig
	GitHub  GitHubConfig
	Run     RunConfig
	Log     LogConfig
}

// ColumnsConfig holds the spreadsheet column names read from the settings file.
type ColumnsConfig struct {
	URL       string
	Directory string
	// Headers lists every column carried into the output, in order.
	// Always contains URL and Directory.
	Headers []string
}

// GitHubConfig holds GitHub API settings.
type GitHubConfig struct {
	APIURL         string
	Host           string
	TimeoutSeconds int
	PullsPerPage   int
	PullsMaxPages  int
}

// Timeout returns the HTTP timeout as a duration.
func (gc *GitHubConfig) Timeout() time.Duration {
	return time.Duration(gc.TimeoutSeconds) * time.Second
}

// RunConfig holds row processing settings.
type RunConfig struct {
	Concurrency int
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// SlogLevel converts the Level string to slog.Level.
func (lc *LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(lc.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads configuration from CHECKADDONS_* environment variables and the
// settings file they point to. A .env file in the working directory is loaded
// first when present; variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	timeoutSeconds, err := envInt("CHECKADDONS_HTTP_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKADDONS_HTTP_TIMEOUT_SECONDS: %w", err)
	}

	perPage, err := envInt("CHECKADDONS_PULLS_PER_PAGE", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKADDONS_PULLS_PER_PAGE: %w", err)
	}

	maxPages, err := envInt("CHECKADDONS_PULLS_MAX_PAGES", 50)
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKADDONS_PULLS_MAX_PAGES: %w", err)
	}

	concurrency, err := envInt("CHECKADDONS_CONCURRENCY", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKADDONS_CONCURRENCY: %w", err)
	}

	columns, err := LoadSettings(envStr("CHECKADDONS_CONFIG", "config.ini"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		Columns: *columns,
		GitHub: GitHubConfig{
			APIURL:         envStr("CHECKADDONS_GITHUB_API_URL", "https://api.github.com/"),
			Host:           envStr("CHECKADDONS_GITHUB_HOST", "github.com"),
			TimeoutSeconds: timeoutSeconds,
			PullsPerPage:   perPage,
			PullsMaxPages:  maxPages,
		},
		Run: RunConfig{
			Concurrency: concurrency,
		},
		Log: LogConfig{
			Level:  envStr("CHECKADDONS_LOG_LEVEL", "info"),
			Format: envStr("CHECKADDONS_LOG_FORMAT", "text"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.GitHub.Host == "" {
		return errors.New("CHECKADDONS_GITHUB_HOST must not be empty")
	}
	if c.GitHub.TimeoutSeconds <= 0 {
		return fmt.Errorf("invalid CHECKADDONS_HTTP_TIMEOUT_SECONDS (%d): must be positive", c.GitHub.TimeoutSeconds)
	}
	if c.GitHub.PullsPerPage <= 0 || c.GitHub.PullsPerPage > 100 {
		return fmt.Errorf("invalid CHECKADDONS_PULLS_PER_PAGE (%d): must be between 1 and 100", c.GitHub.PullsPerPage)
	}
	if c.GitHub.PullsMaxPages <= 0 {
		return fmt.Errorf("invalid CHECKADDONS_PULLS_MAX_PAGES (%d): must be positive", c.GitHub.PullsMaxPages)
	}
	if c.Run.Concurrency <= 0 {
		return fmt.Errorf("invalid CHECKADDONS_CONCURRENCY (%d): must be positive", c.Run.Concurrency)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
		// OK
	default:
		return fmt.Errorf("invalid CHECKADDONS_LOG_LEVEL (%q): must be one of debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
		// OK
	default:
		return fmt.Errorf("invalid CHECKADDONS_LOG_FORMAT (%q): must be one of json, text", c.Log.Format)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("expected integer for %s: %w", key, err)
	}
	return n, nil
}
