package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Providers lists the supported data_source.provider values.
var Providers = []string{"yahoo", "sheets", "mock"}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr         string   `yaml:"addr"`
		Production   bool     `yaml:"production"`
		CORSOrigins  []string `yaml:"cors_origins"`
		ReadTimeout  int      `yaml:"read_timeout_seconds"`
		WriteTimeout int      `yaml:"write_timeout_seconds"`
	} `yaml:"server"`
	DataSource struct {
		Provider          string  `yaml:"provider"`
		BaseURL           string  `yaml:"base_url"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		Concurrency       int     `yaml:"concurrency"`
	} `yaml:"data_source"`
	Export struct {
		DataDir        string `yaml:"data_dir"`
		MaxChartPoints int    `yaml:"max_chart_points"`
		PreviewRows    *int   `yaml:"preview_rows"`
	} `yaml:"export"`
	Housekeeping struct {
		CleanupCron   string `yaml:"cleanup_cron"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"housekeeping"`
	Database struct {
		SQLitePath *string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// PreviewRows returns the configured preview length.
func (c *Config) PreviewRows() int {
	if c.Export.PreviewRows == nil {
		return 5
	}
	return *c.Export.PreviewRows
}

// SQLitePath returns the history database path; empty disables history.
func (c *Config) SQLitePath() string {
	if c.Database.SQLitePath == nil {
		return "data/history.db"
	}
	return *c.Database.SQLitePath
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if os.Getenv("ENVIRONMENT") == "production" || os.Getenv("FLASK_ENV") == "production" {
		cfg.Server.Production = true
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("SHEETS_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Export.DataDir = v
	}
	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("RETENTION_DAYS: %w", err)
		}
		cfg.Housekeeping.RetentionDays = n
	}
	if v, ok := os.LookupEnv("SQLITE_PATH"); ok {
		cfg.Database.SQLitePath = &v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5002"
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30
	}
	if cfg.Server.WriteTimeout == 0 {
		// a download request fetches every instrument before responding
		cfg.Server.WriteTimeout = 300
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	cfg.DataSource.Provider = strings.ToLower(cfg.DataSource.Provider)
	if cfg.DataSource.RequestsPerSecond == 0 {
		cfg.DataSource.RequestsPerSecond = 2
	}
	if cfg.DataSource.TimeoutSeconds == 0 {
		cfg.DataSource.TimeoutSeconds = 30
	}
	if cfg.DataSource.Concurrency == 0 {
		cfg.DataSource.Concurrency = 1
	}
	if cfg.Export.DataDir == "" {
		cfg.Export.DataDir = "data"
	}
	if cfg.Export.MaxChartPoints == 0 {
		cfg.Export.MaxChartPoints = 1000
	}
	if cfg.Housekeeping.CleanupCron == "" {
		cfg.Housekeeping.CleanupCron = "0 0 3 * * *"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	known := false
	for _, p := range Providers {
		if c.DataSource.Provider == p {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("data_source.provider must be one of %s", strings.Join(Providers, ", "))
	}
	if c.DataSource.Provider == "sheets" && c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required for the sheets provider")
	}
	if c.DataSource.RequestsPerSecond <= 0 {
		return fmt.Errorf("data_source.requests_per_second must be positive")
	}
	if c.DataSource.Concurrency < 1 {
		return fmt.Errorf("data_source.concurrency must be at least 1")
	}
	if c.Export.MaxChartPoints <= 0 {
		return fmt.Errorf("export.max_chart_points must be positive")
	}
	if c.PreviewRows() < 0 {
		return fmt.Errorf("export.preview_rows must not be negative")
	}
	if c.Housekeeping.RetentionDays < 0 {
		return fmt.Errorf("housekeeping.retention_days must not be negative")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json")
	}
	return nil
}
