// Package config loads YAML configuration with environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// ScheduleConfig configures scraping and analysis intervals.
type ScheduleConfig struct {
	ScrapeInterval  string `yaml:"scrape_interval"`
	AnalyzeInterval string `yaml:"analyze_interval"`
}

// ParseScrapeInterval returns the scrape interval as time.Duration.
func (s ScheduleConfig) ParseScrapeInterval() time.Duration {
	d, err := time.ParseDuration(s.ScrapeInterval)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// ParseAnalyzeInterval returns the analysis interval as time.Duration.
func (s ScheduleConfig) ParseAnalyzeInterval() time.Duration {
	d, err := time.ParseDuration(s.AnalyzeInterval)
	if err != nil {
		return time.Hour
	}
	return d
}

// ScraperConfig configures post collection.
type ScraperConfig struct {
	NitterURL string   `yaml:"nitter_url"`
	Hashtags  []string `yaml:"hashtags"`
}

// AnalyzerConfig holds the recognized analyzer tunables.
type AnalyzerConfig struct {
	MaxFeatures     int     `yaml:"max_features"`
	NComponents     int     `yaml:"n_components"`
	ConfidenceLevel float64 `yaml:"confidence_level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./marketintel.db"},
		Server:   ServerConfig{Port: 8080},
		Schedule: ScheduleConfig{
			ScrapeInterval:  "30m",
			AnalyzeInterval: "1h",
		},
		Scraper: ScraperConfig{
			NitterURL: "https://nitter.net",
			Hashtags:  []string{"nifty50", "sensex", "intraday", "banknifty"},
		},
		Analyzer: AnalyzerConfig{
			MaxFeatures:     1000,
			NComponents:     50,
			ConfidenceLevel: 0.95,
		},
	}
}

// Load reads configuration from a YAML file, applies env var overrides and
// validates the result. Validation failure is fatal; there is no fallback
// past a bad configuration.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks analyzer tunables and required fields.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Analyzer.MaxFeatures <= 0 {
		return fmt.Errorf("analyzer.max_features must be positive, got %d", c.Analyzer.MaxFeatures)
	}
	if c.Analyzer.NComponents <= 0 {
		return fmt.Errorf("analyzer.n_components must be positive, got %d", c.Analyzer.NComponents)
	}
	if c.Analyzer.ConfidenceLevel <= 0 || c.Analyzer.ConfidenceLevel >= 1 {
		return fmt.Errorf("analyzer.confidence_level must be in (0, 1), got %g", c.Analyzer.ConfidenceLevel)
	}
	if len(c.Scraper.Hashtags) == 0 {
		return fmt.Errorf("scraper.hashtags must not be empty")
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARKETINTEL_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("NITTER_URL"); v != "" {
		cfg.Scraper.NitterURL = v
	}
}
