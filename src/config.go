package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tweet-sentiment/src/client"
	"tweet-sentiment/src/geocode"
	"tweet-sentiment/src/mq"
	"tweet-sentiment/src/retry"
)

// Config struct for YAML config file. Credentials never live here; they come from the environment.
type Config struct {
	TwitterUser string          `yaml:"twitter_user"`
	APIHost     string          `yaml:"api_host"`
	Output      string          `yaml:"output"`
	CountsFile  string          `yaml:"counts_file"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Retry       RetryConfig     `yaml:"retry"`
	Geocoder    GeocoderConfig  `yaml:"geocoder"`
	Log         LogConfig       `yaml:"log"`
	Filter      FilterConfig    `yaml:"filter"`
	Dedup       DedupConfig     `yaml:"dedup"`
	MQ          mq.Config       `yaml:"mq"`
	Metrics     MetricsConfig   `yaml:"metrics"`
}

type RateLimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

type RetryConfig struct {
	MaxAttempts        int `yaml:"max_attempts"`
	InitialBackoffMS   int `yaml:"initial_backoff_ms"`
	RateLimitBackoffMS int `yaml:"rate_limit_backoff_ms"`
}

type GeocoderConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
}

type LogConfig struct {
	Dir    string `yaml:"dir"`
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type FilterConfig struct {
	Enabled    bool   `yaml:"enabled"`
	FilterFile string `yaml:"filter_file"`
}

type DedupConfig struct {
	Enabled           bool    `yaml:"enabled"`
	ExpectedItems     uint    `yaml:"expected_items"`
	FalsePositiveRate float64 `yaml:"false_positive_rate"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// defaultConfig is the configuration used when no file exists; loadConfig unmarshals on top of it
func defaultConfig() *Config {
	return &Config{
		APIHost: client.DefaultHost,
		Output:  "fetched_tweets.txt",
		RateLimit: RateLimitConfig{
			Requests:      15,
			WindowSeconds: 900,
		},
		Retry: RetryConfig{
			MaxAttempts:        3,
			InitialBackoffMS:   500,
			RateLimitBackoffMS: 60000,
		},
		Geocoder: GeocoderConfig{
			BaseURL:   geocode.DefaultBaseURL,
			UserAgent: "tweet-sentiment",
		},
		Log:    LogConfig{Level: "info", Format: "text"},
		Filter: FilterConfig{Enabled: true},
		Dedup: DedupConfig{
			Enabled:           true,
			ExpectedItems:     100000,
			FalsePositiveRate: 0.001,
		},
		MQ: mq.Config{
			Host:     "localhost",
			Port:     5672,
			Username: "guest",
			Password: "guest",
			Queue:    "tweet_in",
		},
	}
}

// loadConfig loads the YAML config file into a Config struct.
// Keys missing from the file keep their defaults.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Output == "" {
		return fmt.Errorf("output must not be empty")
	}
	if c.RateLimit.Requests < 0 || c.RateLimit.WindowSeconds < 0 {
		return fmt.Errorf("rate_limit values must not be negative")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.InitialBackoffMS < 0 || c.Retry.RateLimitBackoffMS < 0 {
		return fmt.Errorf("retry backoffs must not be negative")
	}
	if c.Geocoder.UserAgent == "" {
		return fmt.Errorf("geocoder.user_agent must not be empty")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Dedup.Enabled && (c.Dedup.FalsePositiveRate <= 0 || c.Dedup.FalsePositiveRate >= 1) {
		return fmt.Errorf("dedup.false_positive_rate must be between 0 and 1, got %v", c.Dedup.FalsePositiveRate)
	}
	if c.MQ.Enabled {
		if err := c.MQ.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c RetryConfig) policy() retry.Policy {
	return retry.Policy{
		MaxAttempts:      c.MaxAttempts,
		InitialBackoff:   time.Duration(c.InitialBackoffMS) * time.Millisecond,
		RateLimitBackoff: time.Duration(c.RateLimitBackoffMS) * time.Millisecond,
	}
}

func (c RateLimitConfig) window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}
