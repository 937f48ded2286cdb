package main

import (
	"os"
	"strings"
	"testing"
	"time"
)

// TestLoadConfigValid tests loading a valid configuration file.
//
// Rationale: This is the happy path test that ensures every section of the
// configuration is read from a well-formed file.
func TestLoadConfigValid(t *testing.T) {
	validConfig := `
twitter_user: JoeBiden
api_host: http://localhost:8080
output: user_tweets.json
counts_file: counts.gob
rate_limit:
  requests: 900
  window_seconds: 900
retry:
  max_attempts: 5
  initial_backoff_ms: 100
  rate_limit_backoff_ms: 1000
log:
  dir: ../logs
  level: debug
  format: json
dedup:
  enabled: true
  expected_items: 5000
  false_positive_rate: 0.01
mq:
  enabled: true
  host: rabbit
  port: 5673
  queue: tweet_in
metrics:
  listen: ":9090"
`

	tmpFile := createTempConfigFile(t, validConfig)
	defer os.Remove(tmpFile.Name())

	cfg, err := loadConfig(tmpFile.Name())
	if err != nil {
		t.Fatalf("Expected no error loading valid config, got: %v", err)
	}

	if cfg.TwitterUser != "JoeBiden" {
		t.Errorf("Expected TwitterUser to be 'JoeBiden', got '%s'", cfg.TwitterUser)
	}
	if cfg.Output != "user_tweets.json" {
		t.Errorf("Expected Output to be 'user_tweets.json', got '%s'", cfg.Output)
	}
	if cfg.RateLimit.Requests != 900 || cfg.RateLimit.window() != 15*time.Minute {
		t.Errorf("Unexpected rate limit %+v", cfg.RateLimit)
	}
	if cfg.Log.Dir != "../logs" || cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log config %+v", cfg.Log)
	}
	if cfg.MQ.Host != "rabbit" || cfg.MQ.Port != 5673 {
		t.Errorf("Unexpected mq config %+v", cfg.MQ)
	}
	if cfg.Metrics.Listen != ":9090" {
		t.Errorf("Expected metrics listen ':9090', got '%s'", cfg.Metrics.Listen)
	}

	p := cfg.Retry.policy()
	if p.MaxAttempts != 5 || p.InitialBackoff != 100*time.Millisecond || p.RateLimitBackoff != time.Second {
		t.Errorf("Unexpected retry policy %+v", p)
	}
}

// TestLoadConfigDefaults tests that keys missing from the file keep their defaults.
//
// Rationale: Most deployments only set one or two keys; the rest must stay usable.
func TestLoadConfigDefaults(t *testing.T) {
	tmpFile := createTempConfigFile(t, "twitter_user: \"17919972\"\n")
	defer os.Remove(tmpFile.Name())

	cfg, err := loadConfig(tmpFile.Name())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	def := defaultConfig()
	if cfg.Output != def.Output {
		t.Errorf("Expected default output '%s', got '%s'", def.Output, cfg.Output)
	}
	if cfg.MQ.Queue != "tweet_in" {
		t.Errorf("Expected default queue 'tweet_in', got '%s'", cfg.MQ.Queue)
	}
	if !cfg.Filter.Enabled || !cfg.Dedup.Enabled {
		t.Error("Expected filter and dedup to be enabled by default")
	}
	if cfg.Log.Dir != "" {
		t.Errorf("Expected logging to stderr by default, got dir '%s'", cfg.Log.Dir)
	}
}

// TestLoadConfigInvalidYAML tests that malformed YAML is rejected.
func TestLoadConfigInvalidYAML(t *testing.T) {
	tmpFile := createTempConfigFile(t, "rate_limit: [unclosed\n")
	defer os.Remove(tmpFile.Name())

	if _, err := loadConfig(tmpFile.Name()); err == nil {
		t.Fatal("Expected error when loading invalid YAML")
	}
}

// TestLoadConfigNonexistentFile tests that a missing file surfaces os.ErrNotExist.
//
// Rationale: The CLI falls back to defaults only for a missing default file, so the
// error must stay recognisable.
func TestLoadConfigNonexistentFile(t *testing.T) {
	_, err := loadConfig("nonexistent_config.yaml")
	if err == nil || !os.IsNotExist(err) {
		t.Fatalf("Expected not-exist error, got: %v", err)
	}
}

// TestLoadConfigValidation tests the value checks applied after unmarshalling.
//
// Rationale: Bad values should fail at startup, not after the first API call.
func TestLoadConfigValidation(t *testing.T) {
	testCases := []struct {
		name     string
		config   string
		errorMsg string
	}{
		{"Zero retry attempts", "retry:\n  max_attempts: 0\n", "max_attempts"},
		{"Negative rate limit", "rate_limit:\n  requests: -1\n", "rate_limit"},
		{"Unknown log level", "log:\n  level: loud\n", "log.level"},
		{"Unknown log format", "log:\n  format: xml\n", "log.format"},
		{"Empty output", "output: \"\"\n", "output"},
		{"Bad false positive rate", "dedup:\n  false_positive_rate: 1.5\n", "false_positive_rate"},
		{"Enabled mq without queue", "mq:\n  enabled: true\n  queue: \"\"\n", "empty queue name"},
		{"Empty user agent", "geocoder:\n  user_agent: \"\"\n", "user_agent"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tmpFile := createTempConfigFile(t, tc.config)
			defer os.Remove(tmpFile.Name())

			_, err := loadConfig(tmpFile.Name())
			if err == nil {
				t.Fatalf("Expected error containing %q", tc.errorMsg)
			}
			if !strings.Contains(err.Error(), tc.errorMsg) {
				t.Errorf("Expected error containing %q, got: %v", tc.errorMsg, err)
			}
		})
	}
}

// TestLoadConfigDisabledMQSkipsValidation tests that mq settings are only checked when enabled.
func TestLoadConfigDisabledMQSkipsValidation(t *testing.T) {
	tmpFile := createTempConfigFile(t, "mq:\n  enabled: false\n  host: \"\"\n")
	defer os.Remove(tmpFile.Name())

	if _, err := loadConfig(tmpFile.Name()); err != nil {
		t.Fatalf("Expected disabled mq to be ignored, got: %v", err)
	}
}

// createTempConfigFile writes content to a temporary YAML file
func createTempConfigFile(t *testing.T, content string) *os.File {
	tmpFile, err := os.CreateTemp("", "config_test_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	_, err = tmpFile.WriteString(content)
	if err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}

	err = tmpFile.Close()
	if err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	return tmpFile
}
