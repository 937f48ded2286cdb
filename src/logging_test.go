package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestSetupLoggerFile tests that a log dir gets a log file with JSON records.
//
// Rationale: Long-running streams log to a file so stdout stays the raw tweet feed.
func TestSetupLoggerFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, closer, err := setupLogger(LogConfig{Dir: dir, Level: "info", Format: "json"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("Stream rules set", "rules", 2)
	if err := closer.Close(); err != nil {
		t.Fatalf("Failed to close log file: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	if err != nil {
		t.Fatalf("Expected log file, got: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"Stream rules set"`) || !strings.Contains(out, `"rules":2`) {
		t.Errorf("Expected JSON record, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("Expected debug record to be dropped at info level")
	}
}

func TestSetupLoggerStderr(t *testing.T) {
	logger, closer, err := setupLogger(LogConfig{Level: "warn", Format: "text"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if logger == nil {
		t.Fatal("Expected a logger")
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Expected no-op close, got: %v", err)
	}
}

func TestSetupLoggerBadLevel(t *testing.T) {
	if _, _, err := setupLogger(LogConfig{Level: "loud"}); err == nil {
		t.Error("Expected error for unknown level")
	}
}
