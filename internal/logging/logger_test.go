package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"movs/internal/config"
	"movs/internal/logging"
	"movs/internal/services"
)

func newLogFile(t *testing.T) (string, func() string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "movs-test.log")
	return logPath, func() string {
		content, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(content)
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "movs.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	logPath, read := newLogFile(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "configloader").Info("config resolved",
		logging.Int("genre_count", 2),
		logging.String("image_base_url", "https://img/"))
	logger.Debug("hidden at info")

	content := read()
	if !strings.Contains(content, "INFO configloader: config resolved") {
		t.Fatalf("expected component prefix, got %q", content)
	}
	if !strings.Contains(content, "genre_count=2") || !strings.Contains(content, "image_base_url=https://img/") {
		t.Fatalf("expected key=value fields, got %q", content)
	}
	if strings.Contains(content, "hidden at info") {
		t.Fatalf("debug line should be filtered, got %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerQuotesValues(t *testing.T) {
	logPath, read := newLogFile(t)
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("fetch failed", logging.Error(errors.New("dial tcp: refused")))

	if content := read(); !strings.Contains(content, `error="dial tcp: refused"`) {
		t.Fatalf("expected quoted error, got %q", content)
	}
}

func TestJSONLoggerUsesCompactKeys(t *testing.T) {
	logPath, read := newLogFile(t)
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json line", logging.String("k", "v"))

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(read())), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["msg"] != "json line" || payload["level"] != "info" || payload["k"] != "v" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %#v", payload)
	}
	if src, ok := payload["source"].(string); !ok || !strings.Contains(src, ".go:") {
		t.Fatalf("expected compact source at debug level, got %#v", payload["source"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath, read := newLogFile(t)
	logger, err := logging.New(logging.Options{OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "using cached config", "config_cycle_failed",
		logging.String(logging.FieldImpact, "showing last known genres"))

	content := read()
	for _, fragment := range []string{"event_type=config_cycle_failed", "error_hint=", `impact="showing last known genres"`} {
		if !strings.Contains(content, fragment) {
			t.Fatalf("expected %q in %q", fragment, content)
		}
	}
}

func TestWithContextAddsCycleFields(t *testing.T) {
	logPath, read := newLogFile(t)
	logger, err := logging.New(logging.Options{OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRequestID(services.WithCycle(context.Background(), 3), "abc")
	logging.WithContext(ctx, logger).Info("cycle started")

	content := read()
	if !strings.Contains(content, "cycle=3") || !strings.Contains(content, "correlation_id=abc") {
		t.Fatalf("expected context fields, got %q", content)
	}
	if logging.WithContext(context.Background(), nil) == nil {
		t.Fatal("expected nop logger for nil input")
	}
}
