package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "venuescout.log")

	cfg := DefaultConfig()
	cfg.OutputPath = path
	cfg.ConsoleLevel = LevelError

	log, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Info("batch written", zap.String("provider", "claude"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"provider":"claude"`) {
		t.Fatalf("expected structured field in log file, got %s", data)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if ValidLevel("loud") {
		t.Fatal("ValidLevel accepted unknown level")
	}
	if !ValidLevel(LevelWarn) {
		t.Fatal("ValidLevel rejected warn")
	}
}

func TestNopAndNamed(t *testing.T) {
	log := Nop().Named("search").WithFields(zap.String("k", "v"))
	log.Info("discarded")
	if log.Sugar() == nil {
		t.Fatal("expected sugared logger")
	}
}
