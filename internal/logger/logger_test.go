package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker"} {
		if _, err := NewLogger(env); err != nil {
			t.Errorf("%s: unexpected error: %v", env, err)
		}
	}
	if _, err := NewLogger("staging"); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zap.InfoLevel) {
		t.Error("info must be disabled at warn level")
	}
	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "assetshare.log")

	base, err := NewLogger("prod", "info")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l, closeFn, err := WithFile(base, FileConfig{Path: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Info("search executed", zap.String("page", "search"))
	l.Debug("hidden")
	_ = l.Sync()
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"page":"search"`) {
		t.Errorf("expected structured entry, got %q", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("file sink must honor the logger level")
	}
}

func TestWithFile_Disabled(t *testing.T) {
	base := zap.NewNop()
	l, closeFn, err := WithFile(base, FileConfig{})
	if err != nil || l != base || closeFn() != nil {
		t.Errorf("empty path must return the logger unchanged")
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger")
	}
	l := zap.NewExample()
	if FromContext(ContextWithLogger(context.Background(), l)) != l {
		t.Error("logger not found in context")
	}
}

func TestFromContextOr(t *testing.T) {
	fallback := zap.NewExample()
	if FromContextOr(context.Background(), fallback) != fallback {
		t.Error("expected fallback logger")
	}
	l := zap.NewNop()
	if FromContextOr(ContextWithLogger(context.Background(), l), fallback) != l {
		t.Error("expected context logger")
	}
}
