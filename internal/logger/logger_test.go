package logger

import (
	"testing"

	"github.com/smallbiznis/platefee/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestNewDefaultsToInfo(t *testing.T) {
	log, err := New(config.Config{AppName: "platefee"})
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	if !log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info enabled by default")
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug disabled by default")
	}
}

func TestNewHonorsConfiguredLevel(t *testing.T) {
	log, err := New(config.Config{LogLevel: "warn"})
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info suppressed at warn level")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(config.Config{LogLevel: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
