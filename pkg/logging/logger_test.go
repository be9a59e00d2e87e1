package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/writeit/writeit/pkg/config"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"json info", "INFO", "json"},
		{"text debug", "DEBUG", "text"},
		{"unknown level falls back to info", "bogus", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.LoggingConfig{Level: tt.level, Format: tt.format}
			if err := InitLogger(cfg); err != nil {
				t.Fatalf("InitLogger() error: %v", err)
			}
			if Logger == nil {
				t.Fatal("Logger should be set after InitLogger")
			}
		})
	}
}

func TestInitLoggerLevel(t *testing.T) {
	cfg := &config.LoggingConfig{Level: "WARN", Format: "json"}
	if err := InitLogger(cfg); err != nil {
		t.Fatalf("InitLogger() error: %v", err)
	}

	if Logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("Info should be disabled at WARN level")
	}
	if !Logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("Error should be enabled at WARN level")
	}
}

func TestGetLoggerFallback(t *testing.T) {
	old := Logger
	defer func() { Logger = old }()

	Logger = nil
	if GetLogger() == nil {
		t.Fatal("GetLogger() should never return nil")
	}
}
