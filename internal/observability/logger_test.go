package observability

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies that parseLogLevel correctly parses log level
// strings from environment variables, handling case-insensitivity and whitespace.
func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		env    string
		expect zapcore.Level
	}{
		{"", zap.InfoLevel},
		{"INFO", zap.InfoLevel},
		{"DEBUG", zap.DebugLevel},
		{"WARN", zap.WarnLevel},
		{"ERROR", zap.ErrorLevel},
		{"debug", zap.DebugLevel},
		{"  warn  ", zap.WarnLevel},
		{"invalid", zap.InfoLevel},
	}
	for _, tt := range tests {
		level := parseLogLevel(tt.env)
		if got := level.Level(); got != tt.expect {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.env, got, tt.expect)
		}
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if logger == nil {
		t.Fatal("NewLogger() returned nil logger")
	}
	logger.Info("test message")
	if err := FlushTelemetry(context.Background(), logger); err != nil {
		t.Errorf("FlushTelemetry() error = %v", err)
	}
}

func TestLoggerFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	scoped := zap.New(core)
	fallback := zap.NewNop()

	LoggerFromContext(WithLogger(context.Background(), scoped), fallback).Info("scoped")
	if logs.Len() != 1 {
		t.Errorf("scoped logger entries = %d, want 1", logs.Len())
	}

	if got := LoggerFromContext(context.Background(), fallback); got != fallback {
		t.Error("LoggerFromContext() without logger should return fallback")
	}
	if got := LoggerFromContext(context.Background(), nil); got == nil {
		t.Error("LoggerFromContext() with nil fallback should return a no-op logger")
	}
}

func TestCorrelationID(t *testing.T) {
	if got := CorrelationID(context.Background()); got != "" {
		t.Errorf("CorrelationID() = %q, want empty", got)
	}
	ctx := WithCorrelationID(context.Background(), "abc-123")
	if got := CorrelationID(ctx); got != "abc-123" {
		t.Errorf("CorrelationID() = %q, want abc-123", got)
	}
}

func TestNewCLILogger_LevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	logger, err := NewCLILogger()
	if err != nil {
		t.Fatalf("NewCLILogger() error = %v", err)
	}
	if !logger.Core().Enabled(zap.WarnLevel) {
		t.Error("CLI logger drops warnings by default")
	}
	if logger.Core().Enabled(zap.InfoLevel) {
		t.Error("CLI logger enables info by default, want warn and above")
	}

	t.Setenv("LOG_LEVEL", "debug")
	logger, err = NewCLILogger()
	if err != nil {
		t.Fatalf("NewCLILogger() error = %v", err)
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Error("CLI logger ignores LOG_LEVEL=debug")
	}
}
