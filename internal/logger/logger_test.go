package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		level slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{" INFO ", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"Error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, ok := ParseLevel(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.level, level)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	cfg := ApplyEnv(Config{Level: slog.LevelError})
	assert.Equal(t, slog.LevelDebug, cfg.Level)

	t.Setenv(EnvLevel, "nonsense")
	cfg = ApplyEnv(Config{Level: slog.LevelError})
	assert.Equal(t, slog.LevelError, cfg.Level)
}

func TestNewLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: slog.LevelInfo, Format: "json", Output: &buf})

	log.Info("frame", "bins", 128)
	assert.Contains(t, buf.String(), `"msg":"frame"`)
	assert.Contains(t, buf.String(), `"bins":128`)
}
