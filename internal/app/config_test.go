package app

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/govis/internal/adapter/output"
	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/logger"
	"github.com/tejashwikalptaru/govis/internal/visualizer"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// isolate keeps LoadConfig away from the developer's own config files.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(logger.EnvLevel, "")
	t.Chdir(dir)
	return dir
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv(logger.EnvLevel, "")
	config := DefaultConfig()

	assert.Equal(t, "com.govis.app", config.AppID)
	assert.Equal(t, "INFO", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, 60, config.FPS)
	assert.Equal(t, output.DefaultSampleRate, config.Audio.SampleRate)
	assert.False(t, config.Audio.Mock)
	assert.Empty(t, config.Visualizers)
	assert.NoError(t, config.Validate())
}

func TestLoadConfig_File(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
log:
  level: debug
  format: json
visualizers: [blobs, particles]
fps: 30
audio:
  mock: true
  sample_rate: 48000
  buffer: 120ms
websocket:
  addr: 127.0.0.1:8089
lyrics: /tmp/song.lrc
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, config.LogLevel())
	assert.Equal(t, "json", config.LoggerConfig().Format)
	assert.Equal(t, []visualizer.Type{visualizer.TypeBlobs, visualizer.TypeParticles}, config.VisualizerTypes())
	assert.Equal(t, 30, config.FPS)
	assert.True(t, config.Audio.Mock)
	assert.Equal(t, 48000, config.Audio.SampleRate)
	assert.Equal(t, 120*time.Millisecond, config.Audio.Buffer)
	assert.Equal(t, "127.0.0.1:8089", config.WebSocket.Addr)
	assert.Equal(t, "/tmp/song.lrc", config.Lyrics)
	assert.Equal(t, "com.govis.app", config.AppID, "not read from the file")
}

func TestLoadConfig_Search(t *testing.T) {
	dir := isolate(t)

	config, err := LoadConfig("")
	require.NoError(t, err, "no file is fine")
	assert.Equal(t, 60, config.FPS)

	writeConfig(t, dir, "fps: 24\n")
	config, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 24, config.FPS)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := LoadConfig(filepath.Join(dir, "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_EnvOverridesLevel(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "log:\n  level: error\n")

	t.Setenv(logger.EnvLevel, "warn")
	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, config.LogLevel())

	t.Setenv(logger.EnvLevel, "loud")
	config, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, config.LogLevel(), "unknown env values are ignored")
}

func TestLoadConfig_BadYAML(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "fps: [not a number\n")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"bad level", func(c *Config) { c.Log.Level = "chatty" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"zero fps", func(c *Config) { c.FPS = 0 }, "fps"},
		{"huge fps", func(c *Config) { c.FPS = 1000 }, "fps"},
		{"unknown visualizer", func(c *Config) { c.Visualizers = []string{"lasers"} }, "visualizers"},
		{"bad sample rate", func(c *Config) { c.Audio.SampleRate = 100 }, "sampleRate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)

			err := config.Validate()
			var cfgErr *domain.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Param)
		})
	}
}

func TestConfig_MockSkipsDeviceChecks(t *testing.T) {
	config := DefaultConfig()
	config.Audio.Mock = true
	config.Audio.SampleRate = 0

	assert.NoError(t, config.Validate())
}
