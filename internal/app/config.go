package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"gopkg.in/yaml.v3"

	"github.com/tejashwikalptaru/govis/internal/adapter/output"
	"github.com/tejashwikalptaru/govis/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/logger"
	"github.com/tejashwikalptaru/govis/internal/visualizer"
)

// ConfigFileName is the file LoadConfig looks for when no path is given.
const ConfigFileName = "govis.yaml"

// LogConfig is the logging section of the config file.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AudioConfig is the audio section of the config file.
type AudioConfig struct {
	// Mock synthesizes tracks and skips the output device
	Mock bool `yaml:"mock"`

	SampleRate int           `yaml:"sample_rate"`
	Buffer     time.Duration `yaml:"buffer"`
}

// WebSocketConfig is the snapshot broadcaster section of the config file.
type WebSocketConfig struct {
	// Addr enables the broadcaster when set, e.g. "127.0.0.1:8089"
	Addr string `yaml:"addr"`
}

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string `yaml:"-"`

	Log LogConfig `yaml:"log"`

	// Visualizers are enabled at startup, overriding saved preferences
	Visualizers []string `yaml:"visualizers"`

	// FPS is the render loop frame rate
	FPS int `yaml:"fps"`

	Audio     AudioConfig     `yaml:"audio"`
	WebSocket WebSocketConfig `yaml:"websocket"`

	// Track and Lyrics are opened after startup
	Track  string `yaml:"track"`
	Lyrics string `yaml:"lyrics"`

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App `yaml:"-"`
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		AppID: "com.govis.app",
		Log: LogConfig{
			Level:  loggerCfg.Level.String(),
			Format: loggerCfg.Format,
		},
		FPS: scheduler.DefaultFPS,
		Audio: AudioConfig{
			SampleRate: output.DefaultSampleRate,
			Buffer:     output.DefaultBufferSize,
		},
	}
}

// LoadConfig reads the YAML file at path on top of the defaults.
// An empty path looks for govis.yaml in the working directory and then in
// the user config directory; a missing file there is not an error.
// GOVIS_LOG_LEVEL overrides the file's log level.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case explicit || !errors.Is(err, fs.ErrNotExist):
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if level := os.Getenv(logger.EnvLevel); level != "" {
		if _, ok := logger.ParseLevel(level); ok {
			cfg.Log.Level = level
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func findConfigFile() string {
	candidates := []string{ConfigFileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "govis", ConfigFileName))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Validate checks every section and returns the first problem found.
func (c Config) Validate() error {
	if _, ok := logger.ParseLevel(c.Log.Level); !ok {
		return domain.NewConfigurationError("log.level", c.Log.Level, "must be debug, info, warn or error")
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		return domain.NewConfigurationError("log.format", c.Log.Format, "must be text or json")
	}
	if c.FPS < 1 || c.FPS > 240 {
		return domain.NewConfigurationError("fps", c.FPS, "must be between 1 and 240")
	}
	for _, name := range c.Visualizers {
		if _, err := visualizer.ParseType(name); err != nil {
			return domain.NewConfigurationError("visualizers", name, err.Error())
		}
	}
	if !c.Audio.Mock {
		if _, err := c.OutputOptions(); err != nil {
			return err
		}
	}
	return nil
}

// LoggerConfig converts the log section for the logger package.
func (c Config) LoggerConfig() logger.Config {
	level, _ := logger.ParseLevel(c.Log.Level)
	return logger.Config{Level: level, Format: c.Log.Format}
}

// LogLevel returns the parsed log level.
func (c Config) LogLevel() slog.Level {
	return c.LoggerConfig().Level
}

// VisualizerTypes returns the configured visualizers. Unknown names were
// rejected by Validate.
func (c Config) VisualizerTypes() []visualizer.Type {
	var out []visualizer.Type
	for _, name := range c.Visualizers {
		if t, err := visualizer.ParseType(name); err == nil {
			out = append(out, t)
		}
	}
	return out
}

// OutputOptions returns the audio device options.
func (c Config) OutputOptions() (output.Options, error) {
	opts := output.Options{SampleRate: c.Audio.SampleRate, BufferSize: c.Audio.Buffer}
	if err := opts.Validate(); err != nil {
		return output.Options{}, err
	}
	return opts, nil
}
