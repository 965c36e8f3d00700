package tint

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Vilsol/dynlevel/pkg/config"
	"github.com/Vilsol/dynlevel/pkg/level"
	"github.com/knadh/koanf/v2"
	"github.com/lmittmann/tint"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/oops"
)

// Config represents configuration for Tint [Module]
type Config struct {
	// Instance name (determines config path, cannot come from config file)
	Name string `koanf:"-"`

	// Code-only fields
	Writer io.Writer `koanf:"-"`

	// File-configurable fields
	Level      string `koanf:"level"`
	TimeFormat string `koanf:"time_format"`

	// Raw passthrough for remaining tint.Options fields (AddSource, NoColor, etc.)
	Raw config.Passthrough[tint.Options] `koanf:",remain"`

	levelParsed slog.Level
}

// NewDefaultConfig returns default configuration
func NewDefaultConfig() Config {
	return Config{
		Name:        config.DefaultInstanceName,
		Writer:      os.Stderr,
		Level:       "trace",
		TimeFormat:  time.RFC3339,
		levelParsed: slog.Level(level.SeverityTrace),
	}
}

// NewConfig returns configuration with provided options based on defaults.
func NewConfig(options ...Option) Config {
	cfg := NewDefaultConfig()
	for _, option := range options {
		option(&cfg)
	}
	return cfg
}

// LoadFromKoanf loads configuration from koanf instance at the given path.
func (c *Config) LoadFromKoanf(k *koanf.Koanf, path string) error {
	return oops.Wrapf(k.Unmarshal(path, c), "failed to load config from koanf at path %s", path)
}

// ResolveLevel resolves the sink level name. The sink default is trace so
// the threshold filter in front of it stays the single point of decision.
func (c *Config) ResolveLevel() error {
	resolved, err := level.Parse(c.Level)
	if err != nil {
		return oops.Wrapf(err, "failed to resolve sink level")
	}
	c.levelParsed = resolved.Slog()
	return nil
}

// TintOptions returns tint.Options with config and Raw values applied.
func (c *Config) TintOptions() *tint.Options {
	options := &tint.Options{
		Level:      c.levelParsed,
		TimeFormat: c.TimeFormat,
	}

	if len(c.Raw) > 0 {
		decoder, _ := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           options,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		})
		_ = decoder.Decode(map[string]any(c.Raw))
	}

	return options
}

// NewHandler creates a new tint handler with config values applied.
func (c *Config) NewHandler() slog.Handler {
	return tint.NewHandler(c.Writer, c.TintOptions())
}

// Option configures the Module.
type Option func(m *Config)

// WithName sets the instance name for this module.
func WithName(name string) Option {
	return func(m *Config) { m.Name = name }
}

// WithWriter sets the output writer (code-only, cannot be configured via files).
func WithWriter(writer io.Writer) Option {
	return func(m *Config) { m.Writer = writer }
}

// WithLevel sets the sink level name.
func WithLevel(levelName string) Option {
	return func(m *Config) { m.Level = levelName }
}
