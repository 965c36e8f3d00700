package slog

import (
	"log/slog"

	"github.com/Vilsol/dynlevel/pkg/config"
	"github.com/Vilsol/dynlevel/pkg/level"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
)

// Config represents configuration for the slog [Module]
type Config struct {
	// Instance name
	Name string `koanf:"-"`

	// Extra upstream handlers in addition to the one registered in DI
	// (code-only, cannot be configured via files).
	ExtraHandlers []slog.Handler `koanf:"-"`

	// FallbackLevel is the minimum level applied when the threshold filter
	// abstains, i.e. when a record carries no discriminating context key.
	FallbackLevel string `koanf:"fallback_level"`

	// GlobalDefault indicates whether the logger should be set as the default globally.
	GlobalDefault bool `koanf:"global_default"`

	// fallbackParsed stores the resolved fallback level.
	fallbackParsed slog.Level
}

// NewDefaultConfig returns default configuration
func NewDefaultConfig() Config {
	return Config{
		Name:          config.DefaultInstanceName,
		FallbackLevel: "info",
		GlobalDefault: true,
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

// ResolveFallback resolves the fallback level name. An unknown name is a
// configuration error, consistent with threshold resolution.
func (c *Config) ResolveFallback() error {
	resolved, err := level.Parse(c.FallbackLevel)
	if err != nil {
		return oops.Wrapf(err, "failed to resolve fallback level")
	}
	c.fallbackParsed = resolved.Slog()
	return nil
}

// Option configures the Module.
type Option func(m *Config)

// WithName sets the instance name for this module.
func WithName(name string) Option {
	return func(m *Config) { m.Name = name }
}

// WithFallbackLevel sets the minimum level used when the filter abstains.
func WithFallbackLevel(levelName string) Option {
	return func(m *Config) { m.FallbackLevel = levelName }
}

// WithExtraHandlers adds upstream handlers that receive records alongside
// the handler registered in DI (code-only, cannot be configured via files).
func WithExtraHandlers(handlers ...slog.Handler) Option {
	return func(m *Config) { m.ExtraHandlers = append(m.ExtraHandlers, handlers...) }
}

// WithGlobalDefault controls whether the assembled logger becomes the
// process-wide default.
func WithGlobalDefault(global bool) Option {
	return func(m *Config) { m.GlobalDefault = global }
}
