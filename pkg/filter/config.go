package filter

import (
	"github.com/Vilsol/dynlevel/pkg/config"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
)

// Config represents configuration for the filter [Module]
type Config struct {
	// Instance name (determines config path, cannot come from config file)
	Name string `koanf:"-"`

	// Key is the context key whose value selects the threshold.
	Key string `koanf:"key"`

	// Thresholds maps context values to minimum level names.
	Thresholds map[string]string `koanf:"thresholds"`

	// DefaultThreshold is the level name used for unmapped context values.
	// Empty falls back to "error".
	DefaultThreshold string `koanf:"default_threshold"`

	// OnMatch is the outcome token returned when the event level clears
	// the threshold: accept, deny, or neutral.
	OnMatch string `koanf:"on_match"`

	// OnMismatch is the outcome token returned when it does not.
	OnMismatch string `koanf:"on_mismatch"`
}

// NewDefaultConfig returns default configuration
func NewDefaultConfig() Config {
	return Config{
		Name:       config.DefaultInstanceName,
		OnMatch:    "neutral",
		OnMismatch: "deny",
	}
}

// NewConfig returns configuration with provided options based on defaults.
func NewConfig(options ...ConfigOption) Config {
	cfg := NewDefaultConfig()
	for _, option := range options {
		option(&cfg)
	}
	return cfg
}

// ConfigOption manipulates Config.
type ConfigOption func(c *Config)

// WithName sets the instance name for this module.
func WithName(name string) ConfigOption {
	return func(c *Config) { c.Name = name }
}

// WithKey sets the context key to discriminate on.
func WithKey(key string) ConfigOption {
	return func(c *Config) { c.Key = key }
}

// WithThresholds sets the context value to level name mapping.
func WithThresholds(thresholds map[string]string) ConfigOption {
	return func(c *Config) { c.Thresholds = thresholds }
}

// WithDefaultThreshold sets the level name used for unmapped values.
func WithDefaultThreshold(levelName string) ConfigOption {
	return func(c *Config) { c.DefaultThreshold = levelName }
}

// WithOutcomeTokens sets the match and mismatch outcome tokens.
func WithOutcomeTokens(onMatch string, onMismatch string) ConfigOption {
	return func(c *Config) {
		c.OnMatch = onMatch
		c.OnMismatch = onMismatch
	}
}

// LoadFromKoanf loads configuration from koanf instance at the given path.
func (c *Config) LoadFromKoanf(k *koanf.Koanf, path string) error {
	return oops.Wrapf(k.Unmarshal(path, c), "failed to load config from koanf at path %s", path)
}

// clone returns a copy with an independent threshold map. Unmarshalling
// merges into an existing map, so overlaying reloaded file contents onto a
// shared map would resurrect entries removed from the file.
func (c Config) clone() Config {
	out := c
	if c.Thresholds != nil {
		out.Thresholds = make(map[string]string, len(c.Thresholds))
		for value, levelName := range c.Thresholds {
			out.Thresholds[value] = levelName
		}
	}
	return out
}

// Build resolves the configuration into an immutable filter. All level
// names and outcome tokens are resolved here; a failure is a fatal
// configuration error and no filter instance is produced.
func (c *Config) Build() (*DynamicThresholdFilter, error) {
	pairs := make([]Pair, 0, len(c.Thresholds))
	for value, levelName := range c.Thresholds {
		pairs = append(pairs, Pair{Value: value, Level: levelName})
	}

	table, err := NewThresholdTable(pairs, c.DefaultThreshold)
	if err != nil {
		return nil, err
	}

	onMatch, err := ParseOutcome(c.OnMatch)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to resolve on_match outcome")
	}

	onMismatch, err := ParseOutcome(c.OnMismatch)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to resolve on_mismatch outcome")
	}

	return New(c.Key, table, WithOnMatch(onMatch), WithOnMismatch(onMismatch))
}
