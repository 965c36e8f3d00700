package filter

import (
	"context"
	"log/slog"

	"github.com/Vilsol/dynlevel/pkg/config"
	"github.com/Vilsol/dynlevel/pkg/dynlevel"
	"github.com/knadh/koanf/v2"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

var (
	_ dynlevel.Module       = (*Module)(nil)
	_ dynlevel.Configurable = (*Module)(nil)
	_ dynlevel.NamedModule  = (*Module)(nil)
)

// Module builds a DynamicThresholdFilter from configuration and provides
// it via DI as a hot-swappable *Handle. On config reload the filter is
// rebuilt and swapped whole; a reload that fails to resolve keeps the
// previous filter in place.
type Module struct {
	// initial is the pristine option-built config; every (re)load overlays
	// file contents onto a clone of it, never onto previously merged state.
	initial Config
	config  Config
	handle  *Handle
}

// NewModule creates a new filter module with the given options.
func NewModule(options ...ConfigOption) *Module {
	cfg := NewConfig(options...)
	return &Module{initial: cfg, config: cfg.clone()}
}

// Name returns the instance name.
func (m *Module) Name() string {
	return m.config.Name
}

// ConfigPath returns the koanf path for this module's configuration.
func (m *Module) ConfigPath() string {
	return config.ModulePath(config.CategoryFilter, "threshold", m.config.Name)
}

// LoadConfig loads configuration from koanf.
func (m *Module) LoadConfig(k *koanf.Koanf) error {
	path := m.ConfigPath()
	if k.Exists(path) {
		return m.config.LoadFromKoanf(k, path)
	}
	return nil
}

// Init loads configuration, builds the filter, and registers the handle in DI.
// Construction failures are fatal: a filter that cannot resolve its levels
// or outcomes is reported here, never at evaluation time.
func (m *Module) Init(ctx context.Context) error {
	injector := dynlevel.GetInjector(ctx)

	// Load config from koanf if available
	if k, err := do.Invoke[*koanf.Koanf](injector); err == nil {
		if err := m.LoadConfig(k); err != nil {
			return oops.Wrapf(err, "failed to load config")
		}
	}

	f, err := m.config.Build()
	if err != nil {
		return oops.Wrapf(err, "failed to build threshold filter")
	}

	m.handle = NewHandle(f)

	if notifier, err := do.Invoke[config.ReloadNotifier](injector); err == nil {
		notifier.OnReload(m.rebuild)
	}

	dynlevel.Provide(ctx, m.getHandle)

	return nil
}

// Shutdown is a no-op for this module.
func (m *Module) Shutdown(_ context.Context) error {
	return nil
}

func (m *Module) rebuild(k *koanf.Koanf) {
	cfg := m.initial.clone()

	path := m.ConfigPath()
	if k.Exists(path) {
		if err := cfg.LoadFromKoanf(k, path); err != nil {
			slog.Warn("failed to reload filter config, keeping previous filter", slog.Any("error", err))
			return
		}
	}

	f, err := cfg.Build()
	if err != nil {
		slog.Warn("failed to rebuild threshold filter, keeping previous filter", slog.Any("error", err))
		return
	}

	m.config = cfg
	m.handle.Swap(f)
}

func (m *Module) getHandle(_ do.Injector) (*Handle, error) {
	return m.handle, nil
}
