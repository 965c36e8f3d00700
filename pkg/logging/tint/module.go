package tint

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

// Module provides a tint-based slog.Handler via DI, used as the sink
// behind the threshold filter.
type Module struct {
	config  Config
	handler slog.Handler
}

// NewModule creates a new tint logging module with the given options.
func NewModule(options ...Option) *Module {
	return &Module{config: NewConfig(options...)}
}

// Name returns the instance name.
func (m *Module) Name() string {
	return m.config.Name
}

// ConfigPath returns the koanf path for this module's configuration.
func (m *Module) ConfigPath() string {
	return config.ModulePath(config.CategoryLogging, "tint", m.config.Name)
}

// LoadConfig loads configuration from koanf.
func (m *Module) LoadConfig(k *koanf.Koanf) error {
	path := m.ConfigPath()
	if k.Exists(path) {
		return m.config.LoadFromKoanf(k, path)
	}
	return nil
}

// Init loads configuration, creates the tint handler, and registers it in DI.
func (m *Module) Init(ctx context.Context) error {
	// Load config from koanf if available
	if k, err := do.Invoke[*koanf.Koanf](dynlevel.GetInjector(ctx)); err == nil {
		if err := m.LoadConfig(k); err != nil {
			return oops.Wrapf(err, "failed to load config")
		}
	}

	if err := m.config.ResolveLevel(); err != nil {
		return err
	}

	m.handler = m.config.NewHandler()

	dynlevel.Provide(ctx, m.getHandler)

	return nil
}

// Shutdown is a no-op for this module.
func (m *Module) Shutdown(_ context.Context) error {
	return nil
}

func (m *Module) getHandler(_ do.Injector) (slog.Handler, error) {
	return m.handler, nil
}
