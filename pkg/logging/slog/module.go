// Package slog assembles the filtered logging pipeline: upstream handlers
// from DI, gated by the dynamic threshold filter, exposed as a *slog.Logger.
package slog

import (
	"context"
	"log/slog"

	"github.com/Vilsol/dynlevel/pkg/config"
	"github.com/Vilsol/dynlevel/pkg/dynlevel"
	"github.com/Vilsol/dynlevel/pkg/filter"
	"github.com/knadh/koanf/v2"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
	slogmulti "github.com/samber/slog-multi"
)

var (
	_ dynlevel.Module       = (*Module)(nil)
	_ dynlevel.Configurable = (*Module)(nil)
	_ dynlevel.NamedModule  = (*Module)(nil)
)

// Module provides the filtered *slog.Logger via DI.
type Module struct {
	config Config
	logger *slog.Logger
}

// NewModule creates a new slog pipeline module with the given options.
func NewModule(options ...Option) *Module {
	return &Module{config: NewConfig(options...)}
}

// Name returns the instance name.
func (m *Module) Name() string {
	return m.config.Name
}

// ConfigPath returns the koanf path for this module's configuration.
func (m *Module) ConfigPath() string {
	return config.ModulePath(config.CategoryLogging, "slog", m.config.Name)
}

// LoadConfig loads configuration from koanf.
func (m *Module) LoadConfig(k *koanf.Koanf) error {
	path := m.ConfigPath()
	if k.Exists(path) {
		return m.config.LoadFromKoanf(k, path)
	}
	return nil
}

// Init wires the upstream handler(s) and the threshold filter into a
// logger and registers it in DI.
func (m *Module) Init(ctx context.Context) error {
	injector := dynlevel.GetInjector(ctx)

	// Load config from koanf if available
	if k, err := do.Invoke[*koanf.Koanf](injector); err == nil {
		if err := m.LoadConfig(k); err != nil {
			return oops.Wrapf(err, "failed to load config")
		}
	}

	if err := m.config.ResolveFallback(); err != nil {
		return err
	}

	handlers := make([]slog.Handler, 0, len(m.config.ExtraHandlers)+1)
	if upstream, err := do.Invoke[slog.Handler](injector); err == nil {
		handlers = append(handlers, upstream)
	}
	handlers = append(handlers, m.config.ExtraHandlers...)

	if len(handlers) == 0 {
		return oops.Errorf("no upstream handler available: register one in DI or pass WithExtraHandlers")
	}

	upstream := handlers[0]
	if len(handlers) > 1 {
		upstream = slogmulti.Fanout(handlers...)
	}

	filters, err := do.Invoke[*filter.Handle](injector)
	if err != nil {
		return oops.Wrapf(err, "failed to retrieve threshold filter handle")
	}

	m.logger = slog.New(newThresholdHandler(upstream, filters, m.config.fallbackParsed))

	if m.config.GlobalDefault {
		slog.SetDefault(m.logger)
	}

	dynlevel.Provide(ctx, m.GetLogger)

	return nil
}

// Shutdown is a no-op for this module.
func (m *Module) Shutdown(_ context.Context) error {
	return nil
}

func (m *Module) GetLogger(_ do.Injector) (*slog.Logger, error) {
	return m.logger, nil
}
