package generator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-synth/internal/catalog"
	"github.com/spec-kit/ticket-synth/internal/config"
	"github.com/spec-kit/ticket-synth/internal/domain"
	"github.com/spec-kit/ticket-synth/internal/profile"
)

// Engine generates batches against a shared, read-only catalog and profile
// registry. It is safe for concurrent use: every call gets its own random
// stream.
type Engine struct {
	tables   Tables
	registry *profile.Registry
	cfg      config.GeneratorConfig
	clock    Clock
	logger   *zap.Logger
}

// NewEngine validates cfg and the profile registry against the catalog.
func NewEngine(tables Tables, registry *profile.Registry, cfg config.GeneratorConfig, clock Clock, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	if registry == nil {
		registry = profile.Empty()
	}
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := registry.Get(cfg.ActiveProfile); err != nil {
		return nil, &ConfigError{Err: err}
	}
	if err := registry.Validate(tables); err != nil {
		return nil, fmt.Errorf("validate profiles: %w", err)
	}
	return &Engine{
		tables:   tables,
		registry: registry,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
	}, nil
}

// Config returns a copy of the engine defaults. Callers may adjust the copy
// and pass it to GenerateBatch.
func (e *Engine) Config() config.GeneratorConfig {
	return e.cfg
}

// Profiles exposes the registry the engine resolves profile names against.
func (e *Engine) Profiles() *profile.Registry {
	return e.registry
}

// Generate produces n tickets with the engine defaults.
func (e *Engine) Generate(ctx context.Context, n int) (domain.Batch, error) {
	return e.GenerateBatch(ctx, n, e.cfg)
}

// Load builds an engine over the CSV data directory and profiles file named
// in cfg. Required tables are read up front so bad data fails at startup.
func Load(cfg config.GeneratorConfig, clock Clock, logger *zap.Logger) (*Engine, error) {
	tables := catalog.New(catalog.NewCSVSource(cfg.DataDir))
	if err := tables.Preload(catalog.RequiredTables()...); err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", cfg.DataDir, err)
	}
	registry, err := profile.Load(cfg.ProfilesFile, cfg.ProfileDefaultWeight)
	if err != nil {
		return nil, err
	}
	return NewEngine(tables, registry, cfg, clock, logger)
}
