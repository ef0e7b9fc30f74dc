// Package generator composes synthetic helpdesk tickets, their conversation
// threads and technician time entries from a reference catalog.
package generator

import (
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-synth/internal/catalog"
	"github.com/spec-kit/ticket-synth/internal/config"
	"github.com/spec-kit/ticket-synth/internal/profile"
	"github.com/spec-kit/ticket-synth/internal/sampler"
)

// Tables is the read-only catalog view the composers draw from.
type Tables interface {
	Load(name string) (*catalog.ReferenceTable, error)
	Optional(name string) (*catalog.ReferenceTable, error)
}

// Composer builds individual records. It owns a random stream and is used by
// a single generation call at a time.
type Composer struct {
	tables   Tables
	rng      *sampler.Sampler
	registry *profile.Registry
	cfg      config.GeneratorConfig
	clock    Clock
	logger   *zap.Logger

	words map[string][]string
}

// NewComposer wires a composer. A nil registry means no overrides, a
// nil clock reads the wall clock, and a nil logger discards output.
func NewComposer(tables Tables, rng *sampler.Sampler, registry *profile.Registry, cfg config.GeneratorConfig, clock Clock, logger *zap.Logger) *Composer {
	if registry == nil {
		registry = profile.Empty()
	}
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{
		tables:   tables,
		rng:      rng,
		registry: registry,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
	}
}

// profileFor applies any tech or customer override on top of base. An empty
// tech skips the tech mapping.
func (c *Composer) profileFor(base *profile.Profile, tech, customer string) *profile.Profile {
	return c.registry.Resolve(base, tech, customer)
}

func (c *Composer) pick(table string, p *profile.Profile) (catalog.Row, error) {
	t, err := c.tables.Load(table)
	if err != nil {
		return nil, err
	}
	return c.rng.Pick(t, p.Weights(table))
}

func (c *Composer) pickKey(table string, p *profile.Profile) (string, error) {
	row, err := c.pick(table, p)
	if err != nil {
		return "", err
	}
	return row.Key(), nil
}

// optionalKeys lists the row keys of an optional table, or fallback when the
// table is absent.
func (c *Composer) optionalKeys(table string, fallback []string) ([]string, error) {
	t, err := c.tables.Optional(table)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return fallback, nil
	}
	keys := make([]string, 0, t.Len())
	for _, k := range t.Keys() {
		if k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return fallback, nil
	}
	return keys, nil
}
