package profile

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/ticket-synth/internal/catalog"
)

// File is the on-disk layout of the profiles file.
type File struct {
	DefaultProfile   string                 `yaml:"default_profile"`
	Profiles         map[string]ProfileSpec `yaml:"profiles"`
	CustomerProfiles map[string]string      `yaml:"customer_profiles"`
	TechProfiles     map[string]string      `yaml:"tech_profiles"`
}

// ProfileSpec describes one profile in the file.
type ProfileSpec struct {
	Description   string                        `yaml:"description"`
	DefaultWeight *float64                      `yaml:"default_weight"`
	Tables        map[string]map[string]float64 `yaml:"tables"`
}

// Registry serves the profiles loaded from a file plus the tech and customer
// overrides. It is immutable after construction.
type Registry struct {
	defaultName string
	profiles    map[string]*Profile
	customers   map[string]string
	techs       map[string]string
}

// ErrUnknownProfile is returned when a profile name is not registered.
var ErrUnknownProfile = errors.New("unknown probability profile")

// ValidationError reports a profile entry that does not match the catalog.
type ValidationError struct {
	Profile string
	Table   string
	Key     string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("profile %q table %q row %q: %s", e.Profile, e.Table, e.Key, e.Reason)
	}
	if e.Table != "" {
		return fmt.Sprintf("profile %q table %q: %s", e.Profile, e.Table, e.Reason)
	}
	return fmt.Sprintf("profile %q: %s", e.Profile, e.Reason)
}

// Load reads the profiles file at path. A missing file yields an empty
// registry, which leaves every draw uniform.
func Load(path string, defaultWeight float64) (*Registry, error) {
	if path == "" {
		return Empty(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profiles %s: %w", path, err)
	}
	reg, err := Parse(data, defaultWeight)
	if err != nil {
		return nil, fmt.Errorf("parse profiles %s: %w", path, err)
	}
	return reg, nil
}

// Empty returns a registry with no profiles.
func Empty() *Registry {
	return &Registry{profiles: map[string]*Profile{}, customers: map[string]string{}, techs: map[string]string{}}
}

// Parse builds a registry from YAML.
func Parse(data []byte, defaultWeight float64) (*Registry, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return FromFile(f, defaultWeight)
}

// FromFile converts a decoded file into a registry.
func FromFile(f File, defaultWeight float64) (*Registry, error) {
	reg := Empty()
	var errs []error

	for name, spec := range f.Profiles {
		p := &Profile{Name: name, DefaultWeight: defaultWeight, Tables: map[string]*TableWeights{}}
		if spec.DefaultWeight != nil {
			p.DefaultWeight = *spec.DefaultWeight
		}
		if p.DefaultWeight < 0 {
			errs = append(errs, &ValidationError{Profile: name, Reason: "negative default weight"})
		}
		for table, rows := range spec.Tables {
			for key, weight := range rows {
				if weight < 0 {
					errs = append(errs, &ValidationError{Profile: name, Table: table, Key: key, Reason: "negative weight"})
				}
			}
			p.With(table, rows)
		}
		reg.profiles[name] = p
	}

	if f.DefaultProfile != "" {
		if _, ok := reg.profiles[f.DefaultProfile]; !ok {
			errs = append(errs, fmt.Errorf("default_profile %q: %w", f.DefaultProfile, ErrUnknownProfile))
		}
		reg.defaultName = f.DefaultProfile
	}

	for customer, name := range f.CustomerProfiles {
		if _, ok := reg.profiles[name]; !ok {
			errs = append(errs, fmt.Errorf("customer %q -> %q: %w", customer, name, ErrUnknownProfile))
			continue
		}
		reg.customers[customer] = name
	}
	for tech, name := range f.TechProfiles {
		if _, ok := reg.profiles[name]; !ok {
			errs = append(errs, fmt.Errorf("tech %q -> %q: %w", tech, name, ErrUnknownProfile))
			continue
		}
		reg.techs[tech] = name
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return reg, nil
}

// Get returns the named profile. An empty name resolves to the default
// profile, which may be nil.
func (r *Registry) Get(name string) (*Profile, error) {
	if name == "" {
		return r.Default(), nil
	}
	p, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Default returns the configured default profile or nil.
func (r *Registry) Default() *Profile {
	if r.defaultName == "" {
		return nil
	}
	return r.profiles[r.defaultName]
}

// ForCustomer returns the profile mapped to customer, if any.
func (r *Registry) ForCustomer(customer string) (*Profile, bool) {
	name, ok := r.customers[customer]
	if !ok {
		return nil, false
	}
	return r.profiles[name], true
}

// ForTech returns the profile mapped to tech, if any.
func (r *Registry) ForTech(tech string) (*Profile, bool) {
	name, ok := r.techs[tech]
	if !ok {
		return nil, false
	}
	return r.profiles[name], true
}

// Resolve picks the profile for a ticket. A tech mapping wins over a
// customer mapping, and base applies when neither is mapped.
func (r *Registry) Resolve(base *Profile, tech, customer string) *Profile {
	if p, ok := r.ForTech(tech); ok && p != nil {
		return p
	}
	if p, ok := r.ForCustomer(customer); ok && p != nil {
		return p
	}
	return base
}

// TechAssignments copies the tech to profile mapping.
func (r *Registry) TechAssignments() map[string]string {
	out := make(map[string]string, len(r.techs))
	for tech, name := range r.techs {
		out[tech] = name
	}
	return out
}

// Names lists registered profiles in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TableLoader is the catalog capability validation needs.
type TableLoader interface {
	Load(name string) (*catalog.ReferenceTable, error)
}

// Validate checks every profile against the loaded catalog so stale profiles
// referencing removed tables or rows fail at startup.
func (r *Registry) Validate(tables TableLoader) error {
	var errs []error
	for _, name := range r.Names() {
		p := r.profiles[name]
		for _, tableName := range p.TableNames() {
			table, err := tables.Load(tableName)
			if err != nil {
				errs = append(errs, &ValidationError{Profile: name, Table: tableName, Reason: err.Error()})
				continue
			}
			keys := make([]string, 0, len(p.Tables[tableName].Rows))
			for key := range p.Tables[tableName].Rows {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				if !table.Contains(key) {
					errs = append(errs, &ValidationError{Profile: name, Table: tableName, Key: key, Reason: "row not in catalog"})
				}
			}
		}
	}
	errs = append(errs, validateMapping(tables, catalog.TableCustomers, "customer", r.customers)...)
	errs = append(errs, validateMapping(tables, catalog.TableTechs, "tech", r.techs)...)
	return errors.Join(errs...)
}

func validateMapping(tables TableLoader, tableName, kind string, mapping map[string]string) []error {
	if len(mapping) == 0 {
		return nil
	}
	table, err := tables.Load(tableName)
	if err != nil {
		return []error{err}
	}
	keys := make([]string, 0, len(mapping))
	for key := range mapping {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var errs []error
	for _, key := range keys {
		if !table.Contains(key) {
			errs = append(errs, &ValidationError{Profile: mapping[key], Table: tableName, Key: key, Reason: kind + " mapping not in catalog"})
		}
	}
	return errs
}
