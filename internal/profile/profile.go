// Package profile implements probability profiles: named weighting schemes
// that bias reference table draws away from uniform.
package profile

import "sort"

// DefaultKey sets the weight for rows a table does not list explicitly.
const DefaultKey = "__default__"

// TableWeights holds the relative weights for the rows of one table.
type TableWeights struct {
	Rows    map[string]float64
	Default float64
}

// Weight returns the weight for the row identified by key.
func (w *TableWeights) Weight(key string) float64 {
	if w == nil {
		return 1
	}
	if v, ok := w.Rows[key]; ok {
		return v
	}
	return w.Default
}

// Profile is a typed mapping from table name to row weights.
type Profile struct {
	Name          string
	DefaultWeight float64
	Tables        map[string]*TableWeights
}

// Weights returns the weights for table, or nil when the profile leaves the
// table uniform. A nil profile is uniform everywhere.
func (p *Profile) Weights(table string) *TableWeights {
	if p == nil {
		return nil
	}
	return p.Tables[table]
}

// TableNames lists the weighted tables in sorted order.
func (p *Profile) TableNames() []string {
	names := make([]string, 0, len(p.Tables))
	for name := range p.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns an empty profile. Tables are added with With.
func New(name string, defaultWeight float64) *Profile {
	return &Profile{Name: name, DefaultWeight: defaultWeight, Tables: map[string]*TableWeights{}}
}

// With adds explicit weights for table and returns the profile. Unlisted rows
// take the profile default.
func (p *Profile) With(table string, rows map[string]float64) *Profile {
	w := &TableWeights{Rows: make(map[string]float64, len(rows)), Default: p.DefaultWeight}
	for k, v := range rows {
		if k == DefaultKey {
			w.Default = v
			continue
		}
		w.Rows[k] = v
	}
	p.Tables[table] = w
	return p
}
