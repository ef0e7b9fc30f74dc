package catalog

import (
	"errors"
	"sync"
)

// Loader produces the header and rows for one table.
type Loader func() (header []string, rows []Row, err error)

// Source maps table names to loaders.
type Source interface {
	Loader(table string) (Loader, bool)
	Describe(table string) string
}

// Catalog caches loaded tables for the lifetime of the process. Tables are
// read-only after load so they may be shared across concurrent generations.
type Catalog struct {
	source Source

	mu     sync.Mutex
	tables map[string]*entry
}

type entry struct {
	once  sync.Once
	table *ReferenceTable
	err   error
}

// New creates a catalog backed by source.
func New(source Source) *Catalog {
	return &Catalog{source: source, tables: make(map[string]*entry)}
}

// Load returns the named table, reading it on first use.
func (c *Catalog) Load(name string) (*ReferenceTable, error) {
	c.mu.Lock()
	e, ok := c.tables[name]
	if !ok {
		e = &entry{}
		c.tables[name] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.table, e.err = c.read(name)
	})
	return e.table, e.err
}

// Optional loads a table that may legitimately be absent or empty. It returns
// nil without error in that case.
func (c *Catalog) Optional(name string) (*ReferenceTable, error) {
	table, err := c.Load(name)
	if err == nil {
		return table, nil
	}
	var missing *MissingTableError
	var empty *EmptyTableError
	if errors.As(err, &missing) || errors.As(err, &empty) {
		return nil, nil
	}
	return nil, err
}

// Preload loads every named table and returns the first failure.
func (c *Catalog) Preload(names ...string) error {
	for _, name := range names {
		if _, err := c.Load(name); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) read(name string) (*ReferenceTable, error) {
	if c.source == nil {
		return nil, &MissingTableError{Table: name}
	}
	load, ok := c.source.Loader(name)
	if !ok {
		return nil, &MissingTableError{Table: name}
	}
	header, rows, err := load()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &EmptyTableError{Table: name, Source: c.source.Describe(name)}
	}
	return &ReferenceTable{Name: name, Header: header, Rows: rows}, nil
}

// RequiredTables lists the tables every ticket and conversation draws from.
func RequiredTables() []string {
	return []string{
		TableCustomers,
		TableContacts,
		TableTechs,
		TableSubjects,
		TableDescriptions,
		TablePriorities,
		TableStatuses,
		TableIssueTypes,
		TableInitialComplaints,
		TableCustomerFollowups,
		TableHelpdeskResponses,
	}
}
