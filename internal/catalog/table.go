package catalog

import "strings"

// Table names consumed by the generation engine.
const (
	TableContacts          = "contacts"
	TableCustomers         = "customers"
	TableTechs             = "techs"
	TableSubjects          = "subjects"
	TableDescriptions      = "descriptions"
	TablePriorities        = "priorities"
	TableStatuses          = "statuses"
	TableIssueTypes        = "issue_types"
	TableInitialComplaints = "initial_complaints"
	TableCustomerFollowups = "customer_followups"
	TableHelpdeskResponses = "helpdesk_responses"
	TableWordBanks         = "word_banks"
	TableGreetings         = "greetings"
	TableLaborTypes        = "labor_types"
	TableNoteTemplates     = "note_templates"
)

// CustomerColumn links a contact row to its customer.
const CustomerColumn = "customer"

// Row is a single record of a reference table.
type Row []string

// Key identifies the row for weighting and display. It is the first field.
func (r Row) Key() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// ReferenceTable is an immutable named set of rows.
type ReferenceTable struct {
	Name   string
	Header []string
	Rows   []Row
}

// Len returns the number of data rows.
func (t *ReferenceTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the index of the named header column, case-insensitively.
func (t *ReferenceTable) Column(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table carries the named column.
func (t *ReferenceTable) HasColumn(name string) bool {
	return t.Column(name) >= 0
}

// Value returns the named column of row, or "" when absent.
func (t *ReferenceTable) Value(row Row, column string) string {
	idx := t.Column(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Keys lists every row key in table order.
func (t *ReferenceTable) Keys() []string {
	keys := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		keys = append(keys, r.Key())
	}
	return keys
}

// Contains reports whether a row with key exists.
func (t *ReferenceTable) Contains(key string) bool {
	for _, r := range t.Rows {
		if r.Key() == key {
			return true
		}
	}
	return false
}

// Where returns a view of the rows whose column equals value. The view shares
// the table name so profile weights still apply.
func (t *ReferenceTable) Where(column, value string) *ReferenceTable {
	idx := t.Column(column)
	view := &ReferenceTable{Name: t.Name, Header: t.Header}
	if idx < 0 {
		return view
	}
	for _, r := range t.Rows {
		if idx < len(r) && strings.EqualFold(strings.TrimSpace(r[idx]), strings.TrimSpace(value)) {
			view.Rows = append(view.Rows, r)
		}
	}
	return view
}
