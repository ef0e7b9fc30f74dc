package catalog

import "fmt"

// MissingTableError is returned when a table has no backing data source.
type MissingTableError struct {
	Table string
}

func (e *MissingTableError) Error() string {
	return fmt.Sprintf("catalog: no data source for table %q", e.Table)
}

// EmptyTableError is returned when a source yields zero data rows.
type EmptyTableError struct {
	Table  string
	Source string
}

func (e *EmptyTableError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("catalog: table %q is empty (%s)", e.Table, e.Source)
	}
	return fmt.Sprintf("catalog: table %q is empty", e.Table)
}
