package catalog

// MemorySource serves tables from in-memory rows. The first row of each table
// is its header, matching the on-disk layout.
type MemorySource map[string][][]string

// Loader implements Source.
func (m MemorySource) Loader(table string) (Loader, bool) {
	raw, ok := m[table]
	if !ok {
		return nil, false
	}
	return func() ([]string, []Row, error) {
		if len(raw) == 0 {
			return nil, nil, nil
		}
		header := append([]string(nil), raw[0]...)
		rows := make([]Row, 0, len(raw)-1)
		for _, r := range raw[1:] {
			rows = append(rows, append(Row(nil), r...))
		}
		return header, rows, nil
	}, true
}

// Describe implements Source.
func (m MemorySource) Describe(table string) string {
	return "memory:" + table
}
