package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFiles maps table names to the file names used by the generator data
// directory.
var DefaultFiles = map[string]string{
	TableContacts:          "ticketContacts.csv",
	TableCustomers:         "ticketCustomer.csv",
	TableDescriptions:      "ticketDescription.csv",
	TableIssueTypes:        "ticketIssueTypes.csv",
	TablePriorities:        "ticketPriorities.csv",
	TableStatuses:          "ticketStatus.csv",
	TableSubjects:          "ticketSubject.csv",
	TableTechs:             "ticketTech.csv",
	TableInitialComplaints: "initial_complaints.csv",
	TableCustomerFollowups: "customer_followups.csv",
	TableHelpdeskResponses: "helpdesk_responses.csv",
	TableWordBanks:         "wordBanks.csv",
	TableGreetings:         "greetings.csv",
	TableLaborTypes:        "timeEntryLaborTypes.csv",
	TableNoteTemplates:     "timeEntryNoteTemplates.csv",
}

// CSVSource reads one table per CSV file. The first record is the header.
type CSVSource struct {
	Dir   string
	Files map[string]string
}

// NewCSVSource builds a source rooted at dir using DefaultFiles.
func NewCSVSource(dir string) *CSVSource {
	files := make(map[string]string, len(DefaultFiles))
	for k, v := range DefaultFiles {
		files[k] = v
	}
	return &CSVSource{Dir: dir, Files: files}
}

// Loader implements Source. Tables whose file does not exist are reported as
// missing.
func (s *CSVSource) Loader(table string) (Loader, bool) {
	name, ok := s.Files[table]
	if !ok {
		return nil, false
	}
	path := s.path(name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, false
	}
	return func() ([]string, []Row, error) {
		return readCSV(path)
	}, true
}

// Describe implements Source.
func (s *CSVSource) Describe(table string) string {
	return s.path(s.Files[table])
}

func (s *CSVSource) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}

func readCSV(path string) ([]string, []Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var header []string
	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if blank(record) {
			continue
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if header == nil {
			record[0] = strings.TrimPrefix(record[0], "\ufeff")
			header = record
			continue
		}
		rows = append(rows, Row(record))
	}
	return header, rows, nil
}

func blank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
