// Package export writes generated batches to flat files and local databases.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-synth/internal/config"
	"github.com/spec-kit/ticket-synth/internal/domain"
)

// TimestampLayout is used for every timestamp written to CSV.
const TimestampLayout = "2006-01-02 15:04:05"

// Column headers. Customer comes first in every dataset.
var (
	TicketHeader = []string{
		"Customer", "Ticket ID", "Ticket Number", "Contact", "Assigned Tech",
		"Subject", "Description", "Priority", "Status", "Issue Type", "Created At", "Profile",
	}
	ConversationHeader = []string{
		"Customer", "Ticket ID", "Ticket Number", "Sender Role", "Sender Name", "Body", "Timestamp",
	}
	TimeEntryHeader = []string{
		"Customer", "Ticket ID", "Ticket Number", "Entry Sequence", "Tech", "Duration Minutes",
		"Visibility", "Billable Status", "Labor Type", "Created At", "Notes",
	}
)

// CSVWriter appends batches to the ticket, conversation and time entry files.
type CSVWriter struct {
	dir               string
	ticketsFile       string
	conversationsFile string
	timeEntriesFile   string
	logger            *zap.Logger
}

// NewCSVWriter builds a writer from the output configuration.
func NewCSVWriter(cfg config.OutputConfig, logger *zap.Logger) *CSVWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVWriter{
		dir:               cfg.Dir,
		ticketsFile:       cfg.TicketsFile,
		conversationsFile: cfg.ConversationFile,
		timeEntriesFile:   cfg.TimeEntriesFile,
		logger:            logger,
	}
}

// TicketsPath returns the ticket output file.
func (w *CSVWriter) TicketsPath() string { return filepath.Join(w.dir, w.ticketsFile) }

// ConversationsPath returns the conversation output file.
func (w *CSVWriter) ConversationsPath() string { return filepath.Join(w.dir, w.conversationsFile) }

// TimeEntriesPath returns the time entry output file.
func (w *CSVWriter) TimeEntriesPath() string { return filepath.Join(w.dir, w.timeEntriesFile) }

// WriteBatch appends every dataset of batch. Time entries are skipped when the
// batch has none.
func (w *CSVWriter) WriteBatch(batch domain.Batch) error {
	if len(batch.Tickets) == 0 {
		return errors.New("export: batch has no tickets")
	}
	if err := AppendCSV(w.TicketsPath(), TicketHeader, TicketRows(batch)); err != nil {
		return err
	}
	if err := AppendCSV(w.ConversationsPath(), ConversationHeader, ConversationRows(batch)); err != nil {
		return err
	}
	if entries := TimeEntryRows(batch); len(entries) > 0 {
		if err := AppendCSV(w.TimeEntriesPath(), TimeEntryHeader, entries); err != nil {
			return err
		}
	}
	w.logger.Info("batch exported",
		zap.String("batch_id", batch.ID),
		zap.String("tickets", w.TicketsPath()),
		zap.String("conversations", w.ConversationsPath()),
	)
	return nil
}

// AppendCSV appends rows to path, writing header first when the file is new
// or empty.
func AppendCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: create %s: %w", filepath.Dir(path), err)
	}
	needHeader := true
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		needHeader = false
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("export: open %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needHeader {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("export: write header %s: %w", path, err)
		}
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("export: append %s: %w", path, err)
	}
	return f.Close()
}

// TicketRows flattens the batch tickets in TicketHeader order.
func TicketRows(batch domain.Batch) [][]string {
	rows := make([][]string, 0, len(batch.Tickets))
	for _, t := range batch.Tickets {
		rows = append(rows, []string{
			t.Customer, t.ID, strconv.Itoa(t.Number), t.Contact, t.Tech,
			t.Subject, t.Description, t.Priority, t.Status, t.IssueType,
			formatTime(t.CreatedAt), t.Profile,
		})
	}
	return rows
}

// ConversationRows flattens every message in ConversationHeader order.
func ConversationRows(batch domain.Batch) [][]string {
	rows := make([][]string, 0, batch.MessageCount())
	for i, conv := range batch.Conversations {
		number := ticketNumber(batch, i)
		for _, m := range conv.Messages {
			rows = append(rows, []string{
				m.Customer, m.TicketID, number, string(m.SenderRole), m.SenderName, m.Body,
				formatTime(m.Timestamp),
			})
		}
	}
	return rows
}

// TimeEntryRows flattens every time entry in TimeEntryHeader order.
func TimeEntryRows(batch domain.Batch) [][]string {
	var rows [][]string
	for i, entries := range batch.TimeEntries {
		number := ticketNumber(batch, i)
		for _, e := range entries {
			rows = append(rows, []string{
				e.Customer, e.TicketID, number, strconv.Itoa(e.Sequence), e.Tech,
				strconv.Itoa(e.DurationMinutes), e.Visibility, e.BillableStatus, e.LaborType,
				formatTime(e.CreatedAt), e.Notes,
			})
		}
	}
	return rows
}

func ticketNumber(batch domain.Batch, i int) string {
	if i < len(batch.Tickets) {
		return strconv.Itoa(batch.Tickets[i].Number)
	}
	return ""
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}
