package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-synth/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS batches (
	id           TEXT PRIMARY KEY,
	seed         INTEGER NOT NULL,
	generated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tickets (
	id          TEXT NOT NULL,
	batch_id    TEXT NOT NULL REFERENCES batches(id),
	number      INTEGER NOT NULL,
	customer    TEXT NOT NULL,
	contact     TEXT NOT NULL,
	tech        TEXT NOT NULL,
	subject     TEXT NOT NULL,
	description TEXT NOT NULL,
	priority    TEXT NOT NULL,
	status      TEXT NOT NULL,
	issue_type  TEXT NOT NULL,
	profile     TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	PRIMARY KEY (batch_id, id)
);
CREATE TABLE IF NOT EXISTS ticket_messages (
	batch_id    TEXT NOT NULL,
	ticket_id   TEXT NOT NULL,
	position    INTEGER NOT NULL,
	customer    TEXT NOT NULL,
	sender_role TEXT NOT NULL,
	sender_name TEXT NOT NULL,
	body        TEXT NOT NULL,
	sent_at     TEXT NOT NULL,
	PRIMARY KEY (batch_id, ticket_id, position),
	FOREIGN KEY (batch_id, ticket_id) REFERENCES tickets(batch_id, id)
);
CREATE TABLE IF NOT EXISTS time_entries (
	batch_id         TEXT NOT NULL,
	ticket_id        TEXT NOT NULL,
	sequence         INTEGER NOT NULL,
	customer         TEXT NOT NULL,
	tech             TEXT NOT NULL,
	duration_minutes INTEGER NOT NULL,
	visibility       TEXT NOT NULL,
	billable_status  TEXT NOT NULL,
	labor_type       TEXT NOT NULL,
	notes            TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	PRIMARY KEY (batch_id, ticket_id, sequence),
	FOREIGN KEY (batch_id, ticket_id) REFERENCES tickets(batch_id, id)
);
`

// SQLiteSink stores batches in a local SQLite file.
type SQLiteSink struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("export: create %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("export: open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("export: apply sqlite schema: %w", err)
	}
	return &SQLiteSink{db: db, logger: logger}, nil
}

// DB exposes the underlying handle for queries.
func (s *SQLiteSink) DB() *sql.DB { return s.db }

// Close releases the database.
func (s *SQLiteSink) Close() error { return s.db.Close() }

// WriteBatch stores batch in a single transaction. Ticket rows are keyed by
// (batch_id, id) so batches generated from the same seed can share a file.
func (s *SQLiteSink) WriteBatch(ctx context.Context, batch domain.Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (id, seed, generated_at) VALUES (?, ?, ?)`,
		batch.ID, batch.Seed, formatTime(batch.GeneratedAt),
	); err != nil {
		return fmt.Errorf("export: insert batch: %w", err)
	}

	for i, t := range batch.Tickets {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tickets (id, batch_id, number, customer, contact, tech, subject, description, priority, status, issue_type, profile, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, batch.ID, t.Number, t.Customer, t.Contact, t.Tech, t.Subject, t.Description,
			t.Priority, t.Status, t.IssueType, t.Profile, formatTime(t.CreatedAt),
		); err != nil {
			return fmt.Errorf("export: insert ticket %s: %w", t.ID, err)
		}
		if i < len(batch.Conversations) {
			for pos, m := range batch.Conversations[i].Messages {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO ticket_messages (batch_id, ticket_id, position, customer, sender_role, sender_name, body, sent_at)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
					batch.ID, m.TicketID, pos, m.Customer, string(m.SenderRole), m.SenderName, m.Body, formatTime(m.Timestamp),
				); err != nil {
					return fmt.Errorf("export: insert message %s/%d: %w", m.TicketID, pos, err)
				}
			}
		}
		if i < len(batch.TimeEntries) {
			for _, e := range batch.TimeEntries[i] {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO time_entries (batch_id, ticket_id, sequence, customer, tech, duration_minutes, visibility, billable_status, labor_type, notes, created_at)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					batch.ID, e.TicketID, e.Sequence, e.Customer, e.Tech, e.DurationMinutes, e.Visibility,
					e.BillableStatus, e.LaborType, e.Notes, formatTime(e.CreatedAt),
				); err != nil {
					return fmt.Errorf("export: insert time entry %s/%d: %w", e.TicketID, e.Sequence, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Info("batch stored in sqlite", zap.String("batch_id", batch.ID), zap.Int("tickets", len(batch.Tickets)))
	return nil
}
