package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-synth/internal/domain"
)

// BatchRepository archives generated batches.
type BatchRepository interface {
	SaveBatch(ctx context.Context, batch domain.Batch) error
	GetBatch(ctx context.Context, id string) (domain.Batch, error)
}

type batchRepository struct {
	pool *pgxpool.Pool
}

// NewBatchRepository instantiates repository.
func NewBatchRepository(pool *pgxpool.Pool) BatchRepository {
	return &batchRepository{pool: pool}
}

var (
	messageColumns   = []string{"batch_id", "ticket_id", "position", "customer", "sender_role", "sender_name", "body", "sent_at"}
	timeEntryColumns = []string{"batch_id", "ticket_id", "sequence", "customer", "tech", "duration_minutes", "visibility", "billable_status", "labor_type", "notes", "created_at"}
)

// SaveBatch writes the batch, its tickets, messages and time entries in one
// transaction.
func (r *batchRepository) SaveBatch(ctx context.Context, batch domain.Batch) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`INSERT INTO batches (id, seed, generated_at) VALUES ($1,$2,$3)`,
		batch.ID, batch.Seed, batch.GeneratedAt,
	); err != nil {
		return fmt.Errorf("insert batch %s: %w", batch.ID, err)
	}

	const ticketQuery = `
        INSERT INTO tickets (id, batch_id, position, number, customer, contact, tech, subject, description, priority, status, issue_type, profile, rounds, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	var messages, entries [][]any
	for i, t := range batch.Tickets {
		rounds := 0
		if i < len(batch.Conversations) {
			rounds = batch.Conversations[i].Rounds
			for pos, m := range batch.Conversations[i].Messages {
				messages = append(messages, []any{batch.ID, m.TicketID, pos, m.Customer, string(m.SenderRole), m.SenderName, m.Body, m.Timestamp})
			}
		}
		if i < len(batch.TimeEntries) {
			for _, e := range batch.TimeEntries[i] {
				entries = append(entries, []any{batch.ID, e.TicketID, e.Sequence, e.Customer, e.Tech, e.DurationMinutes, e.Visibility, e.BillableStatus, e.LaborType, e.Notes, e.CreatedAt})
			}
		}
		if _, err := tx.Exec(ctx, ticketQuery,
			t.ID, batch.ID, i, t.Number, t.Customer, t.Contact, t.Tech, t.Subject, t.Description,
			t.Priority, t.Status, t.IssueType, t.Profile, rounds, t.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert ticket %s: %w", t.ID, err)
		}
	}

	if len(messages) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"ticket_messages"}, messageColumns, pgx.CopyFromRows(messages)); err != nil {
			return fmt.Errorf("copy messages: %w", err)
		}
	}
	if len(entries) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"time_entries"}, timeEntryColumns, pgx.CopyFromRows(entries)); err != nil {
			return fmt.Errorf("copy time entries: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// GetBatch rebuilds an archived batch. A missing batch returns pgx.ErrNoRows.
func (r *batchRepository) GetBatch(ctx context.Context, id string) (domain.Batch, error) {
	batch := domain.Batch{ID: id}
	if err := r.pool.QueryRow(ctx,
		`SELECT seed, generated_at FROM batches WHERE id=$1`, id,
	).Scan(&batch.Seed, &batch.GeneratedAt); err != nil {
		return domain.Batch{}, err
	}

	rows, err := r.pool.Query(ctx, `
        SELECT id, number, customer, contact, tech, subject, description, priority, status, issue_type, profile, rounds, created_at
        FROM tickets WHERE batch_id=$1 ORDER BY position ASC`, id)
	if err != nil {
		return domain.Batch{}, err
	}
	index := map[string]int{}
	for rows.Next() {
		var (
			t      domain.Ticket
			rounds int
		)
		if err := rows.Scan(&t.ID, &t.Number, &t.Customer, &t.Contact, &t.Tech, &t.Subject, &t.Description,
			&t.Priority, &t.Status, &t.IssueType, &t.Profile, &rounds, &t.CreatedAt); err != nil {
			rows.Close()
			return domain.Batch{}, err
		}
		index[t.ID] = len(batch.Tickets)
		batch.Tickets = append(batch.Tickets, t)
		batch.Conversations = append(batch.Conversations, domain.Conversation{TicketID: t.ID, Rounds: rounds})
		batch.TimeEntries = append(batch.TimeEntries, nil)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Batch{}, err
	}

	msgRows, err := r.pool.Query(ctx, `
        SELECT m.ticket_id, m.customer, m.sender_role, m.sender_name, m.body, m.sent_at
        FROM ticket_messages m JOIN tickets t ON t.batch_id = m.batch_id AND t.id = m.ticket_id
        WHERE m.batch_id=$1 ORDER BY t.position ASC, m.position ASC`, id)
	if err != nil {
		return domain.Batch{}, err
	}
	for msgRows.Next() {
		var (
			m    domain.ConversationMessage
			role string
		)
		if err := msgRows.Scan(&m.TicketID, &m.Customer, &role, &m.SenderName, &m.Body, &m.Timestamp); err != nil {
			msgRows.Close()
			return domain.Batch{}, err
		}
		m.SenderRole = domain.SenderRole(role)
		i := index[m.TicketID]
		batch.Conversations[i].Messages = append(batch.Conversations[i].Messages, m)
	}
	msgRows.Close()
	if err := msgRows.Err(); err != nil {
		return domain.Batch{}, err
	}

	entryRows, err := r.pool.Query(ctx, `
        SELECT e.ticket_id, e.sequence, e.customer, e.tech, e.duration_minutes, e.visibility, e.billable_status, e.labor_type, e.notes, e.created_at
        FROM time_entries e JOIN tickets t ON t.batch_id = e.batch_id AND t.id = e.ticket_id
        WHERE e.batch_id=$1 ORDER BY t.position ASC, e.sequence ASC`, id)
	if err != nil {
		return domain.Batch{}, err
	}
	defer entryRows.Close()
	for entryRows.Next() {
		var e domain.TimeEntry
		if err := entryRows.Scan(&e.TicketID, &e.Sequence, &e.Customer, &e.Tech, &e.DurationMinutes, &e.Visibility,
			&e.BillableStatus, &e.LaborType, &e.Notes, &e.CreatedAt); err != nil {
			return domain.Batch{}, err
		}
		i := index[e.TicketID]
		batch.TimeEntries[i] = append(batch.TimeEntries[i], e)
	}
	return batch, entryRows.Err()
}
