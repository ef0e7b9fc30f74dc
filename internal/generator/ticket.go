package generator

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-synth/internal/catalog"
	"github.com/spec-kit/ticket-synth/internal/config"
	"github.com/spec-kit/ticket-synth/internal/domain"
	"github.com/spec-kit/ticket-synth/internal/profile"
)

const (
	minTicketNumber = 1000
	maxTicketNumber = 9999
)

// ComposeTicket draws one ticket. The customer is drawn first so a customer
// profile override can shape every later draw. The tech comes next, and a
// tech override then replaces the customer one for the remaining fields.
func (c *Composer) ComposeTicket(base *profile.Profile) (domain.Ticket, error) {
	now := c.clock.Now()

	customer, err := c.pickKey(catalog.TableCustomers, base)
	if err != nil {
		return domain.Ticket{}, err
	}
	active := c.profileFor(base, "", customer)

	contact, err := c.pickContact(customer, active)
	if err != nil {
		return domain.Ticket{}, err
	}

	tech, err := c.pickKey(catalog.TableTechs, active)
	if err != nil {
		return domain.Ticket{}, err
	}
	active = c.profileFor(base, tech, customer)

	ticket := domain.Ticket{
		Customer: customer,
		Contact:  contact,
		Tech:     tech,
	}
	draws := []struct {
		table string
		dst   *string
	}{
		{catalog.TableSubjects, &ticket.Subject},
		{catalog.TableDescriptions, &ticket.Description},
		{catalog.TablePriorities, &ticket.Priority},
		{catalog.TableStatuses, &ticket.Status},
		{catalog.TableIssueTypes, &ticket.IssueType},
	}
	for _, d := range draws {
		if *d.dst, err = c.pickKey(d.table, active); err != nil {
			return domain.Ticket{}, err
		}
	}

	id, err := uuid.NewRandomFromReader(c.rng)
	if err != nil {
		return domain.Ticket{}, err
	}
	ticket.ID = id.String()
	ticket.Number = c.rng.IntBetween(minTicketNumber, maxTicketNumber)
	ticket.CreatedAt = c.createdAt(now)
	if active != nil {
		ticket.Profile = active.Name
	}

	c.logger.Debug("ticket composed",
		zap.String("ticket_id", ticket.ID),
		zap.Int("number", ticket.Number),
		zap.String("customer", ticket.Customer),
		zap.String("tech", ticket.Tech),
	)
	return ticket, nil
}

// pickContact restricts the draw to the customer's contacts when the contacts
// table carries a customer column.
func (c *Composer) pickContact(customer string, p *profile.Profile) (string, error) {
	contacts, err := c.tables.Load(catalog.TableContacts)
	if err != nil {
		return "", err
	}
	pool := contacts
	if contacts.HasColumn(catalog.CustomerColumn) {
		pool = contacts.Where(catalog.CustomerColumn, customer)
		if pool.Len() == 0 {
			if c.cfg.ContactPolicy == config.ContactPolicyStrict {
				return "", &NoMatchingContactError{Customer: customer}
			}
			c.logger.Debug("no contacts for customer, drawing from all contacts", zap.String("customer", customer))
			pool = contacts
		}
	}
	row, err := c.rng.Pick(pool, p.Weights(catalog.TableContacts))
	if err != nil {
		return "", err
	}
	return row.Key(), nil
}

// createdAt picks a whole day offset in [0, DaysAgo] and a uniform time of day
// within it, clamped to [now - DaysAgo days, now].
func (c *Composer) createdAt(now time.Time) time.Time {
	windowStart := now.AddDate(0, 0, -c.cfg.DaysAgo)
	offset := c.rng.IntBetween(0, c.cfg.DaysAgo)

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayStart := midnight.AddDate(0, 0, -offset)
	dayEnd := dayStart.AddDate(0, 0, 1)

	lo, hi := dayStart, dayEnd
	if lo.Before(windowStart) {
		lo = windowStart
	}
	if hi.After(now) {
		hi = now
	}
	if hi.Before(lo) {
		return lo
	}
	return lo.Add(c.rng.DurationBetween(0, hi.Sub(lo)))
}
