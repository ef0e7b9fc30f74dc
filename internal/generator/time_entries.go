package generator

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-synth/internal/catalog"
	"github.com/spec-kit/ticket-synth/internal/domain"
)

var (
	defaultLaborTypes = []string{
		"Remote Support",
		"Onsite Support",
		"Project Work",
		"Maintenance",
		"Research",
	}
	defaultNoteTemplates = []string{
		"Documented progress on {subject}.",
		"Updated troubleshooting notes for {subject}.",
		"Recorded configuration changes related to {subject}.",
		"Added findings while reviewing {subject}.",
		"Captured follow-up actions for {subject}.",
	}

	visibilityOptions = []string{"Public", "Private"}
	visibilityWeights = []float64{1, 3}
	billableOptions   = []string{"Billable", "Non-Billable"}
	billableWeights   = []float64{3, 1}
)

const assignedTechWeight = 3

// ComposeTimeEntries logs technician work against ticket. Entries are created
// between the ticket's creation and the last message of its thread, in
// ascending order with sequence numbers starting at 1.
func (c *Composer) ComposeTimeEntries(ticket domain.Ticket, conv domain.Conversation) ([]domain.TimeEntry, error) {
	te := c.cfg.TimeEntries
	if te.MaxCount <= 0 {
		return nil, nil
	}
	count := c.rng.IntBetween(te.MinCount, te.MaxCount)
	if count <= 0 {
		return nil, nil
	}

	step := te.IntervalMinutes
	if step < 1 {
		step = 1
	}
	durations := durationChoices(te.MinDurationMinutes, te.MaxDurationMinutes, step)

	techs, err := c.optionalKeys(catalog.TableTechs, nil)
	if err != nil {
		return nil, err
	}
	techs, techWeights := weightTechs(techs, ticket.Tech)

	laborTypes, err := c.optionalKeys(catalog.TableLaborTypes, defaultLaborTypes)
	if err != nil {
		return nil, err
	}
	templates, err := c.optionalKeys(catalog.TableNoteTemplates, defaultNoteTemplates)
	if err != nil {
		return nil, err
	}

	start := ticket.CreatedAt
	end := start
	if last, ok := conv.Last(); ok {
		end = last.Timestamp
	}
	offsets := c.entryOffsets(count, start, end, step)

	entries := make([]domain.TimeEntry, 0, count)
	for i := 0; i < count; i++ {
		duration := durations[c.rng.Intn(len(durations))]
		tech := "Unassigned"
		if len(techs) > 0 {
			tech = c.rng.Choose(techs, techWeights)
		}
		notes := strings.NewReplacer(
			"{subject}", ticket.Subject,
			"{tech}", tech,
			"{duration}", strconv.Itoa(duration),
		).Replace(templates[c.rng.Intn(len(templates))])

		entries = append(entries, domain.TimeEntry{
			TicketID:        ticket.ID,
			Customer:        ticket.Customer,
			Sequence:        i + 1,
			Tech:            tech,
			DurationMinutes: duration,
			Visibility:      c.rng.Choose(visibilityOptions, visibilityWeights),
			BillableStatus:  c.rng.Choose(billableOptions, billableWeights),
			LaborType:       laborTypes[c.rng.Intn(len(laborTypes))],
			CreatedAt:       start.Add(time.Duration(offsets[i]) * time.Minute),
			Notes:           notes,
		})
	}

	c.logger.Debug("time entries composed", zap.String("ticket_id", ticket.ID), zap.Int("count", len(entries)))
	return entries, nil
}

// durationChoices lists the allowed durations in step increments.
func durationChoices(lo, hi, step int) []int {
	if lo < step {
		lo = step
	}
	if hi < lo {
		hi = lo
	}
	out := make([]int, 0, (hi-lo)/step+1)
	for d := lo; d <= hi; d += step {
		out = append(out, d)
	}
	return out
}

// weightTechs favours the assigned tech 3:1 over every other tech.
func weightTechs(techs []string, assigned string) ([]string, []float64) {
	if assigned != "" {
		found := false
		for _, t := range techs {
			if t == assigned {
				found = true
				break
			}
		}
		if !found {
			techs = append(append([]string(nil), techs...), assigned)
		}
	}
	weights := make([]float64, len(techs))
	for i, t := range techs {
		weights[i] = 1
		if assigned != "" && t == assigned {
			weights[i] = assignedTechWeight
		}
	}
	return techs, weights
}

// entryOffsets returns count sorted minute offsets from start on step
// boundaries. When the span is too short to hold count distinct offsets the
// entries are packed one step apart.
func (c *Composer) entryOffsets(count int, start, end time.Time, step int) []int {
	if !end.After(start) {
		end = start.Add(time.Duration(step*count) * time.Minute)
	}
	span := int(end.Sub(start) / time.Minute)
	if span < step {
		span = step
	}
	possible := span/step + 1
	if possible <= count {
		out := make([]int, count)
		for i := range out {
			out[i] = i * step
			if limit := (possible - 1) * step; out[i] > limit {
				out[i] = limit
			}
		}
		return out
	}

	slots := make([]int, possible)
	for i := range slots {
		slots[i] = i
	}
	for i := 0; i < count; i++ {
		j := i + c.rng.Intn(possible-i)
		slots[i], slots[j] = slots[j], slots[i]
	}
	out := make([]int, count)
	for i := 0; i < count; i++ {
		out[i] = slots[i] * step
	}
	sort.Ints(out)
	return out
}
