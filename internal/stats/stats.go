// Package stats summarizes generated tickets per technician.
package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spec-kit/ticket-synth/internal/domain"
)

const (
	unassigned     = "Unassigned"
	defaultProfile = "default"
)

// TechStats counts the tickets assigned to one technician.
type TechStats struct {
	Tech     string `json:"tech"`
	Profile  string `json:"profile"`
	Total    int    `json:"total"`
	Resolved int    `json:"resolved"`
}

// Open returns tickets not yet resolved.
func (s TechStats) Open() int {
	if s.Total < s.Resolved {
		return 0
	}
	return s.Total - s.Resolved
}

// Summarize groups tickets by tech, sorted by tech name. A status starting with
// "resolved" counts as resolved.
func Summarize(tickets []domain.Ticket) []TechStats {
	return SummarizeAssigned(tickets, nil)
}

// SummarizeAssigned is Summarize with the configured tech to profile mapping
// taking precedence over the profile recorded on the tickets.
func SummarizeAssigned(tickets []domain.Ticket, assigned map[string]string) []TechStats {
	byTech := map[string]*TechStats{}
	for _, t := range tickets {
		tech := strings.TrimSpace(t.Tech)
		if tech == "" {
			tech = unassigned
		}
		s, ok := byTech[tech]
		if !ok {
			s = &TechStats{Tech: tech, Profile: assigned[tech]}
			byTech[tech] = s
		}
		if s.Profile == "" && t.Profile != "" {
			s.Profile = t.Profile
		}
		s.Total++
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(t.Status)), "resolved") {
			s.Resolved++
		}
	}

	out := make([]TechStats, 0, len(byTech))
	for _, s := range byTech {
		if s.Profile == "" {
			s.Profile = defaultProfile
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tech < out[j].Tech })
	return out
}

// Render writes a readable summary.
func Render(w io.Writer, summary []TechStats) error {
	if len(summary) == 0 {
		_, err := fmt.Fprintln(w, "No ticket data available to summarize.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Ticket stats by technician:"); err != nil {
		return err
	}
	for _, s := range summary {
		if _, err := fmt.Fprintf(w, "- %s (profile: %s): %d tickets (%d resolved, %d open/pending)\n",
			s.Tech, s.Profile, s.Total, s.Resolved, s.Open()); err != nil {
			return err
		}
	}
	return nil
}
