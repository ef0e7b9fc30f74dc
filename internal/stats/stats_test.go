package stats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-synth/internal/domain"
)

func TestSummarize(t *testing.T) {
	summary := Summarize([]domain.Ticket{
		{Tech: "Bob", Status: "Resolved"},
		{Tech: "Alice", Status: "New", Profile: "outage"},
		{Tech: "Alice", Status: "resolved - confirmed"},
		{Tech: " ", Status: "Open"},
	})

	require.Len(t, summary, 3)
	assert.Equal(t, TechStats{Tech: "Alice", Profile: "outage", Total: 2, Resolved: 1}, summary[0])
	assert.Equal(t, TechStats{Tech: "Bob", Profile: "default", Total: 1, Resolved: 1}, summary[1])
	assert.Equal(t, "Unassigned", summary[2].Tech)
	assert.Equal(t, 1, summary[2].Open())
}

func TestSummarizeAssignedProfiles(t *testing.T) {
	summary := SummarizeAssigned([]domain.Ticket{
		{Tech: "Alice", Status: "New", Profile: "outage"},
		{Tech: "Bob", Status: "New", Profile: "outage"},
	}, map[string]string{"Alice": "backlog", "Dana": "hardware"})

	require.Len(t, summary, 2)
	assert.Equal(t, "backlog", summary[0].Profile)
	assert.Equal(t, "outage", summary[1].Profile)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Summarize([]domain.Ticket{{Tech: "Alice", Status: "New"}})))
	assert.Equal(t, "Ticket stats by technician:\n- Alice (profile: default): 1 tickets (0 resolved, 1 open/pending)\n", buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, nil))
	assert.Contains(t, buf.String(), "No ticket data")
}
