package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-synth/internal/catalog"
	"github.com/spec-kit/ticket-synth/internal/config"
	"github.com/spec-kit/ticket-synth/internal/profile"
	"github.com/spec-kit/ticket-synth/internal/sampler"
)

var testNow = time.Date(2024, time.March, 14, 15, 30, 0, 0, time.UTC)

func column(header string, values ...string) [][]string {
	rows := [][]string{{header}}
	for _, v := range values {
		rows = append(rows, []string{v})
	}
	return rows
}

// helpdeskSource is a small but complete catalog.
func helpdeskSource() catalog.MemorySource {
	return catalog.MemorySource{
		catalog.TableCustomers: column("customer", "Acme Corp", "Globex", "Initech"),
		catalog.TableContacts: {
			{"contact", "customer"},
			{"Wile Coyote", "Acme Corp"},
			{"Road Runner", "Acme Corp"},
			{"Hank Scorpio", "Globex"},
			{"Peter Gibbons", "Initech"},
		},
		catalog.TableTechs:             column("tech", "Alice", "Bob", "Carol"),
		catalog.TableSubjects:          column("subject", "Printer jam", "VPN down", "Password reset"),
		catalog.TableDescriptions:      column("description", "It stopped working.", "Nothing loads."),
		catalog.TablePriorities:        column("priority", "Low", "Medium", "High"),
		catalog.TableStatuses:          column("status", "New", "In Progress", "Resolved"),
		catalog.TableIssueTypes:        column("issue_type", "Hardware", "Network", "Account"),
		catalog.TableInitialComplaints: column("phrase", "My #device# is broken", "Nothing works"),
		catalog.TableCustomerFollowups: column("phrase", "Still broken", "#device.capitalize# is fine now"),
		catalog.TableHelpdeskResponses: column("phrase", "Have you tried turning it off?", "Escalating now"),
		catalog.TableWordBanks: {
			{"bank", "word"},
			{"device", "printer"},
			{"device", "laptop"},
		},
	}
}

// singleRowSource holds exactly one row per table.
func singleRowSource() catalog.MemorySource {
	return catalog.MemorySource{
		catalog.TableCustomers:         column("customer", "Acme Corp"),
		catalog.TableContacts:          column("contact", "Wile Coyote"),
		catalog.TableTechs:             column("tech", "Alice"),
		catalog.TableSubjects:          column("subject", "Printer jam"),
		catalog.TableDescriptions:      column("description", "Paper everywhere."),
		catalog.TablePriorities:        column("priority", "High"),
		catalog.TableStatuses:          column("status", "New"),
		catalog.TableIssueTypes:        column("issue_type", "Hardware"),
		catalog.TableInitialComplaints: column("phrase", "The printer ate my report"),
		catalog.TableCustomerFollowups: column("phrase", "Any update?"),
		catalog.TableHelpdeskResponses: column("phrase", "Looking into it"),
		catalog.TableGreetings:         column("greeting", "HELP"),
	}
}

func testConfig() config.GeneratorConfig {
	cfg := config.DefaultGenerator()
	cfg.Seed = 42
	return cfg
}

func newTestComposer(t *testing.T, src catalog.Source, cfg config.GeneratorConfig, reg *profile.Registry) *Composer {
	t.Helper()
	require.NoError(t, cfg.Validate())
	return NewComposer(catalog.New(src), sampler.New(cfg.Seed), reg, cfg, FixedClock(testNow), nil)
}

func newTestEngine(t *testing.T, src catalog.Source, cfg config.GeneratorConfig, reg *profile.Registry) *Engine {
	t.Helper()
	e, err := NewEngine(catalog.New(src), reg, cfg, FixedClock(testNow), nil)
	require.NoError(t, err)
	return e
}
