package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spec-kit/ticket-synth/internal/domain"
)

// SyncroHeader is the column layout of the combined Syncro import file.
var SyncroHeader = []string{
	"ticket customer",
	"ticket number",
	"tech",
	"end user",
	"comment owner",
	"ticket subject",
	"ticket description",
	"ticket response",
	"timestamp",
	"email body",
	"ticket status",
	"ticket issue type",
	"ticket created date",
	"ticket priority",
}

// record is one CSV row keyed by header name.
type record map[string]string

func (r record) get(key string) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r[key])
}

func (r record) key() [2]string {
	return [2]string{r.get("Ticket Number"), r.get("Customer")}
}

// SyncroRows combines a batch into Syncro rows, one per message.
func SyncroRows(batch domain.Batch) [][]string {
	tickets := zipRecords(TicketHeader, TicketRows(batch))
	messages := zipRecords(ConversationHeader, ConversationRows(batch))
	return combine(tickets, messages)
}

// WriteSyncro writes a batch as a fresh Syncro file at path.
func WriteSyncro(path string, batch domain.Batch) (int, error) {
	rows := SyncroRows(batch)
	return len(rows), writeCSV(path, SyncroHeader, rows)
}

// CombineFiles merges previously exported ticket and conversation CSVs into a
// Syncro file and returns the number of rows written.
func CombineFiles(ticketsPath, conversationsPath, outPath string) (int, error) {
	tickets, err := readRecords(ticketsPath)
	if err != nil {
		return 0, err
	}
	messages, err := readRecords(conversationsPath)
	if err != nil {
		return 0, err
	}
	rows := combine(tickets, messages)
	return len(rows), writeCSV(outPath, SyncroHeader, rows)
}

// combine joins messages to tickets on (ticket number, customer). Keys are
// emitted in sorted order and each ticket's messages by timestamp. Tickets
// without messages still produce one row.
func combine(tickets, messages []record) [][]string {
	byTicket := map[[2]string]record{}
	for _, t := range tickets {
		if _, ok := byTicket[t.key()]; !ok {
			byTicket[t.key()] = t
		}
	}
	byMessage := map[[2]string][]record{}
	for _, m := range messages {
		byMessage[m.key()] = append(byMessage[m.key()], m)
	}

	keys := make([][2]string, 0, len(byTicket)+len(byMessage))
	for k := range byTicket {
		keys = append(keys, k)
	}
	for k := range byMessage {
		if _, ok := byTicket[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	var rows [][]string
	for _, k := range keys {
		t := byTicket[k]
		msgs := byMessage[k]
		if len(msgs) == 0 {
			rows = append(rows, syncroRow(t, nil))
			continue
		}
		sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].get("Timestamp") < msgs[j].get("Timestamp") })
		for _, m := range msgs {
			rows = append(rows, syncroRow(t, m))
		}
	}
	return rows
}

func syncroRow(t, m record) []string {
	return []string{
		firstNonEmpty(m.get("Customer"), t.get("Customer")),
		firstNonEmpty(m.get("Ticket Number"), t.get("Ticket Number")),
		firstNonEmpty(t.get("Assigned Tech"), m.get("Sender Name")),
		firstNonEmpty(t.get("Contact"), m.get("Sender Name")),
		m.get("Sender Name"),
		t.get("Subject"),
		t.get("Description"),
		t.get("Description"),
		m.get("Timestamp"),
		m.get("Body"),
		t.get("Status"),
		t.get("Issue Type"),
		t.get("Created At"),
		t.get("Priority"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func zipRecords(header []string, rows [][]string) []record {
	out := make([]record, 0, len(rows))
	for _, row := range rows {
		r := make(record, len(header))
		for i, h := range header {
			if i < len(row) {
				r[h] = row[i]
			}
		}
		out = append(out, r)
	}
	return out
}

func readRecords(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("export: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("export: malformed CSV %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	header := all[0]
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	return zipRecords(header, all[1:]), nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return f.Close()
}
