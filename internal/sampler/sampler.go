// Package sampler draws rows from reference tables, optionally biased by a
// probability profile. A Sampler owns its random stream and is not safe for
// concurrent use; give each generation call its own.
package sampler

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/spec-kit/ticket-synth/internal/catalog"
	"github.com/spec-kit/ticket-synth/internal/profile"
)

// InsufficientRowsError is returned when a draw without replacement asks for
// more rows than the table holds.
type InsufficientRowsError struct {
	Table     string
	Requested int
	Available int
}

func (e *InsufficientRowsError) Error() string {
	return fmt.Sprintf("sampler: table %q has %d unique rows, %d requested", e.Table, e.Available, e.Requested)
}

// Sampler is a seeded random stream with weighted selection helpers.
type Sampler struct {
	rng  *rand.Rand
	seed int64
}

// New returns a sampler seeded with seed. A zero seed draws one from process
// entropy.
func New(seed int64) *Sampler {
	if seed == 0 {
		seed = Entropy()
	}
	return &Sampler{rng: rand.New(rand.NewSource(seed)), seed: seed}
}

// Seed reports the seed the stream started from.
func (s *Sampler) Seed() int64 {
	return s.seed
}

// Entropy returns a non-zero seed from crypto/rand, falling back to the clock.
func Entropy() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err == nil {
		if v := int64(binary.LittleEndian.Uint64(buf[:]) &^ (1 << 63)); v != 0 {
			return v
		}
	}
	return time.Now().UnixNano()
}

// Pick draws a single row.
func (s *Sampler) Pick(table *catalog.ReferenceTable, weights *profile.TableWeights) (catalog.Row, error) {
	rows, err := s.Sample(table, weights, 1, true)
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// PickKey draws a single row and returns its key.
func (s *Sampler) PickKey(table *catalog.ReferenceTable, weights *profile.TableWeights) (string, error) {
	row, err := s.Pick(table, weights)
	if err != nil {
		return "", err
	}
	return row.Key(), nil
}

// Sample draws k rows. Without weights every row is equally likely; with
// weights each row's probability is its weight over the total weight of the
// candidate rows, and rows the profile does not list take its default weight.
// When every candidate weighs zero the draw falls back to uniform. Without
// replacement, rows already drawn in this call are excluded.
func (s *Sampler) Sample(table *catalog.ReferenceTable, weights *profile.TableWeights, k int, withReplacement bool) ([]catalog.Row, error) {
	if table.Len() == 0 {
		name := ""
		if table != nil {
			name = table.Name
		}
		return nil, &catalog.EmptyTableError{Table: name}
	}
	if k < 0 {
		return nil, fmt.Errorf("sampler: negative draw count %d", k)
	}
	if !withReplacement && k > table.Len() {
		return nil, &InsufficientRowsError{Table: table.Name, Requested: k, Available: table.Len()}
	}

	candidates := make([]int, table.Len())
	w := make([]float64, table.Len())
	for i, row := range table.Rows {
		candidates[i] = i
		if weights != nil {
			w[i] = weights.Weight(row.Key())
		}
	}

	out := make([]catalog.Row, 0, k)
	for n := 0; n < k; n++ {
		pos := s.choose(candidates, w, weights != nil)
		idx := candidates[pos]
		out = append(out, table.Rows[idx])
		if !withReplacement {
			candidates = append(candidates[:pos], candidates[pos+1:]...)
		}
	}
	return out, nil
}

// choose returns a position within candidates.
func (s *Sampler) choose(candidates []int, weights []float64, weighted bool) int {
	if !weighted {
		return s.rng.Intn(len(candidates))
	}
	total := 0.0
	for _, idx := range candidates {
		if weights[idx] > 0 {
			total += weights[idx]
		}
	}
	if total <= 0 {
		return s.rng.Intn(len(candidates))
	}
	target := s.rng.Float64() * total
	last := 0
	for pos, idx := range candidates {
		if weights[idx] <= 0 {
			continue
		}
		last = pos
		target -= weights[idx]
		if target < 0 {
			return pos
		}
	}
	return last
}

// Choose picks one of options using the given relative weights.
func (s *Sampler) Choose(options []string, weights []float64) string {
	if len(options) == 0 {
		return ""
	}
	candidates := make([]int, len(options))
	for i := range options {
		candidates[i] = i
	}
	w := make([]float64, len(options))
	copy(w, weights)
	return options[s.choose(candidates, w, len(weights) > 0)]
}

// IntBetween returns a uniform integer in [lo, hi].
func (s *Sampler) IntBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	span := uint64(hi) - uint64(lo)
	if span < uint64(math.MaxInt) {
		return lo + s.rng.Intn(int(span)+1)
	}
	// The span does not fit Intn; reject draws past it.
	for {
		if v := s.rng.Uint64(); v <= span {
			return lo + int(v)
		}
	}
}

// Intn returns a uniform integer in [0, n).
func (s *Sampler) Intn(n int) int {
	return s.rng.Intn(n)
}

// Float64 returns a uniform float in [0, 1).
func (s *Sampler) Float64() float64 {
	return s.rng.Float64()
}

// DurationBetween returns a uniform duration in [lo, hi].
func (s *Sampler) DurationBetween(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(s.rng.Int63n(int64(hi-lo)+1))
}

// Read fills p from the stream so seeded callers can derive ids from it.
func (s *Sampler) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(s.rng.Intn(256))
	}
	return len(p), nil
}
