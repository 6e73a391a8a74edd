package batch

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/blueprint-area/internal/area"
	"github.com/ironsheep/blueprint-area/internal/imaging"
)

// ResultTable holds one row per distinct image basename, in insertion
// order. The first row recorded for a basename wins.
type ResultTable struct {
	mu      sync.RWMutex
	results []*ImageResult
	index   map[string]int
}

// NewResultTable creates an empty table.
func NewResultTable() *ResultTable {
	return &ResultTable{index: make(map[string]int)}
}

// Add records res unless a row with the same SourceName exists. It reports
// whether the row was added.
func (t *ResultTable) Add(res *ImageResult) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	name := res.Aggregate.SourceName
	if _, ok := t.index[name]; ok {
		return false
	}
	t.index[name] = len(t.results)
	t.results = append(t.results, res)
	return true
}

// Rows returns a copy of the aggregates in insertion order.
func (t *ResultTable) Rows() []area.ImageAggregate {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rows := make([]area.ImageAggregate, len(t.results))
	for i, r := range t.results {
		rows[i] = r.Aggregate
	}
	return rows
}

// Results returns the full results in insertion order.
func (t *ResultTable) Results() []*ImageResult {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*ImageResult, len(t.results))
	copy(out, t.results)
	return out
}

// Get returns the result recorded for a basename.
func (t *ResultTable) Get(name string) (*ImageResult, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.results[i], true
}

// At returns the result at row i (0-based).
func (t *ResultTable) At(i int) (*ImageResult, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if i < 0 || i >= len(t.results) {
		return nil, false
	}
	return t.results[i], true
}

// Len returns the number of rows.
func (t *ResultTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.results)
}

// Clear removes every row.
func (t *ResultTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results = nil
	t.index = make(map[string]int)
}

// Session is the state shared by consecutive batches in one process: the
// current result table and the decoded images used for previews.
type Session struct {
	ID    uuid.UUID
	RunID uuid.UUID
	Table *ResultTable
	Cache *imaging.ImageCache
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{
		ID:    uuid.New(),
		Table: NewResultTable(),
		Cache: imaging.NewImageCache(),
	}
}

// Begin starts a new batch: the table and cache are cleared and a fresh
// run ID is assigned and returned.
func (s *Session) Begin() uuid.UUID {
	s.Table.Clear()
	s.Cache.Clear()
	s.RunID = uuid.New()
	return s.RunID
}
