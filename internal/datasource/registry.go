package datasource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Ritikraj007/FraudDetectionAI/internal/telecom"
)

// Source identifies which backing store query traffic is served from.
type Source string

const (
	SourceDatabase Source = "database"
	SourceCSV      Source = "csv"
)

// Valid reports whether s is one of the two recognized sources.
func (s Source) Valid() bool {
	return s == SourceDatabase || s == SourceCSV
}

const metadataFile = "metadata.json"

// metadata is the on-disk shape of the selector + imported batch.
type metadata struct {
	CurrentDataSource Source             `json:"currentDataSource"`
	TempData          []telecom.Activity `json:"tempData"`
	LastUpdated       time.Time          `json:"lastUpdated"`
}

// Registry holds the active data-source selector and the imported
// record batch, persisted together so a restart restores both. The
// batch is replaced wholesale on import; individual records are never
// mutated in place.
type Registry struct {
	mu     sync.RWMutex
	path   string
	source Source
	batch  []telecom.Activity
}

// NewRegistry creates the registry rooted at dir, recovering any
// previously persisted state.
func NewRegistry(dir string) (*Registry, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	r := &Registry{
		path:   filepath.Join(dir, metadataFile),
		source: SourceDatabase,
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	var m metadata
	if err := json.Unmarshal(data, &m); err != nil {
		// Corrupt metadata falls back to defaults rather than
		// blocking startup.
		return nil
	}
	if m.CurrentDataSource.Valid() {
		r.source = m.CurrentDataSource
	}
	r.batch = m.TempData
	return nil
}

// persist writes selector and batch in a single file rewrite.
// Caller must hold the write lock.
func (r *Registry) persist() error {
	m := metadata{
		CurrentDataSource: r.source,
		TempData:          r.batch,
		LastUpdated:       time.Now(),
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	return nil
}

// CurrentSource returns the active selector.
func (r *Registry) CurrentSource() Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source
}

// SetSource flips the selector and persists immediately. Switching to
// csv is allowed even when no batch has been imported; readers handle
// the empty-batch case.
func (r *Registry) SetSource(s Source) error {
	if !s.Valid() {
		return fmt.Errorf("invalid data source %q", s)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = s
	return r.persist()
}

// Batch returns the current imported batch. The slice is shared, not
// copied; callers treat it as read-only.
func (r *Registry) Batch() []telecom.Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.batch
}

// ReplaceBatch swaps in a new imported batch without touching the
// selector, persisting immediately. Records are never merged or
// mutated in place; replacement is always whole-value.
func (r *Registry) ReplaceBatch(records []telecom.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.batch
	r.batch = records
	if err := r.persist(); err != nil {
		r.batch = prev
		return err
	}
	return nil
}

// Activate replaces the batch with records, switches the selector to
// csv and persists both in one write. On persist failure the previous
// in-memory state is restored so memory and disk stay consistent.
func (r *Registry) Activate(records []telecom.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prevSource, prevBatch := r.source, r.batch
	r.source = SourceCSV
	r.batch = records
	if err := r.persist(); err != nil {
		r.source, r.batch = prevSource, prevBatch
		return err
	}
	return nil
}
