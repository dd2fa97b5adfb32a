package datasource

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNotFound is returned when a catalog entry does not exist.
var ErrNotFound = errors.New("file not found")

const fileListFile = "files.json"

// FileEntry describes one uploaded CSV file.
type FileEntry struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	RecordCount int       `json:"recordCount"`
	UploadedAt  time.Time `json:"uploadedAt"`
	Status      string    `json:"status"`
}

// Catalog tracks uploaded files by name. Entries and the stored file
// bytes live under the same directory; the list is rewritten wholesale
// on every change.
type Catalog struct {
	mu      sync.RWMutex
	dir     string
	path    string
	entries []FileEntry
}

// NewCatalog creates the catalog rooted at dir, recovering any
// previously persisted file list.
func NewCatalog(dir string) (*Catalog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	c := &Catalog{
		dir:  dir,
		path: filepath.Join(dir, fileListFile),
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read file list: %w", err)
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		// Corrupt list starts empty; the stored files remain on disk.
		c.entries = nil
	}
	return c, nil
}

func (c *Catalog) persist() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal file list: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to save file list: %w", err)
	}
	return nil
}

// List returns all catalog entries.
func (c *Catalog) List() []FileEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]FileEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Upsert adds entry, replacing any existing entry with the same name.
func (c *Catalog) Upsert(entry FileEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.Name != entry.Name {
			kept = append(kept, e)
		}
	}
	c.entries = append(kept, entry)
	return c.persist()
}

// Delete removes the named entry and its stored file. The imported
// batch is not touched: deleting a file does not retract records that
// were already activated from it.
func (c *Catalog) Delete(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := false
	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.Name == name {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return ErrNotFound
	}
	c.entries = kept

	if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return c.persist()
}
