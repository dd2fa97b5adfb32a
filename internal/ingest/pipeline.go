package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Ritikraj007/FraudDetectionAI/internal/datasource"
	"github.com/Ritikraj007/FraudDetectionAI/internal/telecom"
)

var (
	// ErrInvalidFileType rejects uploads that are not delimited text.
	ErrInvalidFileType = errors.New("only CSV files are allowed")
	// ErrFileTooLarge rejects uploads over the configured size cap.
	ErrFileTooLarge = errors.New("file exceeds the upload size limit")
)

// Result summarizes a completed ingestion.
type Result struct {
	Filename    string `json:"filename"`
	RecordCount int    `json:"recordCount"`
	Dropped     int    `json:"-"`
}

// Pipeline runs the CSV import: store the raw file, parse and
// normalize rows, activate the batch and catalog the file.
type Pipeline struct {
	uploadDir string
	registry  *datasource.Registry
	catalog   *datasource.Catalog
}

// NewPipeline creates an ingestion pipeline writing files to uploadDir.
func NewPipeline(uploadDir string, registry *datasource.Registry, catalog *datasource.Catalog) *Pipeline {
	return &Pipeline{
		uploadDir: uploadDir,
		registry:  registry,
		catalog:   catalog,
	}
}

// Ingest imports one uploaded CSV file. The raw bytes are saved first,
// then parsed with the first row as header; rows that cannot be
// normalized are dropped and counted, while a structural CSV error
// aborts the whole import and leaves the active batch, selector and
// catalog untouched. On success the imported batch replaces the
// previous one, the selector flips to csv, and both are persisted
// before Ingest returns.
func (p *Pipeline) Ingest(filename string, content []byte) (*Result, error) {
	filename = filepath.Base(filename)

	if err := os.MkdirAll(p.uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(p.uploadDir, filename), content, 0644); err != nil {
		return nil, fmt.Errorf("failed to save uploaded file: %w", err)
	}

	records, dropped, err := parseRecords(content)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		log.Printf("CSV import %s: dropped %d malformed rows", filename, dropped)
	}

	if err := p.registry.Activate(records); err != nil {
		return nil, err
	}

	entry := datasource.FileEntry{
		Name:        filename,
		Size:        int64(len(content)),
		RecordCount: len(records),
		UploadedAt:  time.Now(),
		Status:      "active",
	}
	if err := p.catalog.Upsert(entry); err != nil {
		return nil, err
	}

	return &Result{
		Filename:    filename,
		RecordCount: len(records),
		Dropped:     dropped,
	}, nil
}

// parseRecords decodes header-keyed rows and normalizes each one.
func parseRecords(content []byte) ([]telecom.Activity, int, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return []telecom.Activity{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse CSV: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	records := []telecom.Activity{}
	dropped := 0
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to parse CSV: %w", err)
		}

		row := make(map[string]string, len(header))
		empty := true
		for i, f := range fields {
			f = strings.TrimSpace(f)
			if f != "" {
				empty = false
			}
			row[header[i]] = f
		}
		if empty {
			continue
		}

		rec, ok := Normalize(row)
		if !ok {
			dropped++
			continue
		}
		records = append(records, *rec)
	}

	return records, dropped, nil
}
