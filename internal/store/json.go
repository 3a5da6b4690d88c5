package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ppiankov/docketsift/internal/model"
)

// JSONStore keeps all records in one JSON file
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONStore creates a store backed by the file at path. The file is
// created on first save.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads every record. A missing file is an empty store.
func (s *JSONStore) Load(ctx context.Context) ([]model.CaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *JSONStore) load(ctx context.Context) ([]model.CaseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.CaseRecord{}, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}

	var records []model.CaseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", s.path, err)
	}
	sortByCaseID(records)
	return records, nil
}

// Save upserts records and rewrites the file atomically
func (s *JSONStore) Save(ctx context.Context, records []model.CaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]int, len(existing))
	for i, rec := range existing {
		byID[rec.CaseID] = i
	}
	for _, rec := range records {
		if i, ok := byID[rec.CaseID]; ok {
			existing[i] = rec
			continue
		}
		byID[rec.CaseID] = len(existing)
		existing = append(existing, rec)
	}
	sortByCaseID(existing)

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	return writeFileAtomic(s.path, data)
}

// Get returns the record for caseID
func (s *JSONStore) Get(ctx context.Context, caseID string) (*model.CaseRecord, error) {
	records, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].CaseID == caseID {
			return &records[i], nil
		}
	}
	return nil, fmt.Errorf("%s: %w", caseID, ErrNotFound)
}

// Close is a no-op; every save is already on disk
func (s *JSONStore) Close() error {
	return nil
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it over the target
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
