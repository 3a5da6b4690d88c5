package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ppiankov/docketsift/internal/model"
	"github.com/ppiankov/docketsift/internal/store"
)

// ImportStats summarizes an import
type ImportStats struct {
	Read      int // Records read from the supplier files
	New       int // Case ids not previously stored
	Updated   int // Stored cases whose classification inputs changed
	Unchanged int // Stored cases whose outcome was kept
	Total     int // Records in the store afterwards
}

// ReadSupplierFile reads supplier records from a JSON file holding either
// an array of records or a single record
func ReadSupplierFile(path string) ([]model.CaseRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '{' {
		var rec model.CaseRecord
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return []model.CaseRecord{rec}, nil
	}

	var records []model.CaseRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

// Import normalizes supplier records and merges them into the store.
// Records without a case id are dropped.
func (p *Pipeline) Import(ctx context.Context, incoming []model.CaseRecord) (*ImportStats, error) {
	stats := &ImportStats{Read: len(incoming)}

	existing, err := p.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	prev := make(map[string]model.CaseRecord, len(existing))
	for _, rec := range existing {
		prev[rec.CaseID] = rec
	}

	normalized := make([]model.CaseRecord, 0, len(incoming))
	for _, rec := range incoming {
		p.rules.Normalize(&rec)
		if rec.CaseID == "" {
			p.logger.Warn("Dropping supplier record without case_id")
			continue
		}
		normalized = append(normalized, rec)
	}

	merged := store.Merge(existing, normalized)
	byID := make(map[string]model.CaseRecord, len(merged))
	for _, rec := range merged {
		byID[rec.CaseID] = rec
	}

	toSave := make([]model.CaseRecord, 0, len(normalized))
	saved := make(map[string]bool, len(normalized))
	for _, rec := range normalized {
		if saved[rec.CaseID] {
			continue
		}
		saved[rec.CaseID] = true

		m := byID[rec.CaseID]
		old, ok := prev[rec.CaseID]
		switch {
		case !ok:
			stats.New++
		case old.Fingerprint != "" && m.Fingerprint == old.Fingerprint:
			stats.Unchanged++
		default:
			stats.Updated++
		}
		toSave = append(toSave, m)
	}

	if err := p.store.Save(ctx, toSave); err != nil {
		return nil, fmt.Errorf("save records: %w", err)
	}
	stats.Total = len(merged)

	p.logger.Info("Imported supplier records",
		zap.Int("read", stats.Read),
		zap.Int("new", stats.New),
		zap.Int("updated", stats.Updated),
		zap.Int("unchanged", stats.Unchanged),
	)
	return stats, nil
}
