// Package store persists case records between runs, keyed by case_id.
//
// Records are stored with their last classification outcome so a re-run can
// skip cases whose outcome cannot change.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ppiankov/docketsift/internal/model"
)

// ErrNotFound is returned by Get for an unknown case_id
var ErrNotFound = errors.New("case not found")

// Store persists case records
type Store interface {
	// Load returns every stored record, ordered by case_id
	Load(ctx context.Context) ([]model.CaseRecord, error)
	// Save upserts records by case_id. Records not passed are left alone.
	Save(ctx context.Context, records []model.CaseRecord) error
	// Get returns one record or ErrNotFound
	Get(ctx context.Context, caseID string) (*model.CaseRecord, error)
	Close() error
}

// ReasonCounter is implemented by stores that can count outcomes without
// loading every record
type ReasonCounter interface {
	CountByReason(ctx context.Context) (map[model.FilterReason]int, error)
}

// CountByReason tallies stored cases by filter reason. Unclassified cases
// count under "".
func CountByReason(ctx context.Context, st Store) (map[model.FilterReason]int, error) {
	if rc, ok := st.(ReasonCounter); ok {
		return rc.CountByReason(ctx)
	}

	records, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[model.FilterReason]int)
	for _, rec := range records {
		out[rec.FilterReason]++
	}
	return out, nil
}

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Open creates the store selected by configuration
func Open(ctx context.Context, cfg model.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", DriverJSON:
		return NewJSONStore(cfg.Path), nil
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func sortByCaseID(records []model.CaseRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CaseID < records[j].CaseID
	})
}
