package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/docketsift/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS cases (
	case_id       TEXT PRIMARY KEY,
	filtered      INTEGER NOT NULL DEFAULT 0,
	filter_reason TEXT NOT NULL DEFAULT '',
	fingerprint   TEXT NOT NULL DEFAULT '',
	record        TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cases_filter_reason ON cases (filter_reason);
`

// caseRow is one row of the cases table. The outcome columns duplicate
// fields of record so they can be queried without decoding it.
type caseRow struct {
	CaseID       string `db:"case_id"`
	Filtered     bool   `db:"filtered"`
	FilterReason string `db:"filter_reason"`
	Fingerprint  string `db:"fingerprint"`
	Record       string `db:"record"`
	UpdatedAt    string `db:"updated_at"`
}

// SQLiteStore keeps records in a SQLite database
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// OpenSQLite opens or creates the database at path. ":memory:" gives a
// private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps a single writer and a single in-memory database
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Load returns every record ordered by case_id
func (s *SQLiteStore) Load(ctx context.Context) ([]model.CaseRecord, error) {
	var rows []caseRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM cases ORDER BY case_id`); err != nil {
		return nil, fmt.Errorf("select cases: %w", err)
	}

	records := make([]model.CaseRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.decode()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Save upserts records in one transaction
func (s *SQLiteStore) Save(ctx context.Context, records []model.CaseRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO cases (case_id, filtered, filter_reason, fingerprint, record, updated_at)
		VALUES (:case_id, :filtered, :filter_reason, :fingerprint, :record, :updated_at)
		ON CONFLICT(case_id) DO UPDATE SET
			filtered = excluded.filtered,
			filter_reason = excluded.filter_reason,
			fingerprint = excluded.fingerprint,
			record = excluded.record,
			updated_at = excluded.updated_at
	`

	updatedAt := s.now().UTC().Format(time.RFC3339)
	for i := range records {
		data, err := json.Marshal(&records[i])
		if err != nil {
			return fmt.Errorf("marshal %s: %w", records[i].CaseID, err)
		}
		row := caseRow{
			CaseID:       records[i].CaseID,
			Filtered:     records[i].Filtered,
			FilterReason: string(records[i].FilterReason),
			Fingerprint:  records[i].Fingerprint,
			Record:       string(data),
			UpdatedAt:    updatedAt,
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("upsert %s: %w", row.CaseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get returns the record for caseID
func (s *SQLiteStore) Get(ctx context.Context, caseID string) (*model.CaseRecord, error) {
	var row caseRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM cases WHERE case_id = ?`, caseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", caseID, ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", caseID, err)
	}

	rec, err := row.decode()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CountByReason returns how many stored cases carry each filter reason.
// Unclassified cases count under "".
func (s *SQLiteStore) CountByReason(ctx context.Context) (map[model.FilterReason]int, error) {
	var rows []struct {
		Reason string `db:"filter_reason"`
		Count  int    `db:"n"`
	}
	err := s.db.SelectContext(ctx, &rows,
		`SELECT filter_reason, COUNT(*) AS n FROM cases GROUP BY filter_reason ORDER BY filter_reason`)
	if err != nil {
		return nil, fmt.Errorf("count cases: %w", err)
	}

	out := make(map[model.FilterReason]int, len(rows))
	for _, r := range rows {
		out[model.FilterReason(r.Reason)] = r.Count
	}
	return out, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (r caseRow) decode() (model.CaseRecord, error) {
	var rec model.CaseRecord
	if err := json.Unmarshal([]byte(r.Record), &rec); err != nil {
		return model.CaseRecord{}, fmt.Errorf("decode %s: %w", r.CaseID, err)
	}
	return rec, nil
}
