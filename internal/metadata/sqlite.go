package metadata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS metadata_records (
	item_id TEXT NOT NULL,
	kind    TEXT NOT NULL,
	body    TEXT NOT NULL,
	PRIMARY KEY (item_id, kind)
)`

// SQLiteStore keeps records in a single SQLite table keyed by (item_id, kind).
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite metadata store at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure metadata schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// GetSkip loads the skip marker for id.
func (s *SQLiteStore) GetSkip(ctx context.Context, id string) (SkipMarker, bool, error) {
	var marker SkipMarker
	found, err := s.load(ctx, KindSkip, id, &marker)
	return marker, found, err
}

// GetLabel loads the label record for id.
func (s *SQLiteStore) GetLabel(ctx context.Context, id string) (LabelRecord, bool, error) {
	var label LabelRecord
	found, err := s.load(ctx, KindLabel, id, &label)
	return label, found, err
}

// GetInfo loads the info record for id.
func (s *SQLiteStore) GetInfo(ctx context.Context, id string) (InfoRecord, bool, error) {
	var info InfoRecord
	found, err := s.load(ctx, KindInfo, id, &info)
	return info, found, err
}

// Put upserts one record.
func (s *SQLiteStore) Put(ctx context.Context, kind Kind, id string, record any) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", kind, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO metadata_records (item_id, kind, body) VALUES (?, ?, ?)
		 ON CONFLICT (item_id, kind) DO UPDATE SET body = excluded.body`,
		id, string(kind), string(body))
	if err != nil {
		return storeError(kind, id, err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) load(ctx context.Context, kind Kind, id string, dest any) (bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM metadata_records WHERE item_id = ? AND kind = ?`,
		id, string(kind)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storeError(kind, id, err)
	}
	if err := json.Unmarshal([]byte(body), dest); err != nil {
		return false, storeError(kind, id, fmt.Errorf("decode: %w", err))
	}
	return true, nil
}
