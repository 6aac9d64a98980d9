package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RegionalHealth/RH-Backend/internal/ledger"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const resourcesBucket = "resources"

// SQLite keeps the ledger snapshot as a JSON blob in a single-row bucket
// table.
type SQLite struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (or creates) the snapshot database at path.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "healthops.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

func (s *SQLite) LoadResources(ctx context.Context) ([]ledger.Resource, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, resourcesBucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", resourcesBucket, err)
	}
	var out []ledger.Resource
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", resourcesBucket, err)
	}
	return out, nil
}

func (s *SQLite) SaveResources(ctx context.Context, resources []ledger.Resource) (retErr error) {
	data, err := json.Marshal(resources)
	if err != nil {
		return fmt.Errorf("encode %s: %w", resourcesBucket, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, resourcesBucket, data); err != nil {
		return fmt.Errorf("upsert %s: %w", resourcesBucket, err)
	}
	return tx.Commit()
}

func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Close() error { return s.db.Close() }
