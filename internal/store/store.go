// Package store provides SQLite-backed persistence for the knowledge graph:
// entities, relationships, communities, and their membership, plus
// vector-similarity search and multi-hop traversal over the undirected edge
// view. Uses ncruces/go-sqlite3's pure-Go driver (no cgo) and sqlite-vec's
// vec0 virtual tables for embedding storage, matching the on-device,
// single-binary deployment model the rest of this module targets.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"
)

// Store is the sqlite-backed graph store. Safe for concurrent use: writes
// take the exclusive lock, reads take the shared lock, matching the
// single-writer/concurrent-reader model the pipeline and query engines share
// a store handle under.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	dim    int // detected embedding dimension, 0 until first embedding write
	log    *slog.Logger
	closed bool
}

// Open creates or opens a store at path (use ":memory:" for an ephemeral
// store). Creates the schema idempotently. Fails with a wrapped error on I/O
// failure (spec's DatabaseOpen/TableCreation kinds).
func Open(path string) (*Store, error) {
	return OpenWithLogger(path, slog.Default())
}

// OpenWithLogger is Open with an explicit logger, used by callers (the
// pipeline, the CLI) that want the store's diagnostics folded into their own
// structured log stream.
func OpenWithLogger(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, opErr("DatabaseOpen", err)
	}
	if _, err := db.Exec(baseSchema); err != nil {
		db.Close()
		return nil, opErr("TableCreation", err)
	}
	s := &Store{db: db, log: logger}
	if err := s.loadDetectedDimension(); err != nil {
		db.Close()
		return nil, opErr("TableCreation", err)
	}
	s.log.Info("store opened", "path", path, "detected_dim", s.dim)
	return s, nil
}

func (s *Store) loadDetectedDimension() error {
	row := s.db.QueryRow(`SELECT value FROM store_meta WHERE key = 'embedding_dim'`)
	var v string
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}
	var dim int
	if _, err := fmt.Sscanf(v, "%d", &dim); err != nil {
		return err
	}
	if dim > 0 {
		if _, err := s.db.Exec(vectorTableSchema(dim)); err != nil {
			return err
		}
	}
	s.dim = dim
	return nil
}

// ensureDimension records the store's embedding dimension on first write and
// validates every subsequent write against it; callers hold s.mu already.
func (s *Store) ensureDimension(n int) error {
	if n == 0 {
		return nil
	}
	if s.dim == 0 {
		if _, err := s.db.Exec(vectorTableSchema(n)); err != nil {
			return opErr("TableCreation", err)
		}
		if _, err := s.db.Exec(`INSERT INTO store_meta (key, value) VALUES ('embedding_dim', ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, fmt.Sprintf("%d", n)); err != nil {
			return opErr("Insert", err)
		}
		s.dim = n
		s.log.Info("embedding dimension detected", "dim", n)
		return nil
	}
	if n != s.dim {
		return &DimensionMismatchError{Expected: s.dim, Actual: n}
	}
	return nil
}

// Dimension returns the store's detected embedding dimension, or 0 if no
// embedding has been written yet.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}

// Close releases the underlying connection. All further calls fail with
// ErrNotInitialized.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) checkOpen() error {
	if s.closed {
		return ErrNotInitialized
	}
	return nil
}

// Clear deletes all rows in membership -> communities -> relationships ->
// entities order and resets the detected dimension, matching spec's
// clear() contract. The vec0 tables are dropped and will be recreated lazily
// on the next embedding write.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotInitialized
	}

	tx, err := s.db.Begin()
	if err != nil {
		return opErr("Delete", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`DELETE FROM entity_communities`,
		`DELETE FROM communities`,
		`DELETE FROM relationships`,
		`DELETE FROM entities`,
		`DELETE FROM store_meta WHERE key = 'embedding_dim'`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return opErr("Delete", err)
		}
	}
	if s.dim > 0 {
		if _, err := tx.Exec(`DROP TABLE IF EXISTS entity_vectors`); err != nil {
			return opErr("Delete", err)
		}
		if _, err := tx.Exec(`DROP TABLE IF EXISTS community_vectors`); err != nil {
			return opErr("Delete", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return opErr("Delete", err)
	}
	s.dim = 0
	s.log.Info("store cleared")
	return nil
}
