package store

import (
	"database/sql"
	"encoding/json"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
)

// AddRelationship upserts a relationship. At most one row exists per
// (source_id, target_id, type) because callers derive the id deterministically
// (graphtypes.DeriveRelationshipID) and ids conflict-upsert here.
func (s *Store) AddRelationship(r *graphtypes.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotInitialized
	}
	metaJSON, err := json.Marshal(r.Metadata)
	if err != nil {
		return opErr("Insert", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO relationships (id, source_id, target_id, type, weight, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			weight = excluded.weight,
			metadata = excluded.metadata
	`, r.ID, r.SourceID, r.TargetID, r.Type, r.Weight, string(metaJSON), r.CreatedAt)
	if err != nil {
		return opErr("Insert", err)
	}
	return nil
}

// DeleteRelationship removes a relationship by id.
func (s *Store) DeleteRelationship(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotInitialized
	}
	if _, err := s.db.Exec(`DELETE FROM relationships WHERE id = ?`, id); err != nil {
		return opErr("Delete", err)
	}
	return nil
}

// GetRelationship returns the relationship with id, or nil if none exists.
func (s *Store) GetRelationship(id string) (*graphtypes.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrNotInitialized
	}
	r, err := scanRelationshipRow(s.db.QueryRow(`
		SELECT id, source_id, target_id, type, weight, metadata, created_at
		FROM relationships WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, opErr("Query", err)
	}
	return r, nil
}

func scanRelationshipRow(row *sql.Row) (*graphtypes.Relationship, error) {
	var r graphtypes.Relationship
	var metaJSON string
	if err := row.Scan(&r.ID, &r.SourceID, &r.TargetID, &r.Type, &r.Weight, &metaJSON, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Metadata = map[string]string{}
	if metaJSON != "" {
		_ = json.Unmarshal([]byte(metaJSON), &r.Metadata)
	}
	return &r, nil
}

// ListForEntity returns every relationship incident on id, regardless of
// direction (source or target).
func (s *Store) ListForEntity(id string) ([]*graphtypes.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrNotInitialized
	}
	rows, err := s.db.Query(`
		SELECT id, source_id, target_id, type, weight, metadata, created_at
		FROM relationships WHERE source_id = ? OR target_id = ?`, id, id)
	if err != nil {
		return nil, opErr("Query", err)
	}
	defer rows.Close()

	var out []*graphtypes.Relationship
	for rows.Next() {
		var r graphtypes.Relationship
		var metaJSON string
		if err := rows.Scan(&r.ID, &r.SourceID, &r.TargetID, &r.Type, &r.Weight, &metaJSON, &r.CreatedAt); err != nil {
			return nil, opErr("Query", err)
		}
		r.Metadata = map[string]string{}
		if metaJSON != "" {
			_ = json.Unmarshal([]byte(metaJSON), &r.Metadata)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr("Query", err)
	}
	return out, nil
}

// ListAllRelationships returns every relationship row in the store, with no
// filtering by type or by whether its endpoints still exist.
func (s *Store) ListAllRelationships() ([]*graphtypes.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrNotInitialized
	}
	rows, err := s.db.Query(`SELECT id, source_id, target_id, type, weight, metadata, created_at FROM relationships`)
	if err != nil {
		return nil, opErr("Query", err)
	}
	defer rows.Close()

	var out []*graphtypes.Relationship
	for rows.Next() {
		var r graphtypes.Relationship
		var metaJSON string
		if err := rows.Scan(&r.ID, &r.SourceID, &r.TargetID, &r.Type, &r.Weight, &metaJSON, &r.CreatedAt); err != nil {
			return nil, opErr("Query", err)
		}
		r.Metadata = map[string]string{}
		if metaJSON != "" {
			_ = json.Unmarshal([]byte(metaJSON), &r.Metadata)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr("Query", err)
	}
	return out, nil
}

// CountRelationships returns the total number of relationships.
func (s *Store) CountRelationships() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrNotInitialized
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM relationships`).Scan(&n); err != nil {
		return 0, opErr("Query", err)
	}
	return n, nil
}
