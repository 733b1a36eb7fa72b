package store

import (
	"database/sql"
	"encoding/json"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
	"github.com/kittclouds/graphrag/pkg/vecutil"
)

// AddEntity upserts an entity (overwrite on conflict), atomically including
// its embedding if present. Fails with a DimensionMismatchError if the
// entity's embedding length disagrees with the store's detected dimension.
func (s *Store) AddEntity(e *graphtypes.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotInitialized
	}
	if err := s.ensureDimension(len(e.Embedding)); err != nil {
		return err
	}

	attrsJSON, err := json.Marshal(e.Attributes)
	if err != nil {
		return opErr("Insert", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return opErr("Insert", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO entities (id, name, type, description, attributes, created_at, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			description = excluded.description,
			attributes = excluded.attributes,
			last_modified = excluded.last_modified
	`, e.ID, e.Name, string(e.Type), e.Description, string(attrsJSON), e.CreatedAt, e.LastModified); err != nil {
		return opErr("Insert", err)
	}

	if len(e.Embedding) > 0 {
		blob := vecutil.EncodeToBlob(e.Embedding)
		if _, err := tx.Exec(`INSERT INTO entity_vectors (entity_id, embedding) VALUES (?, ?)
			ON CONFLICT(entity_id) DO UPDATE SET embedding = excluded.embedding`, e.ID, blob); err != nil {
			return opErr("Insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return opErr("Insert", err)
	}
	return nil
}

// GetEntity returns the entity with id, or nil if no such entity exists.
func (s *Store) GetEntity(id string) (*graphtypes.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrNotInitialized
	}
	e, err := s.scanEntityRow(s.db.QueryRow(`
		SELECT id, name, type, description, attributes, created_at, last_modified
		FROM entities WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, opErr("Query", err)
	}
	if err := s.attachEmbeddingLocked(e); err != nil {
		return nil, opErr("Query", err)
	}
	return e, nil
}

func (s *Store) scanEntityRow(row *sql.Row) (*graphtypes.Entity, error) {
	var e graphtypes.Entity
	var typ, attrsJSON string
	if err := row.Scan(&e.ID, &e.Name, &typ, &e.Description, &attrsJSON, &e.CreatedAt, &e.LastModified); err != nil {
		return nil, err
	}
	e.Type = graphtypes.EntityType(typ)
	e.Attributes = map[string]string{}
	if attrsJSON != "" {
		_ = json.Unmarshal([]byte(attrsJSON), &e.Attributes)
	}
	return &e, nil
}

// attachEmbeddingLocked fetches e's embedding from entity_vectors, if any.
// Caller must hold s.mu (read or write).
func (s *Store) attachEmbeddingLocked(e *graphtypes.Entity) error {
	if s.dim == 0 {
		return nil
	}
	var blob []byte
	err := s.db.QueryRow(`SELECT embedding FROM entity_vectors WHERE entity_id = ?`, e.ID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	v, err := vecutil.DecodeBlob(blob)
	if err != nil {
		return err
	}
	e.Embedding = v
	return nil
}

// DeleteEntity removes an entity and, in the same transaction, every
// relationship incident on it and every community-membership row naming it.
func (s *Store) DeleteEntity(id string) error {
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

	if _, err := tx.Exec(`DELETE FROM entity_communities WHERE entity_id = ?`, id); err != nil {
		return opErr("Delete", err)
	}
	if _, err := tx.Exec(`DELETE FROM relationships WHERE source_id = ? OR target_id = ?`, id, id); err != nil {
		return opErr("Delete", err)
	}
	if _, err := tx.Exec(`DELETE FROM entities WHERE id = ?`, id); err != nil {
		return opErr("Delete", err)
	}
	if s.dim > 0 {
		if _, err := tx.Exec(`DELETE FROM entity_vectors WHERE entity_id = ?`, id); err != nil {
			return opErr("Delete", err)
		}
	}
	return opErr("Delete", tx.Commit())
}

// ListByType returns every entity of the given type, without embeddings
// attached (cheap path for traversal/filters that do not need vectors).
func (s *Store) ListByType(entityType graphtypes.EntityType) ([]*graphtypes.Entity, error) {
	return s.listByType(entityType, false)
}

// ListByTypeWithEmbeddings returns every entity of the given type with its
// embedding attached, for use by exhaustive similarity scans
// (SearchEntities) and Export.
func (s *Store) ListByTypeWithEmbeddings(entityType graphtypes.EntityType) ([]*graphtypes.Entity, error) {
	return s.listByType(entityType, true)
}

func (s *Store) listByType(entityType graphtypes.EntityType, withEmbeddings bool) ([]*graphtypes.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrNotInitialized
	}

	var rows *sql.Rows
	var err error
	const q = `SELECT id, name, type, description, attributes, created_at, last_modified FROM entities`
	if entityType == "" {
		rows, err = s.db.Query(q + ` ORDER BY name`)
	} else {
		rows, err = s.db.Query(q+` WHERE type = ? ORDER BY name`, string(entityType))
	}
	if err != nil {
		return nil, opErr("Query", err)
	}
	defer rows.Close()

	var out []*graphtypes.Entity
	for rows.Next() {
		var e graphtypes.Entity
		var typ, attrsJSON string
		if err := rows.Scan(&e.ID, &e.Name, &typ, &e.Description, &attrsJSON, &e.CreatedAt, &e.LastModified); err != nil {
			return nil, opErr("Query", err)
		}
		e.Type = graphtypes.EntityType(typ)
		e.Attributes = map[string]string{}
		if attrsJSON != "" {
			_ = json.Unmarshal([]byte(attrsJSON), &e.Attributes)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr("Query", err)
	}

	if withEmbeddings && s.dim > 0 {
		for _, e := range out {
			if err := s.attachEmbeddingLocked(e); err != nil {
				return nil, opErr("Query", err)
			}
		}
	}
	return out, nil
}

// CountEntities returns the total number of entities.
func (s *Store) CountEntities() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrNotInitialized
	}
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM entities`).Scan(&n)
	if err != nil {
		return 0, opErr("Query", err)
	}
	return n, nil
}
