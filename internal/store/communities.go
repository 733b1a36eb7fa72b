package store

import (
	"database/sql"
	"encoding/json"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
	"github.com/kittclouds/graphrag/pkg/vecutil"
)

// AddCommunity upserts a community and atomically replaces its membership
// rows with c.MemberIDs: add(community, members=M); add(community,
// members=M') leaves exactly M' as members afterward.
func (s *Store) AddCommunity(c *graphtypes.Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotInitialized
	}
	if err := s.ensureDimension(len(c.Embedding)); err != nil {
		return err
	}

	childIDsJSON, err := json.Marshal(c.ChildIDs)
	if err != nil {
		return opErr("Insert", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return opErr("Insert", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO communities (id, level, summary, modularity, parent_id, child_ids)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			level = excluded.level,
			modularity = excluded.modularity,
			parent_id = excluded.parent_id,
			child_ids = excluded.child_ids
	`, c.ID, c.Level, c.Summary, c.Modularity, nullIfEmpty(c.ParentID), string(childIDsJSON)); err != nil {
		return opErr("Insert", err)
	}

	if _, err := tx.Exec(`DELETE FROM entity_communities WHERE community_id = ?`, c.ID); err != nil {
		return opErr("Delete", err)
	}
	for _, eid := range c.MemberIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO entity_communities (entity_id, community_id) VALUES (?, ?)`, eid, c.ID); err != nil {
			return opErr("Insert", err)
		}
	}

	if len(c.Embedding) > 0 {
		blob := vecutil.EncodeToBlob(c.Embedding)
		if _, err := tx.Exec(`INSERT INTO community_vectors (community_id, embedding) VALUES (?, ?)
			ON CONFLICT(community_id) DO UPDATE SET embedding = excluded.embedding`, c.ID, blob); err != nil {
			return opErr("Insert", err)
		}
	}

	return opErr("Insert", tx.Commit())
}

// UpdateSummary writes a community's summary text and embedding, leaving
// membership and hierarchy metadata untouched.
func (s *Store) UpdateSummary(id, text string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotInitialized
	}
	if err := s.ensureDimension(len(embedding)); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return opErr("Update", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE communities SET summary = ? WHERE id = ?`, text, id); err != nil {
		return opErr("Update", err)
	}
	if len(embedding) > 0 {
		blob := vecutil.EncodeToBlob(embedding)
		if _, err := tx.Exec(`INSERT INTO community_vectors (community_id, embedding) VALUES (?, ?)
			ON CONFLICT(community_id) DO UPDATE SET embedding = excluded.embedding`, id, blob); err != nil {
			return opErr("Update", err)
		}
	}
	return opErr("Update", tx.Commit())
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// GetCommunity returns the community with id, including its member ids, or
// nil if none exists.
func (s *Store) GetCommunity(id string) (*graphtypes.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrNotInitialized
	}
	c, err := s.scanCommunityLocked(id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) scanCommunityLocked(id string) (*graphtypes.Community, error) {
	var c graphtypes.Community
	var parentID sql.NullString
	var childIDsJSON string
	err := s.db.QueryRow(`SELECT id, level, summary, modularity, parent_id, child_ids FROM communities WHERE id = ?`, id).
		Scan(&c.ID, &c.Level, &c.Summary, &c.Modularity, &parentID, &childIDsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, opErr("Query", err)
	}
	c.ParentID = parentID.String
	if childIDsJSON != "" {
		_ = json.Unmarshal([]byte(childIDsJSON), &c.ChildIDs)
	}

	rows, err := s.db.Query(`SELECT entity_id FROM entity_communities WHERE community_id = ?`, id)
	if err != nil {
		return nil, opErr("Query", err)
	}
	defer rows.Close()
	for rows.Next() {
		var eid string
		if err := rows.Scan(&eid); err != nil {
			return nil, opErr("Query", err)
		}
		c.MemberIDs = append(c.MemberIDs, eid)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr("Query", err)
	}

	if s.dim > 0 {
		var blob []byte
		err := s.db.QueryRow(`SELECT embedding FROM community_vectors WHERE community_id = ?`, id).Scan(&blob)
		if err != nil && err != sql.ErrNoRows {
			return nil, opErr("Query", err)
		}
		if err == nil {
			v, derr := vecutil.DecodeBlob(blob)
			if derr != nil {
				return nil, opErr("Query", derr)
			}
			c.Embedding = v
		}
	}
	return &c, nil
}

// ListByLevel returns every community at the given level, with members and
// embeddings attached.
func (s *Store) ListByLevel(level int) ([]*graphtypes.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrNotInitialized
	}
	rows, err := s.db.Query(`SELECT id FROM communities WHERE level = ? ORDER BY id`, level)
	if err != nil {
		return nil, opErr("Query", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, opErr("Query", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	var out []*graphtypes.Community
	for _, id := range ids {
		c, err := s.scanCommunityLocked(id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// MaxCommunityLevel returns the highest level present in the communities
// table, or -1 if the table is empty.
func (s *Store) MaxCommunityLevel() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrNotInitialized
	}
	var level sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(level) FROM communities`).Scan(&level); err != nil {
		return 0, opErr("Query", err)
	}
	if !level.Valid {
		return -1, nil
	}
	return int(level.Int64), nil
}

// CountCommunities returns the total number of communities.
func (s *Store) CountCommunities() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrNotInitialized
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM communities`).Scan(&n); err != nil {
		return 0, opErr("Query", err)
	}
	return n, nil
}
