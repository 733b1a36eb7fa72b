package store

import (
	"encoding/json"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
)

// exportData is the whole-database serialization shape: every entity,
// relationship, and community (with its members), plus the detected
// dimension. Import does not read the dimension: the vec0 tables are
// recreated at the right width by the first re-inserted embedding.
type exportData struct {
	Dimension     int                        `json:"dimension"`
	Entities      []*graphtypes.Entity       `json:"entities"`
	Relationships []*graphtypes.Relationship `json:"relationships"`
	Communities   []*graphtypes.Community    `json:"communities"`
}

// Export serializes the entire store to a single JSON blob, for the
// on-device "ship the whole store as one file" sync path.
func (s *Store) Export() ([]byte, error) {
	entities, err := s.ListByTypeWithEmbeddings("")
	if err != nil {
		return nil, err
	}
	relationships, err := s.ListAllRelationships()
	if err != nil {
		return nil, err
	}

	maxLevel, err := s.MaxCommunityLevel()
	if err != nil {
		return nil, err
	}
	var communities []*graphtypes.Community
	for level := 0; level <= maxLevel; level++ {
		cs, err := s.ListByLevel(level)
		if err != nil {
			return nil, err
		}
		communities = append(communities, cs...)
	}

	data := exportData{
		Dimension:     s.Dimension(),
		Entities:      entities,
		Relationships: relationships,
		Communities:   communities,
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, opErr("Query", err)
	}
	return b, nil
}

// Import clears the store and re-inserts from a previously exported blob.
func (s *Store) Import(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var d exportData
	if err := json.Unmarshal(data, &d); err != nil {
		return opErr("Insert", err)
	}
	if err := s.Clear(); err != nil {
		return err
	}
	for _, e := range d.Entities {
		if err := s.AddEntity(e); err != nil {
			return err
		}
	}
	for _, r := range d.Relationships {
		if err := s.AddRelationship(r); err != nil {
			return err
		}
	}
	for _, c := range d.Communities {
		if err := s.AddCommunity(c); err != nil {
			return err
		}
	}
	return nil
}
