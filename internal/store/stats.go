package store

// Stats bundles the counts and metadata spec names for the store's stats
// surface into one call.
type Stats struct {
	EntityCount       int
	RelationshipCount int
	CommunityCount    int
	MaxCommunityLevel int
	Dimension         int
}

// Stats returns the current aggregate counts in one round trip.
func (s *Store) Stats() (Stats, error) {
	ec, err := s.CountEntities()
	if err != nil {
		return Stats{}, err
	}
	rc, err := s.CountRelationships()
	if err != nil {
		return Stats{}, err
	}
	cc, err := s.CountCommunities()
	if err != nil {
		return Stats{}, err
	}
	maxLevel, err := s.MaxCommunityLevel()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		EntityCount:       ec,
		RelationshipCount: rc,
		CommunityCount:    cc,
		MaxCommunityLevel: maxLevel,
		Dimension:         s.Dimension(),
	}, nil
}
