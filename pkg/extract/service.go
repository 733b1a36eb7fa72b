package extract

// Filter applies confidence thresholds and max-count truncation to a
// Result's entities and relationships, per spec's defaults (min_entity
// confidence 0.7, min_relationship confidence 0.6) and near-duplicate
// merging. The order is: confidence filter, dedup, truncate — so truncation
// always operates on the final deduplicated, confidence-passing set.
func Filter(result Result, cfg Config) Result {
	filteredEntities := make([]ExtractedEntity, 0, len(result.Entities))
	for _, e := range result.Entities {
		if e.Confidence >= cfg.MinEntityConfidence {
			filteredEntities = append(filteredEntities, e)
		}
	}
	filteredEntities = MergeNearDuplicates(filteredEntities)
	if cfg.MaxEntities > 0 && len(filteredEntities) > cfg.MaxEntities {
		filteredEntities = filteredEntities[:cfg.MaxEntities]
	}

	filteredRelationships := make([]ExtractedRelationship, 0, len(result.Relationships))
	for _, r := range result.Relationships {
		if r.Confidence >= cfg.MinRelationshipConfidence {
			filteredRelationships = append(filteredRelationships, r)
		}
	}
	filteredRelationships = dedupRelationships(filteredRelationships)
	if cfg.MaxRelationships > 0 && len(filteredRelationships) > cfg.MaxRelationships {
		filteredRelationships = filteredRelationships[:cfg.MaxRelationships]
	}

	return Result{
		Entities:      filteredEntities,
		Relationships: filteredRelationships,
		SourceID:      result.SourceID,
		SourceType:    result.SourceType,
	}
}
