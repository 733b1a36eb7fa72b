package linkpredict

import "github.com/kittclouds/graphrag/pkg/graphtypes"

// templateRule pairs a (source type, target type) with the relation type
// template inference emits between every such pair present in a batch.
type templateRule struct {
	SourceType graphtypes.EntityType
	TargetType graphtypes.EntityType
	RelType    string
}

// templateRules is the per-data-family rule table from spec §4.3. Rules
// that the direct extractor already emits for structured families (PERSON->
// ORG WORKS_AT, EVENT->LOCATION LOCATED_IN, attendee->EVENT ATTENDED_BY) are
// included here too, since they also apply to entities the LLM extractor
// produces from free text with no direct-extractor counterpart.
var templateRules = []templateRule{
	{graphtypes.TypePerson, graphtypes.TypeOrganization, graphtypes.RelWorksAt},
	{graphtypes.TypeEvent, graphtypes.TypeLocation, graphtypes.RelLocatedIn},
	{graphtypes.TypePerson, graphtypes.TypeEvent, graphtypes.RelAttendedBy},
	{graphtypes.TypeDocument, graphtypes.TypePerson, graphtypes.RelCreatedBy},
	{graphtypes.TypeDocument, graphtypes.TypeProject, graphtypes.RelPartOf},
	{graphtypes.TypeNote, graphtypes.TypeTopic, graphtypes.RelTaggedWith},
}

// TemplateInfer emits every templateRule-matching edge among entities (a
// single extraction batch's resolved entities), with confidence ==
// templateWeight. Store-level "already exists" failures are swallowed per
// link per spec's error-handling policy; the returned count is the number
// of edges successfully upserted.
func TemplateInfer(s Store, entities []*graphtypes.Entity, templateWeight float64, nowMillis int64) int {
	count := 0
	for _, rule := range templateRules {
		for _, source := range entities {
			if source.Type != rule.SourceType {
				continue
			}
			for _, target := range entities {
				if target.Type != rule.TargetType || target.ID == source.ID {
					continue
				}
				rel := &graphtypes.Relationship{
					ID:        graphtypes.DeriveRelationshipID(source.ID, rule.RelType, target.ID),
					SourceID:  source.ID,
					TargetID:  target.ID,
					Type:      rule.RelType,
					Weight:    templateWeight,
					CreatedAt: nowMillis,
				}
				if err := s.AddRelationship(rel); err == nil {
					count++
				}
			}
		}
	}
	return count
}
