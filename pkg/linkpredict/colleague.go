package linkpredict

import "github.com/kittclouds/graphrag/pkg/graphtypes"

// relWorksFor is an alternate spelling of "works at" the LLM extractor may
// produce; colleague inference treats it the same as RelWorksAt.
const relWorksFor = "WORKS_FOR"

// ColleagueInfer finds every organization with two or more people linked by
// WORKS_AT/WORKS_FOR and emits COLLEAGUE_OF between every pair, confidence
// 0.8 * templateWeight.
func ColleagueInfer(s Store, templateWeight float64, nowMillis int64) (int, error) {
	orgs, err := s.ListByType(graphtypes.TypeOrganization)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, org := range orgs {
		edges, err := s.ListForEntity(org.ID)
		if err != nil {
			return count, err
		}
		var people []string
		for _, e := range edges {
			if e.TargetID != org.ID {
				continue
			}
			if e.Type == graphtypes.RelWorksAt || e.Type == relWorksFor {
				people = append(people, e.SourceID)
			}
		}
		if len(people) < 2 {
			continue
		}

		confidence := 0.8 * templateWeight
		for i := 0; i < len(people); i++ {
			for j := i + 1; j < len(people); j++ {
				rel := &graphtypes.Relationship{
					ID:        graphtypes.DeriveRelationshipID(people[i], graphtypes.RelColleagueOf, people[j]),
					SourceID:  people[i],
					TargetID:  people[j],
					Type:      graphtypes.RelColleagueOf,
					Weight:    confidence,
					CreatedAt: nowMillis,
				}
				if err := s.AddRelationship(rel); err == nil {
					count++
				}
			}
		}
	}
	return count, nil
}
