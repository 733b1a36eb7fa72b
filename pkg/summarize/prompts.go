package summarize

import (
	"fmt"
	"strings"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
)

// leafPrompt builds the prompt for a community with no available child
// summaries: entity names, descriptions, and human-readable triples for
// intra-community edges, per spec §4.5.
func leafPrompt(members []*graphtypes.Entity, triples []string, cfg Config) string {
	var sb strings.Builder
	sb.WriteString("You are summarizing a cluster of related entities in a personal knowledge graph.\n")
	sb.WriteString("Write a 2-3 paragraph summary in plain prose describing what connects these entities ")
	sb.WriteString("and what is notable about the group as a whole.\n\n")

	sb.WriteString("=== ENTITIES ===\n")
	n := len(members)
	if cfg.MaxEntitiesPerPrompt > 0 && n > cfg.MaxEntitiesPerPrompt {
		n = cfg.MaxEntitiesPerPrompt
	}
	for _, e := range members[:n] {
		if e.Description != "" {
			sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", e.Name, e.Type, e.Description))
		} else {
			sb.WriteString(fmt.Sprintf("- %s (%s)\n", e.Name, e.Type))
		}
	}

	if len(triples) > 0 {
		sb.WriteString("\n=== RELATIONSHIPS ===\n")
		m := len(triples)
		if cfg.MaxTriplesPerPrompt > 0 && m > cfg.MaxTriplesPerPrompt {
			m = cfg.MaxTriplesPerPrompt
		}
		for _, t := range triples[:m] {
			sb.WriteString("- " + t + "\n")
		}
	}
	return sb.String()
}

// hierarchicalPrompt builds the prompt for a community whose children have
// already been summarized in this run, citing each child's summary as
// context rather than re-describing every leaf entity.
func hierarchicalPrompt(childSummaries []string) string {
	var sb strings.Builder
	sb.WriteString("You are summarizing a higher-level grouping of sub-communities in a personal ")
	sb.WriteString("knowledge graph. Each sub-community below has already been summarized; write a ")
	sb.WriteString("2-3 paragraph summary in plain prose that synthesizes the common themes across them.\n\n")
	sb.WriteString("=== SUB-COMMUNITY SUMMARIES ===\n")
	for i, s := range childSummaries {
		sb.WriteString(fmt.Sprintf("%d. %s\n\n", i+1, s))
	}
	return sb.String()
}

// buildTriples renders "A -REL-> B" for every relationship whose endpoints
// are both members of the set, deduplicated.
func buildTriples(s Store, memberIDs []string) []string {
	memberSet := make(map[string]bool, len(memberIDs))
	names := make(map[string]string, len(memberIDs))
	for _, id := range memberIDs {
		memberSet[id] = true
		if e, err := s.GetEntity(id); err == nil && e != nil {
			names[id] = e.Name
		}
	}

	seen := make(map[string]bool)
	var triples []string
	for _, id := range memberIDs {
		rels, err := s.ListForEntity(id)
		if err != nil {
			continue
		}
		for _, r := range rels {
			if !memberSet[r.SourceID] || !memberSet[r.TargetID] {
				continue
			}
			key := r.SourceID + "|" + r.Type + "|" + r.TargetID
			if seen[key] {
				continue
			}
			seen[key] = true
			src, dst := names[r.SourceID], names[r.TargetID]
			if src == "" {
				src = r.SourceID
			}
			if dst == "" {
				dst = r.TargetID
			}
			triples = append(triples, fmt.Sprintf("%s -%s-> %s", src, r.Type, dst))
		}
	}
	return triples
}
