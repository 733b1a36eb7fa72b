package hybrid

import (
	"fmt"
	"regexp"
	"strings"
)

// heuristicRule maps a natural-language query shape to a canned Cypher
// template, filled in with the matched subject. Used only when the caller
// hasn't supplied an explicit Cypher query.
type heuristicRule struct {
	pattern *regexp.Regexp
	build   func(subject string) string
}

var heuristicRules = []heuristicRule{
	{
		pattern: regexp.MustCompile(`(?i)^who knows (.+)$`),
		build: func(subject string) string {
			return fmt.Sprintf(`MATCH (p:PERSON)-[:KNOWS]->(o:PERSON) WHERE o.name = %q RETURN p`, subject)
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)^events? (?:with|involving) (.+)$`),
		build: func(subject string) string {
			return fmt.Sprintf(`MATCH (e:EVENT)-[:ATTENDED_BY]->(p:PERSON) WHERE p.name = %q RETURN e`, subject)
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)^(?:people|person) at (.+)$`),
		build: func(subject string) string {
			return fmt.Sprintf(`MATCH (p:PERSON)-[:WORKS_AT]->(o:ORGANIZATION) WHERE o.name = %q RETURN p`, subject)
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)^all people$`),
		build: func(string) string {
			return `MATCH (p:PERSON) RETURN p`
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)^all events?$`),
		build: func(string) string {
			return `MATCH (e:EVENT) RETURN e`
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)^all organizations?$`),
		build: func(string) string {
			return `MATCH (o:ORGANIZATION) RETURN o`
		},
	},
}

// heuristicCypher matches query against a small table of natural-language
// shapes and returns a canned Cypher query, or "" if nothing matches.
func heuristicCypher(query string) string {
	trimmed := strings.TrimSpace(query)
	for _, rule := range heuristicRules {
		m := rule.pattern.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		subject := ""
		if len(m) > 1 {
			subject = strings.TrimSuffix(strings.TrimSpace(m[1]), "?")
		}
		return rule.build(subject)
	}
	return ""
}

// looksLikeCypher reports whether query is already written as Cypher, per
// spec §4.7 step 2's "starts with MATCH or contains MATCH ... WHERE" test.
func looksLikeCypher(query string) bool {
	upper := strings.ToUpper(strings.TrimSpace(query))
	if strings.HasPrefix(upper, "MATCH") {
		return true
	}
	return strings.Contains(upper, "MATCH") && strings.Contains(upper, "WHERE")
}
