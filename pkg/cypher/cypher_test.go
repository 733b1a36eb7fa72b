package cypher_test

import (
	"testing"

	"github.com/kittclouds/graphrag/internal/store"
	"github.com/kittclouds/graphrag/pkg/cypher"
	"github.com/kittclouds/graphrag/pkg/graphtypes"
)

func mustOpen(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *store.Store) {
	t.Helper()
	ada := &graphtypes.Entity{ID: "person_ada", Name: "Ada", Type: graphtypes.TypePerson}
	bob := &graphtypes.Entity{ID: "person_bob", Name: "Bob", Type: graphtypes.TypePerson}
	acme := &graphtypes.Entity{ID: "organization_acme", Name: "Acme", Type: graphtypes.TypeOrganization}
	for _, e := range []*graphtypes.Entity{ada, bob, acme} {
		if err := s.AddEntity(e); err != nil {
			t.Fatalf("AddEntity: %v", err)
		}
	}
	for _, personID := range []string{"person_ada", "person_bob"} {
		rel := &graphtypes.Relationship{
			ID:       graphtypes.DeriveRelationshipID(personID, graphtypes.RelWorksAt, acme.ID),
			SourceID: personID, TargetID: acme.ID, Type: graphtypes.RelWorksAt, Weight: 1,
		}
		if err := s.AddRelationship(rel); err != nil {
			t.Fatalf("AddRelationship: %v", err)
		}
	}
}

func TestParseAndExecuteSimpleMatch(t *testing.T) {
	s := mustOpen(t)
	seed(t, s)

	q, err := cypher.Parse(`MATCH (p:PERSON) RETURN p`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := cypher.Execute(q, s)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(res.Rows))
	}
}

func TestExecuteWithRelationshipHop(t *testing.T) {
	s := mustOpen(t)
	seed(t, s)

	q, err := cypher.Parse(`MATCH (p:PERSON)-[:WORKS_AT]->(o:ORGANIZATION) WHERE o.name = "Acme" RETURN p.name AS name ORDER BY p.name ASC`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := cypher.Execute(q, s)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("rows = %d, want 2: %+v", len(res.Rows), res.Rows)
	}
	if res.Rows[0]["name"] != "Ada" || res.Rows[1]["name"] != "Bob" {
		t.Errorf("expected Ada before Bob, got %+v", res.Rows)
	}
}

func TestExecuteLimit(t *testing.T) {
	s := mustOpen(t)
	seed(t, s)

	q, err := cypher.Parse(`MATCH (p:PERSON) RETURN p LIMIT 1`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := cypher.Execute(q, s)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(res.Rows))
	}
}

func TestParseErrorCarriesPosition(t *testing.T) {
	_, err := cypher.Parse(`MATCH (p PERSON) RETURN p`)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	pe, ok := err.(*cypher.ParseError)
	if !ok {
		t.Fatalf("error type = %T, want *cypher.ParseError", err)
	}
	if pe.Position <= 0 {
		t.Errorf("Position = %d, want > 0", pe.Position)
	}
}

func TestEntityIDsCollectsBoundEntities(t *testing.T) {
	s := mustOpen(t)
	seed(t, s)

	q, err := cypher.Parse(`MATCH (p:PERSON) RETURN p`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := cypher.Execute(q, s)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	ids := res.EntityIDs()
	if len(ids) != 2 {
		t.Fatalf("EntityIDs = %v, want 2 entries", ids)
	}
}
