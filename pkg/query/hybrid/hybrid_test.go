package hybrid_test

import (
	"context"
	"testing"

	"github.com/kittclouds/graphrag/internal/store"
	"github.com/kittclouds/graphrag/pkg/graphtypes"
	"github.com/kittclouds/graphrag/pkg/llm"
	"github.com/kittclouds/graphrag/pkg/query/hybrid"
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

func seedGraph(t *testing.T, s *store.Store, embedder llm.Embedder) {
	t.Helper()
	ctx := context.Background()
	entities := []*graphtypes.Entity{
		{ID: "person_ada", Name: "Ada", Type: graphtypes.TypePerson, Description: "a mathematician"},
		{ID: "organization_acme", Name: "Acme", Type: graphtypes.TypeOrganization, Description: "a company"},
	}
	for _, e := range entities {
		vec, err := embedder.Embed(ctx, e.Name+" "+e.Description)
		if err != nil {
			t.Fatalf("Embed: %v", err)
		}
		e.Embedding = vec
		if err := s.AddEntity(e); err != nil {
			t.Fatalf("AddEntity: %v", err)
		}
	}
	rel := &graphtypes.Relationship{
		ID: graphtypes.DeriveRelationshipID("person_ada", graphtypes.RelWorksAt, "organization_acme"),
		SourceID: "person_ada", TargetID: "organization_acme", Type: graphtypes.RelWorksAt, Weight: 1,
	}
	if err := s.AddRelationship(rel); err != nil {
		t.Fatalf("AddRelationship: %v", err)
	}
}

func TestQueryFusesEmbeddingAndCypherResults(t *testing.T) {
	s := mustOpen(t)
	embedder := llm.NewStub(4)
	seedGraph(t, s, embedder)

	eng := hybrid.New(s, embedder, hybrid.DefaultConfig())
	res, err := eng.Query(context.Background(), hybrid.Request{
		Query:       "who works at Acme",
		CypherQuery: `MATCH (p:PERSON)-[:WORKS_AT]->(o:ORGANIZATION) WHERE o.name = "Acme" RETURN p`,
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !res.UsedCypher {
		t.Error("expected UsedCypher to be true")
	}
	if len(res.Entities) == 0 {
		t.Fatal("expected at least one fused entity")
	}
	found := false
	for _, e := range res.Entities {
		if e.ID == "person_ada" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected person_ada among fused entities, got %+v", res.Entities)
	}
	if res.Context == "" {
		t.Error("expected a non-empty context string")
	}
}

func TestQueryFallsBackOnCypherParseError(t *testing.T) {
	s := mustOpen(t)
	embedder := llm.NewStub(4)
	seedGraph(t, s, embedder)

	eng := hybrid.New(s, embedder, hybrid.DefaultConfig())
	res, err := eng.Query(context.Background(), hybrid.Request{
		Query:       "Ada",
		CypherQuery: `MATCH (p PERSON) RETURN p`,
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.CypherError == "" {
		t.Error("expected a recorded CypherError")
	}
	if len(res.Entities) == 0 {
		t.Error("expected embedding-only retrieval to still return entities")
	}
}

func TestQueryWithAnswerGeneratesText(t *testing.T) {
	s := mustOpen(t)
	embedder := llm.NewStub(4)
	seedGraph(t, s, embedder)

	eng := hybrid.New(s, embedder, hybrid.DefaultConfig())
	res, err := eng.QueryWithAnswer(context.Background(), hybrid.Request{Query: "Ada"}, embedder)
	if err != nil {
		t.Fatalf("QueryWithAnswer: %v", err)
	}
	if res.Answer == "" {
		t.Error("expected a generated answer")
	}
}

func TestHeuristicCypherMatchesKnownShapes(t *testing.T) {
	s := mustOpen(t)
	embedder := llm.NewStub(4)
	seedGraph(t, s, embedder)

	eng := hybrid.New(s, embedder, hybrid.DefaultConfig())
	res, err := eng.Query(context.Background(), hybrid.Request{Query: "people at Acme"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !res.UsedCypher {
		t.Error("expected the heuristic table to produce a Cypher query")
	}
}
