package summarize

import (
	"context"
	"testing"

	"github.com/kittclouds/graphrag/internal/store"
	"github.com/kittclouds/graphrag/pkg/graphtypes"
	"github.com/kittclouds/graphrag/pkg/llm"
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

func seedLeafCommunity(t *testing.T, s *store.Store) {
	t.Helper()
	ada := &graphtypes.Entity{ID: "person_ada", Name: "Ada", Type: graphtypes.TypePerson, Description: "Mathematician"}
	acme := &graphtypes.Entity{ID: "organization_acme", Name: "Acme", Type: graphtypes.TypeOrganization}
	for _, e := range []*graphtypes.Entity{ada, acme} {
		if err := s.AddEntity(e); err != nil {
			t.Fatalf("AddEntity: %v", err)
		}
	}
	rel := &graphtypes.Relationship{
		ID: graphtypes.DeriveRelationshipID(ada.ID, graphtypes.RelWorksAt, acme.ID),
		SourceID: ada.ID, TargetID: acme.ID, Type: graphtypes.RelWorksAt, Weight: 1,
	}
	if err := s.AddRelationship(rel); err != nil {
		t.Fatalf("AddRelationship: %v", err)
	}
	community := &graphtypes.Community{
		ID:        "community_0_person_ada",
		Level:     0,
		MemberIDs: []string{ada.ID, acme.ID},
	}
	if err := s.AddCommunity(community); err != nil {
		t.Fatalf("AddCommunity: %v", err)
	}
}

func TestRunSummarizesLeafCommunity(t *testing.T) {
	s := mustOpen(t)
	seedLeafCommunity(t, s)

	result, err := Run(context.Background(), s, llm.NewStub(4), llm.NewStub(4), nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Summarized != 1 {
		t.Fatalf("Summarized = %d, want 1", result.Summarized)
	}
	got, err := s.GetCommunity("community_0_person_ada")
	if err != nil {
		t.Fatalf("GetCommunity: %v", err)
	}
	if got.Summary == "" {
		t.Error("expected a non-empty summary")
	}
	if len(got.Embedding) != 4 {
		t.Errorf("Embedding len = %d, want 4", len(got.Embedding))
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	s := mustOpen(t)
	seedLeafCommunity(t, s)

	result, err := Run(context.Background(), s, llm.NewStub(4), llm.NewStub(4), func() bool { return true }, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Cancelled {
		t.Error("expected Cancelled = true")
	}
	if result.Summarized != 0 {
		t.Errorf("Summarized = %d, want 0", result.Summarized)
	}
}

func TestRunProcessesParentAfterChildren(t *testing.T) {
	s := mustOpen(t)
	ada := &graphtypes.Entity{ID: "person_ada", Name: "Ada", Type: graphtypes.TypePerson}
	bob := &graphtypes.Entity{ID: "person_bob", Name: "Bob", Type: graphtypes.TypePerson}
	for _, e := range []*graphtypes.Entity{ada, bob} {
		if err := s.AddEntity(e); err != nil {
			t.Fatalf("AddEntity: %v", err)
		}
	}
	leaf := &graphtypes.Community{ID: "community_0_a", Level: 0, MemberIDs: []string{"person_ada", "person_bob"}}
	if err := s.AddCommunity(leaf); err != nil {
		t.Fatalf("AddCommunity leaf: %v", err)
	}
	parent := &graphtypes.Community{
		ID: "community_1_a", Level: 1,
		MemberIDs: []string{"person_ada", "person_bob"},
		ChildIDs:  []string{"community_0_a"},
	}
	if err := s.AddCommunity(parent); err != nil {
		t.Fatalf("AddCommunity parent: %v", err)
	}

	result, err := Run(context.Background(), s, llm.NewStub(4), llm.NewStub(4), nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Summarized != 2 {
		t.Fatalf("Summarized = %d, want 2", result.Summarized)
	}
	parentGot, err := s.GetCommunity("community_1_a")
	if err != nil || parentGot.Summary == "" {
		t.Fatalf("parent summary missing: %v %v", parentGot, err)
	}
}
