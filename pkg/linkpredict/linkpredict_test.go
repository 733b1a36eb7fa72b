package linkpredict

import (
	"context"
	"testing"
	"time"

	"github.com/kittclouds/graphrag/internal/store"
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

func TestEnsureSelfIsIdempotent(t *testing.T) {
	s := mustOpen(t)
	ctx := context.Background()
	if err := EnsureSelf(ctx, s, nil, 100); err != nil {
		t.Fatalf("EnsureSelf: %v", err)
	}
	if err := EnsureSelf(ctx, s, nil, 200); err != nil {
		t.Fatalf("EnsureSelf (second): %v", err)
	}
	self, err := s.GetEntity(graphtypes.SelfEntityID)
	if err != nil || self == nil {
		t.Fatalf("GetEntity(self) = %v, %v", self, err)
	}
	if self.CreatedAt != 100 {
		t.Errorf("CreatedAt = %d, want 100 (first call wins)", self.CreatedAt)
	}
}

func TestLinkSelfUsesFamilyRelation(t *testing.T) {
	s := mustOpen(t)
	ctx := context.Background()
	if err := EnsureSelf(ctx, s, nil, 1); err != nil {
		t.Fatalf("EnsureSelf: %v", err)
	}
	if err := s.AddEntity(&graphtypes.Entity{ID: "note_x", Name: "x", Type: graphtypes.TypeNote}); err != nil {
		t.Fatalf("AddEntity: %v", err)
	}
	if err := LinkSelf(s, "note_x", graphtypes.FamilyNote, 1); err != nil {
		t.Fatalf("LinkSelf: %v", err)
	}
	rels, err := s.ListForEntity(graphtypes.SelfEntityID)
	if err != nil {
		t.Fatalf("ListForEntity: %v", err)
	}
	if len(rels) != 1 || rels[0].Type != graphtypes.RelWroteNote {
		t.Fatalf("rels = %+v, want one WROTE_NOTE", rels)
	}
}

func TestTemplateInferEmitsMatchingPairs(t *testing.T) {
	s := mustOpen(t)
	entities := []*graphtypes.Entity{
		{ID: "person_ada", Name: "Ada", Type: graphtypes.TypePerson},
		{ID: "organization_acme", Name: "Acme", Type: graphtypes.TypeOrganization},
	}
	for _, e := range entities {
		if err := s.AddEntity(e); err != nil {
			t.Fatalf("AddEntity: %v", err)
		}
	}
	n := TemplateInfer(s, entities, 1.0, 1)
	if n != 1 {
		t.Fatalf("TemplateInfer count = %d, want 1", n)
	}
	rels, err := s.ListForEntity("person_ada")
	if err != nil {
		t.Fatalf("ListForEntity: %v", err)
	}
	if len(rels) != 1 || rels[0].Type != graphtypes.RelWorksAt {
		t.Fatalf("rels = %+v, want one WORKS_AT", rels)
	}
}

func TestCoMentionRequiresMinCount(t *testing.T) {
	s := mustOpen(t)
	for _, id := range []string{"a", "b"} {
		if err := s.AddEntity(&graphtypes.Entity{ID: id, Name: id, Type: graphtypes.TypePerson}); err != nil {
			t.Fatalf("AddEntity: %v", err)
		}
	}
	mentions := []Mention{
		{SourceID: "s1", EntityIDs: []string{"a", "b"}},
	}
	n := CoMention(s, mentions, 2, 0.7, 1)
	if n != 0 {
		t.Fatalf("CoMention count = %d, want 0 (below min_co_occurrence_count)", n)
	}

	mentions = append(mentions, Mention{SourceID: "s2", EntityIDs: []string{"a", "b"}})
	n = CoMention(s, mentions, 2, 0.7, 1)
	if n != 1 {
		t.Fatalf("CoMention count = %d, want 1", n)
	}
	rels, err := s.ListForEntity("a")
	if err != nil {
		t.Fatalf("ListForEntity: %v", err)
	}
	if len(rels) != 1 || rels[0].Type != graphtypes.RelMentionedWith {
		t.Fatalf("rels = %+v, want one MENTIONED_WITH", rels)
	}
	if rels[0].Weight <= 0 || rels[0].Weight > 0.7 {
		t.Errorf("confidence = %v, want in (0, 0.7]", rels[0].Weight)
	}
}

func TestTemporalProximityDecaysWithGap(t *testing.T) {
	s := mustOpen(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := s.AddEntity(&graphtypes.Entity{ID: id, Name: id, Type: graphtypes.TypeEvent}); err != nil {
			t.Fatalf("AddEntity: %v", err)
		}
	}
	items := []TimedItem{
		{EntityID: "a", Timestamp: 0},
		{EntityID: "b", Timestamp: 10 * 60 * 1000},     // 10 min later, within window
		{EntityID: "c", Timestamp: 3 * 60 * 60 * 1000}, // 3h later, outside window
	}
	n := TemporalProximity(s, items, 2*time.Hour, 1)
	if n != 1 {
		t.Fatalf("TemporalProximity count = %d, want 1", n)
	}
}

func TestColleagueInferRequiresTwoPeople(t *testing.T) {
	s := mustOpen(t)
	org := &graphtypes.Entity{ID: "organization_acme", Name: "Acme", Type: graphtypes.TypeOrganization}
	ada := &graphtypes.Entity{ID: "person_ada", Name: "Ada", Type: graphtypes.TypePerson}
	bob := &graphtypes.Entity{ID: "person_bob", Name: "Bob", Type: graphtypes.TypePerson}
	for _, e := range []*graphtypes.Entity{org, ada, bob} {
		if err := s.AddEntity(e); err != nil {
			t.Fatalf("AddEntity: %v", err)
		}
	}
	for _, personID := range []string{"person_ada", "person_bob"} {
		rel := &graphtypes.Relationship{
			ID: graphtypes.DeriveRelationshipID(personID, graphtypes.RelWorksAt, org.ID),
			SourceID: personID, TargetID: org.ID, Type: graphtypes.RelWorksAt, Weight: 1,
		}
		if err := s.AddRelationship(rel); err != nil {
			t.Fatalf("AddRelationship: %v", err)
		}
	}
	n, err := ColleagueInfer(s, 1.0, 1)
	if err != nil {
		t.Fatalf("ColleagueInfer: %v", err)
	}
	if n != 1 {
		t.Fatalf("ColleagueInfer count = %d, want 1", n)
	}
	rels, err := s.ListForEntity("person_ada")
	if err != nil {
		t.Fatalf("ListForEntity: %v", err)
	}
	var foundColleague bool
	for _, r := range rels {
		if r.Type == graphtypes.RelColleagueOf {
			foundColleague = true
			if r.Weight != 0.8 {
				t.Errorf("confidence = %v, want 0.8", r.Weight)
			}
		}
	}
	if !foundColleague {
		t.Error("expected a COLLEAGUE_OF edge")
	}
}
