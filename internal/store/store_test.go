package store

import (
	"errors"
	"testing"
	"time"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
)

func mustOpen(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEntityUpsertIsIdempotent(t *testing.T) {
	s := mustOpen(t)
	e := &graphtypes.Entity{
		ID:           "person_ada_lovelace",
		Name:         "Ada Lovelace",
		Type:         graphtypes.TypePerson,
		CreatedAt:    1,
		LastModified: 1,
	}
	if err := s.AddEntity(e); err != nil {
		t.Fatalf("AddEntity: %v", err)
	}
	if err := s.AddEntity(e); err != nil {
		t.Fatalf("AddEntity (second): %v", err)
	}
	n, err := s.CountEntities()
	if err != nil {
		t.Fatalf("CountEntities: %v", err)
	}
	if n != 1 {
		t.Fatalf("CountEntities = %d, want 1", n)
	}
}

func TestEntityEmbeddingRoundTrip(t *testing.T) {
	s := mustOpen(t)
	e := &graphtypes.Entity{
		ID:        "person_bob",
		Name:      "Bob",
		Type:      graphtypes.TypePerson,
		Embedding: []float32{0.1, 0.2, 0.3},
	}
	if err := s.AddEntity(e); err != nil {
		t.Fatalf("AddEntity: %v", err)
	}
	got, err := s.GetEntity(e.ID)
	if err != nil {
		t.Fatalf("GetEntity: %v", err)
	}
	if got == nil {
		t.Fatal("GetEntity returned nil")
	}
	if len(got.Embedding) != 3 {
		t.Fatalf("embedding length = %d, want 3", len(got.Embedding))
	}
	for i, v := range []float32{0.1, 0.2, 0.3} {
		if got.Embedding[i] != v {
			t.Errorf("embedding[%d] = %v, want %v", i, got.Embedding[i], v)
		}
	}
}

func TestDimensionMismatch(t *testing.T) {
	s := mustOpen(t)
	first := &graphtypes.Entity{ID: "a", Name: "A", Type: graphtypes.TypePerson, Embedding: []float32{1, 2, 3}}
	if err := s.AddEntity(first); err != nil {
		t.Fatalf("AddEntity: %v", err)
	}
	second := &graphtypes.Entity{ID: "b", Name: "B", Type: graphtypes.TypePerson, Embedding: []float32{1, 2}}
	err := s.AddEntity(second)
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	var dimErr *DimensionMismatchError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected *DimensionMismatchError, got %T: %v", err, err)
	}
	if dimErr.Expected != 3 || dimErr.Actual != 2 {
		t.Errorf("got Expected=%d Actual=%d, want 3,2", dimErr.Expected, dimErr.Actual)
	}
}

func TestDeleteEntityCascades(t *testing.T) {
	s := mustOpen(t)
	a := &graphtypes.Entity{ID: "a", Name: "A", Type: graphtypes.TypePerson}
	b := &graphtypes.Entity{ID: "b", Name: "B", Type: graphtypes.TypePerson}
	for _, e := range []*graphtypes.Entity{a, b} {
		if err := s.AddEntity(e); err != nil {
			t.Fatalf("AddEntity: %v", err)
		}
	}
	rel := &graphtypes.Relationship{ID: "a_KNOWS_b", SourceID: "a", TargetID: "b", Type: graphtypes.RelKnows, Weight: 1}
	if err := s.AddRelationship(rel); err != nil {
		t.Fatalf("AddRelationship: %v", err)
	}
	community := &graphtypes.Community{ID: "community_0_a", Level: 0, MemberIDs: []string{"a", "b"}}
	if err := s.AddCommunity(community); err != nil {
		t.Fatalf("AddCommunity: %v", err)
	}

	if err := s.DeleteEntity("a"); err != nil {
		t.Fatalf("DeleteEntity: %v", err)
	}

	rels, err := s.ListForEntity("b")
	if err != nil {
		t.Fatalf("ListForEntity: %v", err)
	}
	if len(rels) != 0 {
		t.Errorf("expected no relationships incident on b after deleting a, got %d", len(rels))
	}

	got, err := s.GetCommunity("community_0_a")
	if err != nil {
		t.Fatalf("GetCommunity: %v", err)
	}
	for _, id := range got.MemberIDs {
		if id == "a" {
			t.Error("deleted entity a still present in community membership")
		}
	}
}

func TestCommunityMembershipReplace(t *testing.T) {
	s := mustOpen(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := s.AddEntity(&graphtypes.Entity{ID: id, Name: id, Type: graphtypes.TypePerson}); err != nil {
			t.Fatalf("AddEntity: %v", err)
		}
	}
	c := &graphtypes.Community{ID: "community_0_a", Level: 0, MemberIDs: []string{"a", "b"}}
	if err := s.AddCommunity(c); err != nil {
		t.Fatalf("AddCommunity: %v", err)
	}
	c.MemberIDs = []string{"a", "c"}
	if err := s.AddCommunity(c); err != nil {
		t.Fatalf("AddCommunity (replace): %v", err)
	}
	got, err := s.GetCommunity(c.ID)
	if err != nil {
		t.Fatalf("GetCommunity: %v", err)
	}
	want := map[string]bool{"a": true, "c": true}
	if len(got.MemberIDs) != 2 {
		t.Fatalf("member count = %d, want 2", len(got.MemberIDs))
	}
	for _, id := range got.MemberIDs {
		if !want[id] {
			t.Errorf("unexpected member %q after replace", id)
		}
	}
}

func TestNeighborsBFS(t *testing.T) {
	s := mustOpen(t)
	for _, id := range []string{"a", "b", "c", "d"} {
		if err := s.AddEntity(&graphtypes.Entity{ID: id, Name: id, Type: graphtypes.TypePerson}); err != nil {
			t.Fatalf("AddEntity: %v", err)
		}
	}
	edges := []struct{ src, dst string }{{"a", "b"}, {"b", "c"}, {"c", "d"}}
	for _, e := range edges {
		rel := &graphtypes.Relationship{
			ID: e.src + "_KNOWS_" + e.dst, SourceID: e.src, TargetID: e.dst,
			Type: graphtypes.RelKnows, Weight: 1,
		}
		if err := s.AddRelationship(rel); err != nil {
			t.Fatalf("AddRelationship: %v", err)
		}
	}

	depth1, err := s.Neighbors("a", 1, "")
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	if len(depth1) != 1 || depth1[0].ID != "b" {
		t.Fatalf("depth-1 neighbors of a = %v, want [b]", ids(depth1))
	}

	depth2, err := s.Neighbors("a", 2, "")
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	if len(depth2) != 2 {
		t.Fatalf("depth-2 neighbors of a = %v, want 2 entities", ids(depth2))
	}
}

func ids(es []*graphtypes.Entity) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func TestSearchEntitiesOrdersByCosineAndThreshold(t *testing.T) {
	s := mustOpen(t)
	entities := []*graphtypes.Entity{
		{ID: "a", Name: "A", Type: graphtypes.TypePerson, Embedding: []float32{1, 0}},
		{ID: "b", Name: "B", Type: graphtypes.TypePerson, Embedding: []float32{0.9, 0.1}},
		{ID: "c", Name: "C", Type: graphtypes.TypePerson, Embedding: []float32{0, 1}},
	}
	for _, e := range entities {
		if err := s.AddEntity(e); err != nil {
			t.Fatalf("AddEntity: %v", err)
		}
	}
	results, err := s.SearchEntities([]float32{1, 0}, 10, 0.5, graphtypes.TypePerson)
	if err != nil {
		t.Fatalf("SearchEntities: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (c filtered by threshold)", len(results))
	}
	if results[0].Entity.ID != "a" {
		t.Errorf("top result = %s, want a", results[0].Entity.ID)
	}
}

func TestSearchEntitiesDimensionMismatch(t *testing.T) {
	s := mustOpen(t)
	if err := s.AddEntity(&graphtypes.Entity{ID: "a", Name: "A", Type: graphtypes.TypePerson, Embedding: []float32{1, 2, 3}}); err != nil {
		t.Fatalf("AddEntity: %v", err)
	}
	_, err := s.SearchEntities([]float32{1, 2}, 10, 0, "")
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestClearResetsDimension(t *testing.T) {
	s := mustOpen(t)
	if err := s.AddEntity(&graphtypes.Entity{ID: "a", Name: "A", Type: graphtypes.TypePerson, Embedding: []float32{1, 2, 3}}); err != nil {
		t.Fatalf("AddEntity: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if d := s.Dimension(); d != 0 {
		t.Errorf("Dimension after Clear = %d, want 0", d)
	}
	if err := s.AddEntity(&graphtypes.Entity{ID: "a", Name: "A", Type: graphtypes.TypePerson, Embedding: []float32{1, 2}}); err != nil {
		t.Fatalf("AddEntity after clear with new dim: %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := mustOpen(t)
	e := &graphtypes.Entity{ID: "a", Name: "A", Type: graphtypes.TypePerson, Embedding: []float32{1, 2}, CreatedAt: time.Now().Unix()}
	if err := s.AddEntity(e); err != nil {
		t.Fatalf("AddEntity: %v", err)
	}
	rel := &graphtypes.Relationship{ID: "a_KNOWS_a", SourceID: "a", TargetID: "a", Type: graphtypes.RelKnows, Weight: 1}
	if err := s.AddRelationship(rel); err != nil {
		t.Fatalf("AddRelationship: %v", err)
	}

	data, err := s.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	s2 := mustOpen(t)
	if err := s2.Import(data); err != nil {
		t.Fatalf("Import: %v", err)
	}
	got, err := s2.GetEntity("a")
	if err != nil {
		t.Fatalf("GetEntity: %v", err)
	}
	if got == nil || got.Name != "A" {
		t.Fatalf("GetEntity after import = %+v", got)
	}
}

func TestClosedStoreFailsFast(t *testing.T) {
	s := mustOpen(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.AddEntity(&graphtypes.Entity{ID: "a", Name: "A", Type: graphtypes.TypePerson}); err != ErrNotInitialized {
		t.Errorf("AddEntity after Close = %v, want ErrNotInitialized", err)
	}
}
