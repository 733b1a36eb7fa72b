package platform

import (
	"context"
	"testing"
)

func TestFixtureFetchSinceFiltersAndSorts(t *testing.T) {
	f := NewFixture(
		Record{ID: "b", LastModified: 30},
		Record{ID: "a", LastModified: 10},
		Record{ID: "c", LastModified: 20},
	)
	got, err := f.FetchSince(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("FetchSince: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].ID != "c" || got[1].ID != "b" {
		t.Errorf("got order %v, want [c b]", ids(got))
	}
}

func TestFixturePermissionDeniedReturnsEmpty(t *testing.T) {
	f := &Fixture{Granted: false, Records: []Record{{ID: "a", LastModified: 1}}}
	got, err := f.FetchSince(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("FetchSince: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records with permission denied, want 0", len(got))
	}
}

func TestFixtureRequestPermissionGrants(t *testing.T) {
	f := &Fixture{Granted: false, Records: []Record{{ID: "a", LastModified: 1}}}
	granted, err := f.RequestPermission(context.Background())
	if err != nil || !granted {
		t.Fatalf("RequestPermission = %v, %v", granted, err)
	}
	got, err := f.FetchSince(context.Background(), 0, 0)
	if err != nil || len(got) != 1 {
		t.Fatalf("FetchSince after grant = %v, %v", got, err)
	}
}

func ids(rs []Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
