package extract

import (
	"testing"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
	"github.com/kittclouds/graphrag/pkg/platform"
)

func TestDirectContactEmitsPersonAndOrg(t *testing.T) {
	rec := platform.Record{ID: "c1", Fields: map[string]any{
		"name":         "Ada Lovelace",
		"organization": "Analytical Engines Ltd",
		"job_title":    "Mathematician",
		"emails":       []any{"ada@example.com"},
	}}
	result, err := Direct(rec, graphtypes.FamilyContact)
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	if len(result.Entities) != 2 {
		t.Fatalf("entities = %+v, want person+org", result.Entities)
	}
	if len(result.Relationships) != 1 || result.Relationships[0].Type != graphtypes.RelWorksAt {
		t.Fatalf("relationships = %+v, want one WORKS_AT", result.Relationships)
	}
}

func TestDirectCalendarEventEmitsAttendeesAndLocation(t *testing.T) {
	rec := platform.Record{ID: "e1", Fields: map[string]any{
		"title":     "Design Review",
		"location":  "Room 404",
		"attendees": []any{"Ada Lovelace", "Charles Babbage"},
	}}
	result, err := Direct(rec, graphtypes.FamilyEvent)
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	if len(result.Entities) != 4 { // event + location + 2 attendees
		t.Fatalf("entities = %+v", result.Entities)
	}
	attended := 0
	for _, r := range result.Relationships {
		if r.Type == graphtypes.RelAttendedBy {
			attended++
		}
	}
	if attended != 2 {
		t.Errorf("attended count = %d, want 2", attended)
	}
}

func TestDirectPhotoFallsBackToCoordinates(t *testing.T) {
	rec := platform.Record{ID: "p1", Fields: map[string]any{
		"id":        "p1",
		"latitude":  37.7749,
		"longitude": -122.4194,
		"created_at": "2024-01-01T00:00:00Z",
	}}
	result, err := Direct(rec, graphtypes.FamilyPhoto)
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	var foundLoc bool
	for _, e := range result.Entities {
		if e.Type == graphtypes.TypeLocation {
			foundLoc = true
			if e.Name != "Location (37.7749, -122.4194)" {
				t.Errorf("location name = %q", e.Name)
			}
		}
	}
	if !foundLoc {
		t.Error("expected a coordinate-derived location entity")
	}
}

func TestDirectPhoneCallKnownContact(t *testing.T) {
	rec := platform.Record{ID: "call1", Fields: map[string]any{
		"contact_name": "Ada Lovelace",
		"timestamp":    "2024-01-01T12:00:00Z",
	}}
	result, err := Direct(rec, graphtypes.FamilyCall)
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	var foundPerson bool
	for _, e := range result.Entities {
		if e.Type == graphtypes.TypePerson && e.Name == "Ada Lovelace" {
			foundPerson = true
		}
	}
	if !foundPerson {
		t.Error("expected person entity for known contact")
	}
}

func TestDirectPhoneCallUnknownNumber(t *testing.T) {
	rec := platform.Record{ID: "call2", Fields: map[string]any{
		"number":    "+15551234",
		"timestamp": "2024-01-01T12:00:00Z",
	}}
	result, err := Direct(rec, graphtypes.FamilyCall)
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	var foundPhone bool
	for _, e := range result.Entities {
		if e.Type == graphtypes.TypePhone {
			foundPhone = true
		}
	}
	if !foundPhone {
		t.Error("expected phone entity for unknown number")
	}
}
