package graphtypes

import "testing"

func TestDeriveEntityID(t *testing.T) {
	tests := []struct {
		typ  EntityType
		name string
		want string
	}{
		{TypePerson, "Ada Lovelace", "person_ada_lovelace"},
		{TypeOrganization, "Analytical Engine Co", "organization_analytical_engine_co"},
		{TypeLocation, "Room 42", "location_room_42"},
		{TypePerson, "  Bob!!  ", "person_bob"},
	}
	for _, tt := range tests {
		got := DeriveEntityID(tt.typ, tt.name)
		if got != tt.want {
			t.Errorf("DeriveEntityID(%q, %q) = %q, want %q", tt.typ, tt.name, got, tt.want)
		}
	}
}

func TestDeriveRelationshipID(t *testing.T) {
	got := DeriveRelationshipID("person_ada_lovelace", RelWorksAt, "organization_analytical_engine_co")
	want := "person_ada_lovelace_WORKS_AT_organization_analytical_engine_co"
	if got != want {
		t.Errorf("DeriveRelationshipID = %q, want %q", got, want)
	}
}

func TestDeriveCommunityID(t *testing.T) {
	if got, want := DeriveCommunityID(0, "seed1"), "community_0_seed1"; got != want {
		t.Errorf("DeriveCommunityID = %q, want %q", got, want)
	}
}

func TestSelfRelationFor(t *testing.T) {
	if got := SelfRelationFor(FamilyContact); got != RelKnows {
		t.Errorf("SelfRelationFor(contact) = %q, want %q", got, RelKnows)
	}
}
