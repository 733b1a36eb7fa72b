package extract

import (
	"strings"
	"testing"
)

func TestKnownEntitiesHintsMatchesPrefix(t *testing.T) {
	k := NewKnownEntities()
	k.Add("Ada Lovelace", "person_ada_lovelace")
	k.Add("Acme Corp", "organization_acme_corp")

	hints := k.Hints("I spoke with ada about acme yesterday", 10)
	if len(hints) == 0 {
		t.Fatal("expected at least one hint")
	}
	found := map[string]bool{}
	for _, h := range hints {
		found[h] = true
	}
	if !found["ada lovelace"] {
		t.Errorf("expected 'ada lovelace' among hints, got %v", hints)
	}
}

func TestKnownEntitiesHintsRespectsMax(t *testing.T) {
	k := NewKnownEntities()
	k.Add("Alice Anderson", "person_alice")
	k.Add("Alan Baker", "person_alan")
	k.Add("Albert Cole", "person_albert")

	hints := k.Hints("al", 2)
	if len(hints) > 2 {
		t.Errorf("len(hints) = %d, want <= 2", len(hints))
	}
}

func TestBuildPromptWithHintsOmitsSectionWhenNoMatch(t *testing.T) {
	k := NewKnownEntities()
	k.Add("Zara Zhou", "person_zara")
	prompt := BuildPromptWithHints("completely unrelated text", k)
	if strings.Contains(prompt, "KNOWN ENTITIES") {
		t.Error("did not expect a KNOWN ENTITIES section with no matching hints")
	}
}
