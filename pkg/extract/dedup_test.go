package extract

import "testing"

func TestMergeNearDuplicatesExactMatch(t *testing.T) {
	in := []ExtractedEntity{
		{Name: "Ada Lovelace", Confidence: 0.6},
		{Name: "ada lovelace", Confidence: 0.9},
	}
	out := MergeNearDuplicates(in)
	if len(out) != 1 {
		t.Fatalf("got %d entities, want 1", len(out))
	}
	if out[0].Confidence != 0.9 {
		t.Errorf("confidence = %v, want max(0.6,0.9)=0.9", out[0].Confidence)
	}
}

func TestMergeNearDuplicatesSubstring(t *testing.T) {
	in := []ExtractedEntity{
		{Name: "Acme Corporation", Confidence: 0.8},
		{Name: "Acme", Confidence: 0.7},
	}
	out := MergeNearDuplicates(in)
	if len(out) != 1 {
		t.Fatalf("got %d entities, want 1 (substring containment)", len(out))
	}
}

func TestMergeNearDuplicatesJaccard(t *testing.T) {
	in := []ExtractedEntity{
		{Name: "Acme of the World", Confidence: 0.8},
		{Name: "Acme World", Confidence: 0.75},
	}
	out := MergeNearDuplicates(in)
	if len(out) != 1 {
		t.Fatalf("got %d entities, want 1 (jaccard >= 0.8 once stopwords are filtered)", len(out))
	}
}

func TestMergeNearDuplicatesDistinctNamesKept(t *testing.T) {
	in := []ExtractedEntity{
		{Name: "Ada Lovelace"},
		{Name: "Charles Babbage"},
	}
	out := MergeNearDuplicates(in)
	if len(out) != 2 {
		t.Fatalf("got %d entities, want 2 distinct", len(out))
	}
}
