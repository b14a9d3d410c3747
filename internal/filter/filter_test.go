package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/openpermits/permitdash/internal/model"
)

func sampleRecords() []model.PermitRecord {
	return []model.PermitRecord{
		{Description: "New Roof installation", Type: "Residential", Activity: "Alteration"},
		{Description: "Warehouse shell", Comments: "metal ROOF panels", Type: "Commercial", Activity: "New"},
		{Description: "Deck addition", Type: "Residential", Activity: "Addition"},
		{Description: "Tenant upfit", Type: "Commercial", Activity: "Alteration"},
	}
}

func TestApply_EmptyPredicatesReturnInputUnchanged(t *testing.T) {
	records := sampleRecords()
	got := Apply(records, Predicates{})
	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("Expected input unchanged (-want +got):\n%s", diff)
	}
}

func TestApply_TypeMembership(t *testing.T) {
	got := Apply(sampleRecords(), Predicates{Types: []string{"Residential"}})
	if len(got) != 2 {
		t.Fatalf("Expected 2 residential records, got %d", len(got))
	}
	for _, rec := range got {
		if rec.Type != "Residential" {
			t.Errorf("Unexpected type %q in result", rec.Type)
		}
	}
}

func TestApply_Conjunction(t *testing.T) {
	p := Predicates{
		Types:      []string{"Commercial"},
		Activities: []string{"Alteration"},
	}
	got := Apply(sampleRecords(), p)
	if len(got) != 1 || got[0].Description != "Tenant upfit" {
		t.Errorf("Expected only the commercial alteration, got %+v", got)
	}
}

func TestApply_TextCaseInsensitiveAcrossFields(t *testing.T) {
	got := Apply(sampleRecords(), Predicates{Text: "roof"})
	if len(got) != 2 {
		t.Fatalf("Expected 2 matches for %q, got %d", "roof", len(got))
	}
	// One matches via description, the other via comments.
	if got[0].Description != "New Roof installation" {
		t.Errorf("Expected description match first, got %q", got[0].Description)
	}
	if got[1].Comments != "metal ROOF panels" {
		t.Errorf("Expected comments match second, got %q", got[1].Comments)
	}
}

func TestApply_MissingCommentsDoNotMatchOrError(t *testing.T) {
	records := []model.PermitRecord{
		{Description: "plumbing rough-in"},
	}
	got := Apply(records, Predicates{Text: "roof"})
	if len(got) != 0 {
		t.Errorf("Expected no matches, got %d", len(got))
	}
}

func TestApply_PreservesOrderAndInput(t *testing.T) {
	records := sampleRecords()
	got := Apply(records, Predicates{Types: []string{"Residential", "Commercial"}})
	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("Expected order preserved (-want +got):\n%s", diff)
	}
	if &records[0] == &got[0] {
		t.Error("Expected a fresh slice, not the input aliased")
	}
}

func TestTypeOptions_DistinctSorted(t *testing.T) {
	got := TypeOptions(sampleRecords())
	want := []string{"Commercial", "Residential"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TypeOptions (-want +got):\n%s", diff)
	}
}

func TestActivityOptions_SkipsEmptyValues(t *testing.T) {
	records := append(sampleRecords(), model.PermitRecord{Description: "no activity"})
	got := ActivityOptions(records)
	want := []string{"Addition", "Alteration", "New"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ActivityOptions (-want +got):\n%s", diff)
	}
}
