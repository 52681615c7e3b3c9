package models

import "testing"

func TestParseReason(t *testing.T) {
	for _, r := range Reasons {
		got, err := ParseReason(string(r))
		if err != nil {
			t.Fatalf("ParseReason(%q): %v", r, err)
		}
		if got != r {
			t.Fatalf("expected %q, got %q", r, got)
		}
	}

	if _, err := ParseReason("too_noisy"); err == nil {
		t.Fatalf("expected error for unknown reason")
	}
}

func TestReasonLabels(t *testing.T) {
	if len(Reasons) != 5 {
		t.Fatalf("expected 5 reasons, got %d", len(Reasons))
	}
	if ReasonLackOfFurniture.Label() != "Lack of Furniture" {
		t.Fatalf("unexpected label %q", ReasonLackOfFurniture.Label())
	}
	if Reason("bogus").Valid() {
		t.Fatalf("bogus reason should not be valid")
	}
}

func TestRejectReinstateClearsInteresting(t *testing.T) {
	n := NewListing{URL: "u", Source: "SiteA", Name: "Flat 1", Interesting: true}

	r := n.Reject(ReasonSold)
	if r.Reason != ReasonSold || r.URL != "u" {
		t.Fatalf("unexpected rejected listing %+v", r)
	}

	back := r.Reinstate()
	if back.Interesting {
		t.Fatalf("reinstated listing should not be interesting")
	}
	if back.Source != "SiteA" || back.Name != "Flat 1" {
		t.Fatalf("unexpected reinstated listing %+v", back)
	}
}
