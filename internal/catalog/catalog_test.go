package catalog

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	c, err := Parse("Massage Therapy\n\n  Facial Treatment  \nHair Styling\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []string{"Massage Therapy", "Facial Treatment", "Hair Styling"}
	got := c.Services()
	if len(got) != len(want) {
		t.Fatalf("Services() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Services()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseEmpty(t *testing.T) {
	for _, text := range []string{"", "\n\n", "   \n  "} {
		if _, err := Parse(text); !errors.Is(err, ErrEmptyCatalog) {
			t.Errorf("Parse(%q) error = %v, want ErrEmptyCatalog", text, err)
		}
	}
}

func TestBulletListSorted(t *testing.T) {
	c, err := Parse("Nail Care\nFacial Treatment\nMassage Therapy")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := "- Facial Treatment\n- Massage Therapy\n- Nail Care"
	if got := c.BulletList(); got != want {
		t.Errorf("BulletList() = %q, want %q", got, want)
	}
}

func TestServicesReturnsCopy(t *testing.T) {
	c, _ := Parse("Massage Therapy\nFacial Treatment")
	s := c.Services()
	s[0] = "mutated"
	if c.Services()[0] != "Massage Therapy" {
		t.Error("Services() exposed internal slice")
	}
}

func TestResolveExactAnyCase(t *testing.T) {
	c, _ := Parse("Massage Therapy\nFacial Treatment\nHair Styling")
	for _, input := range []string{"Massage Therapy", "massage therapy", "MASSAGE THERAPY", "  massage therapy  "} {
		res := c.Resolve(input)
		if !res.Resolved() || res.Service != "Massage Therapy" {
			t.Errorf("Resolve(%q) = %+v, want Massage Therapy", input, res)
		}
	}
}

func TestResolveSubstringBothDirections(t *testing.T) {
	c, _ := Parse("Massage Therapy\nFacial Treatment")

	// Utterance contained in entry.
	if res := c.Resolve("massage"); res.Service != "Massage Therapy" {
		t.Errorf("Resolve(massage) = %+v", res)
	}
	// Entry contained in utterance.
	if res := c.Resolve("a relaxing facial treatment please"); res.Service != "Facial Treatment" {
		t.Errorf("Resolve(long utterance) = %+v", res)
	}
}

func TestResolveFuzzy(t *testing.T) {
	c, _ := Parse("Massage Therapy\nFacial Treatment")
	res := c.Resolve("massage theraphy")
	if res.Service != "Massage Therapy" {
		t.Errorf("Resolve(misspelling) = %+v, want fuzzy match", res)
	}
}

func TestResolveBelowThresholdRejectsWithCatalog(t *testing.T) {
	c, _ := Parse("Massage Therapy\nFacial Treatment")
	res := c.Resolve("quantum flux calibration")
	if res.Resolved() {
		t.Fatalf("Resolve() = %+v, want rejection", res)
	}
	for _, entry := range []string{"- Facial Treatment", "- Massage Therapy"} {
		if !strings.Contains(res.Rejection, entry) {
			t.Errorf("rejection missing %q: %q", entry, res.Rejection)
		}
	}
	if !strings.Contains(res.Rejection, "Which service would you like to book?") {
		t.Errorf("rejection missing re-prompt: %q", res.Rejection)
	}
}

func TestResolveCanonicalSpellingReturned(t *testing.T) {
	// The canonical catalog spelling comes back, never the raw utterance.
	c, _ := Parse("Massage Therapy")
	if res := c.Resolve("massage therapy"); res.Service != "Massage Therapy" {
		t.Errorf("Resolve() = %q, want canonical spelling", res.Service)
	}
}
