package outline

import (
	"testing"

	"github.com/dgallion1/docnav/internal/dom"
	"github.com/dgallion1/docnav/internal/dom/domtest"
)

func TestHeadingPattern(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"4. Title", true},
		{"4.2.1. Title", true},
		{"12. Appendix", true},
		{"Title 4.", false},
		{"4 Title", false},
		{"4.2 Title", false},
		{"4.Title", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsHeading(tt.text); got != tt.want {
			t.Errorf("IsHeading(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestSplit(t *testing.T) {
	num, title, ok := Split("2.3. Data model")
	if !ok || num != "2.3" || title != "Data model" {
		t.Errorf("Split = %q, %q, %v", num, title, ok)
	}
	if _, title, ok := Split("Preface"); ok || title != "Preface" {
		t.Errorf("expected non-heading, got %q, %v", title, ok)
	}
}

func TestNearestPreceding(t *testing.T) {
	h0 := &domtest.Node{Content: "1. Intro", Top: 0}
	h50 := &domtest.Node{Content: "2. Scope", Top: 50}
	h120 := &domtest.Node{Content: "3. Design", Top: 120}
	body := &domtest.Node{Content: "some paragraph", Top: 80}
	loc := NewLocator(domtest.NewElement(h0, h50, h120, body))

	got, ok := loc.NearestPreceding(body)
	if !ok {
		t.Fatal("expected a heading")
	}
	if got.Node != dom.Node(h50) {
		t.Errorf("expected heading at 50, got %q at %v", got.Text(), got.Top)
	}
	if got.Number != "2" || got.Title != "Scope" {
		t.Errorf("unexpected split: %q %q", got.Number, got.Title)
	}
}

func TestNearestPreceding_NoneAbove(t *testing.T) {
	front := &domtest.Node{Content: "Copyright notice", Top: 10}
	loc := NewLocator(domtest.NewElement(front, &domtest.Node{Content: "1. Intro", Top: 40}))
	if _, ok := loc.NearestPreceding(front); ok {
		t.Error("expected no heading above front matter")
	}
}

func TestNearestPreceding_TieKeepsScanOrder(t *testing.T) {
	first := &domtest.Node{Content: "1. First", Top: 30}
	second := &domtest.Node{Content: "1. Second", Top: 30}
	body := &domtest.Node{Content: "text", Top: 60}
	loc := NewLocator(domtest.NewElement(first, second, body))

	got, _ := loc.NearestPreceding(body)
	if got.Node != dom.Node(first) {
		t.Errorf("expected first encountered heading, got %q", got.Text())
	}
}

func TestNearestPreceding_SelfIsItsOwnSection(t *testing.T) {
	h := &domtest.Node{Content: "4. Results", Top: 200}
	loc := NewLocator(domtest.NewElement(&domtest.Node{Content: "3. Method", Top: 100}, h))
	got, ok := loc.NearestPreceding(h)
	if !ok || got.Node != dom.Node(h) {
		t.Errorf("expected heading to resolve to itself, got %q", got.Text())
	}
}

func TestHeadings_SortedByPosition(t *testing.T) {
	loc := NewLocator(domtest.NewElement(
		&domtest.Node{Content: "3. C", Top: 300},
		&domtest.Node{Content: "body", Top: 150},
		&domtest.Node{Content: "1. A", Top: 100},
		&domtest.Node{Content: "2. B", Top: 200},
	))
	hs := loc.Headings()
	if len(hs) != 3 {
		t.Fatalf("expected 3 headings, got %d", len(hs))
	}
	for i, want := range []string{"A", "B", "C"} {
		if hs[i].Title != want {
			t.Errorf("heading %d: expected %q, got %q", i, want, hs[i].Title)
		}
	}
}

func TestAt(t *testing.T) {
	loc := NewLocator(domtest.NewElement(
		&domtest.Node{Content: "1. Intro", Top: 0},
		&domtest.Node{Content: "intro text", Top: 20},
		&domtest.Node{Content: "2. Scope", Top: 100},
		&domtest.Node{Content: "scope text", Top: 120},
	))

	got, ok := loc.At(130)
	if !ok || got.Title != "Scope" {
		t.Errorf("At(130) = %q, %v", got.Title, ok)
	}
	got, ok = loc.At(99)
	if !ok || got.Title != "Intro" {
		t.Errorf("At(99) = %q, %v", got.Title, ok)
	}
	if _, ok := loc.At(-5); ok {
		t.Error("expected nothing above the first node")
	}
}
