package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dgallion1/docnav/internal/doctree"
)

// outlineOf flattens a tree into indented section titles.
func outlineOf(tree *doctree.DocTree) []string {
	var out []string
	var walk func([]*doctree.DocNode, string)
	walk = func(nodes []*doctree.DocNode, indent string) {
		for _, n := range nodes {
			title := n.Title
			if title == "" {
				title = "(preamble)"
			}
			out = append(out, indent+title)
			walk(n.Children, indent+"  ")
		}
	}
	walk(tree.Children, "")
	return out
}

func TestMarkdownParser_HeadingHierarchy(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

Section B
---------

Section B content.
`
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", tree.Title)
	}

	want := []string{"Title", "  Section A", "    Subsection A1", "  Section B"}
	if diff := cmp.Diff(want, outlineOf(tree)); diff != "" {
		t.Errorf("outline mismatch (-want +got):\n%s", diff)
	}
	if got := tree.Children[0].Text; got != "Intro text." {
		t.Errorf("expected intro text on the h1, got %q", got)
	}
	if tree.CountSections() != 4 {
		t.Errorf("expected 4 sections, got %d", tree.CountSections())
	}
}

func TestMarkdownParser_Preamble(t *testing.T) {
	input := "Before any heading.\n\n# First\n\nBody.\n"
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "pre.md")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"(preamble)", "First"}, outlineOf(tree)); diff != "" {
		t.Errorf("outline mismatch (-want +got):\n%s", diff)
	}
	if tree.Children[0].Text != "Before any heading." {
		t.Errorf("unexpected preamble %q", tree.Children[0].Text)
	}
}

func TestMarkdownParser_InlineMarkupInHeadings(t *testing.T) {
	input := "# The *quick* `fox`\n\ntext\n"
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "inline.md")
	if err != nil {
		t.Fatal(err)
	}
	if got := tree.Children[0].Title; got != "The quick fox" {
		t.Errorf("expected markup stripped from heading, got %q", got)
	}
}

func TestMarkdownParser_CodeBlocksStayInSection(t *testing.T) {
	input := "# API Reference\n\n## Endpoints\n\n```\nGET /api/views\nPOST /api/views\n```\n\nMore text after code.\n"
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	endpoints := tree.Children[0].Children[0]
	for _, want := range []string{"GET /api/views", "More text after code."} {
		if !strings.Contains(endpoints.Text, want) {
			t.Errorf("expected %q in section text, got %q", want, endpoints.Text)
		}
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(""), "notes.markdown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 0 || tree.Title != "notes" {
		t.Errorf("unexpected tree %+v", tree)
	}
}
