package parser

import (
	"strings"
	"testing"
)

func TestTextParser_ParagraphsWithoutHeadings(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\n\n\nThird paragraph.\n   \n"
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tree.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", tree.Title)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected a single preamble node, got %d", len(tree.Children))
	}
	want := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	if got := tree.Children[0].Text; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestTextParser_NumberedHeadings(t *testing.T) {
	input := `Contents
1. Introduction ........ 2
2. Background .......... 3

1. Introduction
Intro body.

1.1. Scope
Scope body.

2. Background
Background body.
`
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(input), "report.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 3 {
		t.Fatalf("expected preamble plus 2 sections, got %d", len(tree.Children))
	}

	pre := tree.Children[0]
	if pre.Title != "" || !strings.Contains(pre.Text, "Background .......... 3") {
		t.Errorf("contents entries should stay body text, got %+v", pre)
	}

	intro := tree.Children[1]
	if intro.Title != "1. Introduction" || intro.Text != "Intro body." {
		t.Errorf("unexpected intro %q / %q", intro.Title, intro.Text)
	}
	if len(intro.Children) != 1 || intro.Children[0].Title != "1.1. Scope" {
		t.Fatalf("expected Scope nested under Introduction, got %+v", intro.Children)
	}
	if tree.Children[2].Title != "2. Background" {
		t.Errorf("expected Background, got %q", tree.Children[2].Title)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", tree.Title)
	}
	if len(tree.Children) != 0 {
		t.Errorf("expected 0 children for empty input, got %d", len(tree.Children))
	}
}

func TestNumberedHeading(t *testing.T) {
	tests := []struct {
		line  string
		depth int
		ok    bool
	}{
		{"1. Introduction", 1, true},
		{"  2.3. Results  ", 2, true},
		{"3.2.1. Detail", 3, true},
		{"1. Introduction ....... 4", 0, false},
		{"1. Preheat the oven.", 0, false},
		{"2. Ingredients:", 0, false},
		{"Introduction", 0, false},
		{"1.", 0, false},
		{"4. " + strings.Repeat("x", 120), 0, false},
	}
	for _, tt := range tests {
		depth, ok := numberedHeading(tt.line)
		if depth != tt.depth || ok != tt.ok {
			t.Errorf("numberedHeading(%q) = %d, %v; want %d, %v", tt.line, depth, ok, tt.depth, tt.ok)
		}
	}
}

func TestCSVParser_GroupsRows(t *testing.T) {
	var b strings.Builder
	b.WriteString("name,qty\n")
	for i := range 25 {
		b.WriteString("item")
		b.WriteString(strings.Repeat("x", i%3))
		b.WriteString(",1\n")
	}
	p := &CSVParser{}
	tree, err := p.Parse(strings.NewReader(b.String()), "stock.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Preamble with the columns, then two row groups.
	if len(tree.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(tree.Children))
	}
	if tree.Children[1].Title != "Rows 2 to 21" || tree.Children[2].Title != "Rows 22 to 26" {
		t.Errorf("unexpected titles %q, %q", tree.Children[1].Title, tree.Children[2].Title)
	}
	if !strings.HasPrefix(tree.Children[1].Text, "name: item, qty: 1") {
		t.Errorf("unexpected row text %q", tree.Children[1].Text)
	}
}

func TestForFile(t *testing.T) {
	if _, err := ForFile("a.PDF", Options{}); err != nil {
		t.Errorf("expected pdf support, got %v", err)
	}
	if _, err := ForFile("a.exe", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if !IsSupportedExtension("notes.Markdown") || IsSupportedExtension("x.zip") {
		t.Error("unexpected extension support")
	}
}
