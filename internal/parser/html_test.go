package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_Sections(t *testing.T) {
	input := `<html><head><title>Guide</title><style>p{}</style></head>
<body>
<nav><a href="#a">skip me</a></nav>
<p>Preface.</p>
<h1>Setup</h1>
<p>Install   the
tool.</p>
<h2>Linux</h2>
<ul><li>apt</li><li>dnf</li></ul>
<h1>Usage</h1>
<script>var x;</script>
<p>Run it.</p>
</body></html>`
	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader(input), "guide.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "Guide" {
		t.Errorf("expected title from <title>, got %q", tree.Title)
	}
	if len(tree.Children) != 3 {
		t.Fatalf("expected preamble plus 2 sections, got %d", len(tree.Children))
	}
	if tree.Children[0].Text != "Preface." {
		t.Errorf("unexpected preamble %q", tree.Children[0].Text)
	}
	setup := tree.Children[1]
	if setup.Title != "Setup" || setup.Text != "Install the tool." {
		t.Errorf("unexpected setup %q / %q", setup.Title, setup.Text)
	}
	if len(setup.Children) != 1 || setup.Children[0].Text != "apt\n\ndnf" {
		t.Errorf("unexpected Linux section %+v", setup.Children)
	}
	if strings.Contains(tree.Children[2].Text, "var x") {
		t.Error("script content leaked into text")
	}
}

func TestHeadingLevel(t *testing.T) {
	for tag, want := range map[string]int{"h1": 1, "h6": 6, "h7": 0, "hr": 0, "p": 0} {
		if got := headingLevel(tag); got != want {
			t.Errorf("headingLevel(%q) = %d, want %d", tag, got, want)
		}
	}
}
