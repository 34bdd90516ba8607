package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docnav/internal/doctree"
	"github.com/dgallion1/docnav/internal/normalize"
	"github.com/dgallion1/docnav/internal/outline"
)

// maxHeadingRunes bounds how long a numbered line may be and still count
// as a heading in unstructured text.
const maxHeadingRunes = 100

// builder nests sections by heading level using a stack. Text goes to the
// innermost open section; text before the first heading becomes an
// untitled preamble.
type builder struct {
	root  *doctree.DocNode
	stack []frame
	text  strings.Builder
	page  int
}

type frame struct {
	node  *doctree.DocNode
	level int
}

func newBuilder() *builder {
	root := &doctree.DocNode{}
	return &builder{root: root, stack: []frame{{node: root}}}
}

// setPage records the source page for nodes opened from now on.
func (b *builder) setPage(p int) { b.page = p }

func (b *builder) heading(level int, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	b.flush()
	n := &doctree.DocNode{Title: title, Page: b.page}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].node
	parent.Children = append(parent.Children, n)
	b.stack = append(b.stack, frame{node: n, level: level})
}

func (b *builder) para(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if b.text.Len() > 0 {
		b.text.WriteString("\n\n")
	}
	b.text.WriteString(t)
}

func (b *builder) flush() {
	t := b.text.String()
	b.text.Reset()
	if t == "" {
		return
	}
	top := b.stack[len(b.stack)-1].node
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
	if top.Page == 0 {
		top.Page = b.page
	}
}

func (b *builder) build(title string) *doctree.DocTree {
	b.flush()
	tree := &doctree.DocTree{Title: title, Children: b.root.Children}
	if b.root.Text != "" {
		pre := &doctree.DocNode{Text: b.root.Text, Page: b.root.Page}
		tree.Children = append([]*doctree.DocNode{pre}, tree.Children...)
	}
	return tree
}

// numberedHeading reports whether a line of plain text reads as a numbered
// section heading such as "2.1. Scope", and returns its depth. Contents
// entries ("2.1. Scope ..... 4") and sentences are rejected.
func numberedHeading(line string) (int, bool) {
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) > maxHeadingRunes {
		return 0, false
	}
	num, title, ok := outline.Split(line)
	if !ok || title == "" || normalize.Label(line) != line {
		return 0, false
	}
	if strings.ContainsAny(title[len(title)-1:], ",;:") {
		return 0, false
	}
	return strings.Count(num, ".") + 1, true
}

// addLines feeds plain text to b, splitting paragraphs on blank lines and
// promoting numbered lines to headings.
func addLines(b *builder, lines []string) {
	var para strings.Builder
	flush := func() {
		b.para(para.String())
		para.Reset()
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if depth, ok := numberedHeading(line); ok {
			flush()
			b.heading(depth, line)
			continue
		}
		if para.Len() > 0 {
			para.WriteString("\n")
		}
		para.WriteString(line)
	}
	flush()
}
