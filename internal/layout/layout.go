// Package layout paginates a parsed document onto a fixed line grid and
// generates its contents page.
package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/mattn/go-runewidth"

	"github.com/dgallion1/docnav/internal/doctree"
	"github.com/dgallion1/docnav/internal/outline"
)

// Options controls pagination.
type Options struct {
	Width        int     // Columns per line.
	LinesPerPage int     // Grid rows per page.
	LineHeight   float64 // Height of one row in document units.
	PageGap      float64 // Space between pages.
}

// DefaultOptions returns the grid used by the service.
func DefaultOptions() Options {
	return Options{
		Width:        72,
		LinesPerPage: 40,
		LineHeight:   20,
		PageGap:      16,
	}
}

// Link is a contents-page annotation pointing at a section heading.
type Link struct {
	Index    int     `json:"index"`
	Label    string  `json:"label"`
	Page     int     `json:"page"`
	Dest     string  `json:"dest"`
	DestPage int     `json:"dest_page"`
	DestTop  float64 `json:"dest_top"`
}

// Line is one rendered row.
type Line struct {
	Text    string
	Page    int
	Top     float64 // Document coordinate of the row's top edge.
	Heading bool
	Link    *Link
}

// Page is a run of lines.
type Page struct {
	Index  int
	Top    float64
	Height float64
	Lines  []Line
}

// Section is a numbered heading in outline order.
type Section struct {
	Number string
	Title  string
	Depth  int
	Dest   string
	Page   int
	Top    float64
}

// Heading is the text rendered for the section, e.g. "2.1. Scope".
func (s Section) Heading() string { return s.Number + ". " + s.Title }

// Document is the paginated result.
type Document struct {
	Title      string
	Pages      []Page
	Links      []Link
	Sections   []Section
	PageHeight float64
	PageGap    float64
}

// Height is the total scrollable height.
func (d *Document) Height() float64 {
	if len(d.Pages) == 0 {
		return 0
	}
	last := d.Pages[len(d.Pages)-1]
	return last.Top + last.Height
}

// PageAt returns the index of the page containing document offset y.
func (d *Document) PageAt(y float64) int {
	stride := d.PageHeight + d.PageGap
	if stride <= 0 || y < 0 {
		return 0
	}
	p := int(y / stride)
	if p >= len(d.Pages) {
		p = len(d.Pages) - 1
	}
	return p
}

// block is a unit of body content before pagination.
type block struct {
	section *Section // non-nil for headings
	text    string
}

// Build lays out tree. The contents pages come first; every top-level
// section starts on a new page.
func Build(tree *doctree.DocTree, opts Options) *Document {
	opts = withDefaults(opts)
	doc := &Document{
		Title:      tree.Title,
		PageHeight: float64(opts.LinesPerPage) * opts.LineHeight,
		PageGap:    opts.PageGap,
	}

	n := &numberer{seen: make(map[string]int)}
	var blocks []block
	for _, child := range tree.Children {
		blocks = n.walk(child, 0, blocks)
	}

	// Contents title and a blank row precede the entries.
	tocPages := (len(n.sections) + 2 + opts.LinesPerPage - 1) / opts.LinesPerPage
	p := &paginator{opts: opts, doc: doc}
	for range tocPages + 1 {
		p.newPage()
	}
	for _, b := range blocks {
		if b.section == nil {
			for i, para := range paragraphs(b.text) {
				if i > 0 {
					p.emit(Line{})
				}
				for _, l := range wrap(para, opts.Width) {
					p.emit(Line{Text: l})
				}
			}
			continue
		}
		switch {
		case b.section.Depth == 0 && p.row > 0:
			p.newPage()
		case p.row >= opts.LinesPerPage-1:
			// Keep the heading with the row that follows it.
			p.newPage()
		case p.row > 0:
			p.emit(Line{})
		}
		b.section.Top = p.emit(Line{Text: b.section.Heading(), Heading: true})
		b.section.Page = p.page
	}
	for _, s := range n.sections {
		doc.Sections = append(doc.Sections, *s)
	}

	writeContents(doc, opts)
	return doc
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.Width < 20 {
		opts.Width = def.Width
	}
	if opts.LinesPerPage < 4 {
		opts.LinesPerPage = def.LinesPerPage
	}
	if opts.LineHeight <= 0 {
		opts.LineHeight = def.LineHeight
	}
	if opts.PageGap < 0 {
		opts.PageGap = def.PageGap
	}
	return opts
}

// numberer assigns outline numbers and unique destination IDs while
// walking the heading tree.
type numberer struct {
	counters []int
	seen     map[string]int
	sections []*Section
}

// walk visits node depth-first. Titled nodes become numbered sections one
// level below their titled ancestor; text becomes body under the current
// section.
func (n *numberer) walk(node *doctree.DocNode, depth int, blocks []block) []block {
	if node.Title != "" {
		sec := &Section{Depth: depth}
		number := n.next(depth)
		if num, title, ok := outline.Split(node.Title); ok {
			sec.Number, sec.Title = num, title
		} else {
			sec.Number, sec.Title = number, strings.TrimSpace(node.Title)
		}
		sec.Dest = n.dest(sec.Heading())
		n.sections = append(n.sections, sec)
		blocks = append(blocks, block{section: sec})
		depth++
	}
	if strings.TrimSpace(node.Text) != "" {
		blocks = append(blocks, block{text: node.Text})
	}
	for _, child := range node.Children {
		blocks = n.walk(child, depth, blocks)
	}
	return blocks
}

// next bumps the counter at depth and renders the full number, e.g. "2.1".
func (n *numberer) next(depth int) string {
	if len(n.counters) > depth+1 {
		n.counters = n.counters[:depth+1]
	}
	for len(n.counters) < depth+1 {
		n.counters = append(n.counters, 0)
	}
	n.counters[depth]++

	parts := make([]string, len(n.counters))
	for i, c := range n.counters {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ".")
}

func (n *numberer) dest(heading string) string {
	id := slug.Make(heading)
	if id == "" {
		id = "section"
	}
	n.seen[id]++
	if c := n.seen[id]; c > 1 {
		id += "-" + strconv.Itoa(c)
	}
	return id
}

type paginator struct {
	opts Options
	doc  *Document
	page int
	row  int
}

func (p *paginator) newPage() {
	idx := len(p.doc.Pages)
	p.doc.Pages = append(p.doc.Pages, Page{
		Index:  idx,
		Top:    float64(idx) * (p.doc.PageHeight + p.doc.PageGap),
		Height: p.doc.PageHeight,
	})
	p.page = idx
	p.row = 0
}

// emit places l on the next row, breaking the page when full, and returns
// its top. Blank rows are dropped at the top of a page.
func (p *paginator) emit(l Line) float64 {
	if p.row >= p.opts.LinesPerPage {
		p.newPage()
	}
	pg := &p.doc.Pages[p.page]
	if l.Text == "" && p.row == 0 {
		return pg.Top
	}
	l.Page = p.page
	l.Top = pg.Top + float64(p.row)*p.opts.LineHeight
	pg.Lines = append(pg.Lines, l)
	p.row++
	return l.Top
}

// writeContents fills the leading pages with one leader-dotted entry per
// section, each carrying a link annotation to the section heading.
func writeContents(doc *Document, opts Options) {
	doc.Links = make([]Link, len(doc.Sections))
	for i, s := range doc.Sections {
		row := i + 2
		label := leader(strings.Repeat("  ", s.Depth)+s.Heading(), strconv.Itoa(s.Page+1), opts.Width)
		doc.Links[i] = Link{
			Index:    i,
			Label:    strings.TrimSpace(label),
			Page:     row / opts.LinesPerPage,
			Dest:     s.Dest,
			DestPage: s.Page,
			DestTop:  s.Top,
		}
	}

	put := func(row int, l Line) {
		pg := &doc.Pages[row/opts.LinesPerPage]
		l.Page = pg.Index
		l.Top = pg.Top + float64(row%opts.LinesPerPage)*opts.LineHeight
		pg.Lines = append(pg.Lines, l)
	}
	put(0, Line{Text: "Contents"})
	for i := range doc.Links {
		put(i+2, Line{Text: doc.Links[i].Label, Link: &doc.Links[i]})
	}
}

// leader joins title and page number with a run of dots filling width
// columns, never fewer than three.
func leader(title, page string, width int) string {
	dots := width - runewidth.StringWidth(title) - runewidth.StringWidth(page) - 2
	if dots < 3 {
		dots = 3
	}
	return fmt.Sprintf("%s %s %s", title, strings.Repeat(".", dots), page)
}

// paragraphs splits text on blank lines.
func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// wrap breaks para into lines no wider than width display columns. Words
// longer than a line are cut.
func wrap(para string, width int) []string {
	var lines []string
	var cur strings.Builder
	curWidth := 0
	for _, w := range strings.Fields(para) {
		ww := runewidth.StringWidth(w)
		for ww > width {
			if curWidth > 0 {
				lines = append(lines, cur.String())
				cur.Reset()
				curWidth = 0
			}
			head := runewidth.Truncate(w, width, "")
			lines = append(lines, head)
			w = w[len(head):]
			ww = runewidth.StringWidth(w)
		}
		if ww == 0 {
			continue
		}
		if curWidth > 0 && curWidth+1+ww > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}
		if curWidth > 0 {
			cur.WriteByte(' ')
			curWidth++
		}
		cur.WriteString(w)
		curWidth += ww
	}
	if curWidth > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
