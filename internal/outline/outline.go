// Package outline finds numbered section headings among rendered text nodes.
package outline

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dgallion1/docnav/internal/dom"
)

// HeadingPattern matches a numeric outline prefix such as "3. " or
// "3.2.1. " at the start of a string.
var HeadingPattern = regexp.MustCompile(`^\d+(\.\d+)*\.\s+`)

// IsHeading reports whether text starts with a numeric outline prefix.
func IsHeading(text string) bool {
	return HeadingPattern.MatchString(strings.TrimSpace(text))
}

// Split separates the outline number ("3.2") from the title. ok is false
// when text is not a heading.
func Split(text string) (number, title string, ok bool) {
	text = strings.TrimSpace(text)
	loc := HeadingPattern.FindStringIndex(text)
	if loc == nil {
		return "", text, false
	}
	prefix := strings.TrimSpace(text[:loc[1]])
	return strings.TrimSuffix(prefix, "."), strings.TrimSpace(text[loc[1]:]), true
}

// Heading is a rendered node whose text matches HeadingPattern.
type Heading struct {
	Node   dom.Node
	Number string
	Title  string
	Top    float64
}

// Text returns the heading as rendered.
func (h Heading) Text() string {
	return strings.TrimSpace(h.Node.Text())
}

// Source is anything that can list the currently mounted nodes.
type Source interface {
	QueryAll(pred dom.Predicate) []dom.Node
}

// Locator answers "which section is this node in" against a live source.
type Locator struct {
	src Source
}

func NewLocator(src Source) *Locator {
	return &Locator{src: src}
}

func isHeadingNode(n dom.Node) bool { return IsHeading(n.Text()) }

// scan returns the current headings in scan (render) order.
func (l *Locator) scan() []Heading {
	nodes := l.src.QueryAll(isHeadingNode)
	out := make([]Heading, 0, len(nodes))
	for _, n := range nodes {
		num, title, _ := Split(n.Text())
		out = append(out, Heading{Node: n, Number: num, Title: title, Top: n.BoundingTop()})
	}
	return out
}

// Headings lists the mounted headings ordered by vertical position.
func (l *Locator) Headings() []Heading {
	hs := l.scan()
	sort.SliceStable(hs, func(i, j int) bool { return hs[i].Top < hs[j].Top })
	return hs
}

// NearestPreceding returns the closest heading at or above node. Equal
// distances resolve to the first heading in scan order. ok is false when no
// heading lies above, e.g. inside front matter.
func (l *Locator) NearestPreceding(node dom.Node) (Heading, bool) {
	return nearest(l.scan(), node.BoundingTop())
}

func nearest(hs []Heading, top float64) (Heading, bool) {
	var best Heading
	found := false
	for _, h := range hs {
		if h.Top > top {
			continue
		}
		if !found || top-h.Top < top-best.Top {
			best = h
			found = true
		}
	}
	return best, found
}

// At returns the section under viewport position y: the mounted text node
// with the greatest top not below y, then its nearest preceding heading.
func (l *Locator) At(y float64) (Heading, bool) {
	var anchor dom.Node
	anchorTop := 0.0
	for _, n := range l.src.QueryAll(nil) {
		top := n.BoundingTop()
		if top > y {
			continue
		}
		if anchor == nil || top > anchorTop {
			anchor, anchorTop = n, top
		}
	}
	if anchor == nil {
		return Heading{}, false
	}
	return nearest(l.scan(), anchorTop)
}
