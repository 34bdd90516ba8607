// Package resolve picks the rendered node a TOC label refers to.
package resolve

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/dgallion1/docnav/internal/dom"
	"github.com/dgallion1/docnav/internal/normalize"
)

// MatchKind is the tier that produced a candidate.
type MatchKind int

const (
	Exact MatchKind = iota + 1
	Collapsed
	Stripped
	PartialWord
)

func (k MatchKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Collapsed:
		return "collapsed"
	case Stripped:
		return "stripped"
	case PartialWord:
		return "partial_word"
	}
	return "none"
}

// Pick chooses among several candidates of the winning tier, sorted by
// vertical position.
type Pick int

const (
	// PickSecond skips the first occurrence, assumed to be the TOC entry.
	PickSecond Pick = iota
	PickFirst
	PickLast
)

// ParsePick maps "second", "first" or "last" to a Pick.
func ParsePick(s string) (Pick, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "second":
		return PickSecond, nil
	case "first":
		return PickFirst, nil
	case "last":
		return PickLast, nil
	}
	return PickSecond, fmt.Errorf("unknown pick policy %q", s)
}

func (p Pick) String() string {
	switch p {
	case PickFirst:
		return "first"
	case PickLast:
		return "last"
	}
	return "second"
}

// Candidate is a matching node and how it matched.
type Candidate struct {
	Node dom.Node
	Kind MatchKind
	Top  float64
}

// Source lists the currently mounted nodes.
type Source interface {
	QueryAll(pred dom.Predicate) []dom.Node
}

// Resolver matches normalized labels against rendered text.
type Resolver struct {
	src  Source
	pick Pick
}

func New(src Source, pick Pick) *Resolver {
	return &Resolver{src: src, pick: pick}
}

// Resolve returns the best node for label, which must already be
// normalized. ok is false when no tier matches anything.
func (r *Resolver) Resolve(label string) (Candidate, bool) {
	return r.Choose(r.ResolveAll(label))
}

// Choose applies the pick policy to candidates sorted by position.
func (r *Resolver) Choose(cands []Candidate) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}
	return cands[r.index(len(cands))], true
}

func (r *Resolver) index(n int) int {
	switch r.pick {
	case PickFirst:
		return 0
	case PickLast:
		return n - 1
	}
	if n > 1 {
		return 1
	}
	return 0
}

// ResolveAll returns every candidate of the first tier that matches,
// sorted by vertical position. Partial-word candidates are narrowed to
// those sharing the most label words.
func (r *Resolver) ResolveAll(label string) []Candidate {
	m := NewMatcher(label)
	if m == nil {
		return nil
	}
	var (
		out  []Candidate
		best MatchKind
		most int
	)
	for _, n := range r.src.QueryAll(nil) {
		kind, shared := m.score(n.Text())
		if kind == 0 {
			continue
		}
		if best == 0 || kind < best || (kind == best && shared > most) {
			out, best, most = out[:0], kind, shared
		}
		if kind == best && shared == most {
			out = append(out, Candidate{Node: n, Kind: kind, Top: n.BoundingTop()})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Top < out[j].Top })
	return out
}

// Matcher tests rendered text against one normalized label using the
// resolver's tiers. It is not safe for concurrent use.
type Matcher struct {
	exact, collapsed, stripped string
	words                      []string
	fold                       cases.Caser
}

// NewMatcher returns nil for an empty label.
func NewMatcher(label string) *Matcher {
	if label == "" {
		return nil
	}
	m := &Matcher{
		exact:     label,
		collapsed: normalize.CollapseSpace(label),
		stripped:  normalize.StripDotsAndSpace(label),
		fold:      cases.Fold(),
	}
	for _, w := range strings.Fields(label) {
		if utf8.RuneCountInString(w) > 2 {
			m.words = append(m.words, m.fold.String(w))
		}
	}
	return m
}

// Match reports the best tier under which text matches.
func (m *Matcher) Match(text string) (MatchKind, bool) {
	kind, _ := m.score(text)
	return kind, kind != 0
}

// score returns the best matching tier for text, and for PartialWord the
// number of label words it contains. Label words longer than two
// characters are compared case-insensitively.
func (m *Matcher) score(raw string) (MatchKind, int) {
	text := normalize.Label(raw)
	switch {
	case strings.Contains(text, m.exact):
		return Exact, 0
	case m.collapsed != "" && strings.Contains(normalize.CollapseSpace(text), m.collapsed):
		return Collapsed, 0
	case m.stripped != "" && strings.Contains(normalize.StripDotsAndSpace(text), m.stripped):
		return Stripped, 0
	}
	if len(m.words) == 0 {
		return 0, 0
	}
	folded := m.fold.String(text)
	shared := 0
	for _, w := range m.words {
		if strings.Contains(folded, w) {
			shared++
		}
	}
	if shared == 0 {
		return 0, 0
	}
	return PartialWord, shared
}
