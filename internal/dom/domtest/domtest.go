// Package domtest provides in-memory dom implementations for tests.
package domtest

import (
	"sync"

	"github.com/dgallion1/docnav/internal/dom"
)

// Node is a static text node. Top is in document coordinates; the node's
// BoundingTop is Top minus the owning region's scroll offset plus its top.
type Node struct {
	Content string
	Top     float64
	PageIdx int
	Region  *Region

	mu       sync.Mutex
	Scrolled []dom.ScrollOptions
}

func (n *Node) Text() string { return n.Content }
func (n *Node) Page() int    { return n.PageIdx }

func (n *Node) BoundingTop() float64 {
	if n.Region == nil {
		return n.Top
	}
	return n.Top - n.Region.ScrollTop() + n.Region.Top()
}

func (n *Node) ScrollIntoView(opts dom.ScrollOptions) {
	n.mu.Lock()
	n.Scrolled = append(n.Scrolled, opts)
	n.mu.Unlock()
	if n.Region != nil {
		n.Region.ScrollTo(n.Top, opts.Smooth)
	}
}

// ScrollCalls returns how many times ScrollIntoView was called.
func (n *Node) ScrollCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Scrolled)
}

// Element is a flat container of nodes with an optional encapsulated child.
type Element struct {
	mu       sync.Mutex
	nodes    []dom.Node
	sub      dom.Element
	watchers []chan dom.Event

	// OnScroll, when set, is called by a Region with the new offset so tests
	// can mount nodes in response to scrolling.
	OnScroll func(offset float64)
}

// NewElement returns an element holding nodes.
func NewElement(nodes ...dom.Node) *Element {
	return &Element{nodes: nodes}
}

func (e *Element) QueryAll(pred dom.Predicate) []dom.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []dom.Node
	for _, n := range e.nodes {
		if pred == nil || pred(n) {
			out = append(out, n)
		}
	}
	return out
}

func (e *Element) Observe(pred dom.Predicate) (<-chan dom.Event, func()) {
	ch := make(chan dom.Event, 64)
	e.mu.Lock()
	e.watchers = append(e.watchers, ch)
	e.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, w := range e.watchers {
				if w == ch {
					e.watchers = append(e.watchers[:i], e.watchers[i+1:]...)
					close(ch)
					return
				}
			}
		})
	}
}

func (e *Element) Encapsulated() dom.Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sub
}

// Attach sets the encapsulated sub-tree.
func (e *Element) Attach(sub dom.Element) {
	e.mu.Lock()
	e.sub = sub
	e.mu.Unlock()
}

// Add mounts nodes and notifies observers.
func (e *Element) Add(nodes ...dom.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nodes = append(e.nodes, nodes...)
	for _, w := range e.watchers {
		select {
		case w <- dom.Event{Added: nodes}:
		default:
		}
	}
}

// Region is a scrollable viewport with fixed geometry.
type Region struct {
	mu     sync.Mutex
	offset float64
	Height float64
	Client float64
	TopY   float64
	Owner  *Element

	History []float64
}

func (r *Region) ScrollTop() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.offset
}

func (r *Region) ScrollHeight() float64 { return r.Height }
func (r *Region) ClientHeight() float64 { return r.Client }
func (r *Region) Top() float64          { return r.TopY }

func (r *Region) ScrollTo(offset float64, smooth bool) {
	r.mu.Lock()
	if limit := r.Height - r.Client; offset > limit {
		offset = limit
	}
	if offset < 0 {
		offset = 0
	}
	r.offset = offset
	r.History = append(r.History, offset)
	owner := r.Owner
	r.mu.Unlock()
	if owner != nil && owner.OnScroll != nil {
		owner.OnScroll(offset)
	}
}

// Offsets returns every offset the region was scrolled to.
func (r *Region) Offsets() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.History...)
}

// View bundles a root, an optional region and link handlers.
type View struct {
	RootEl *Element
	Region *Region

	mu       sync.Mutex
	handlers map[int]func(*dom.LinkEvent)
	next     int
}

func (v *View) Root() dom.Element { return v.RootEl }

func (v *View) ScrollRegion() dom.ScrollRegion {
	if v.Region == nil {
		return nil
	}
	return v.Region
}

func (v *View) OnLinkActivated(fn func(*dom.LinkEvent)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.handlers == nil {
		v.handlers = make(map[int]func(*dom.LinkEvent))
	}
	id := v.next
	v.next++
	v.handlers[id] = fn
	return func() {
		v.mu.Lock()
		delete(v.handlers, id)
		v.mu.Unlock()
	}
}

// Fire dispatches a link event to every handler and returns it.
func (v *View) Fire(label string, origin int) *dom.LinkEvent {
	ev := &dom.LinkEvent{Label: label, OriginPage: origin}
	v.mu.Lock()
	hs := make([]func(*dom.LinkEvent), 0, len(v.handlers))
	for _, h := range v.handlers {
		hs = append(hs, h)
	}
	v.mu.Unlock()
	for _, h := range hs {
		h(ev)
	}
	return ev
}
