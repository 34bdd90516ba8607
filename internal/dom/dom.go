// Package dom describes the rendered document as seen from the navigation
// code: text nodes with transient geometry, elements that can be queried and
// observed, a scrollable region and link-activation events. The rendering
// engine implements these; the navigation packages only consume them.
package dom

import "context"

// Node is a piece of rendered text. Geometry is valid only until the next
// mount/unmount pass; callers must not hold nodes across content reloads.
type Node interface {
	Text() string
	// BoundingTop is the node's top edge in viewport coordinates.
	BoundingTop() float64
	Page() int
	ScrollIntoView(opts ScrollOptions)
}

// Block is the alignment used by ScrollIntoView.
type Block int

const (
	BlockStart Block = iota
	BlockCenter
	BlockNearest
)

// ScrollOptions controls Node.ScrollIntoView.
type ScrollOptions struct {
	Smooth bool
	Block  Block
}

// Predicate selects nodes.
type Predicate func(Node) bool

// Event reports nodes mounted or unmounted under an observed element.
type Event struct {
	Added   []Node
	Removed int
	Page    int
}

// Element is a mount point that can be searched and observed.
type Element interface {
	// QueryAll returns a snapshot of the currently mounted nodes matching
	// pred, in render order. A nil pred matches everything.
	QueryAll(pred Predicate) []Node
	// Observe delivers child-list changes (deep) in occurrence order until
	// cancel is called or the element is torn down, which closes the channel.
	Observe(pred Predicate) (events <-chan Event, cancel func())
	// Encapsulated returns the content sub-tree hidden behind this element,
	// or nil if none is attached (yet).
	Encapsulated() Element
}

// ScrollRegion is the document's scrollable viewport.
type ScrollRegion interface {
	ScrollTop() float64
	ScrollHeight() float64
	ClientHeight() float64
	// Top is the region's top edge in viewport coordinates.
	Top() float64
	ScrollTo(offset float64, smooth bool)
}

// LinkEvent is fired when the user activates an internal link.
type LinkEvent struct {
	Label      string
	OriginPage int
	// Ctx bounds work done by handlers; nil means context.Background.
	Ctx context.Context

	prevented bool
	result    any
}

// Context returns the event's context.
func (e *LinkEvent) Context() context.Context {
	if e.Ctx == nil {
		return context.Background()
	}
	return e.Ctx
}

// SetResult lets a handler hand its outcome back to the dispatcher.
func (e *LinkEvent) SetResult(v any) { e.result = v }

// Result is whatever the last handler passed to SetResult.
func (e *LinkEvent) Result() any { return e.result }

// PreventDefault suppresses the engine's own handling of the link.
func (e *LinkEvent) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether a handler called PreventDefault.
func (e *LinkEvent) DefaultPrevented() bool { return e.prevented }

// View is one mounted document view.
type View interface {
	Root() Element
	// ScrollRegion may return nil when the engine exposes none.
	ScrollRegion() ScrollRegion
	OnLinkActivated(fn func(*LinkEvent)) (remove func())
}
