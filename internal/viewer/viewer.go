// Package viewer is a virtualized document viewer. Only pages near the
// viewport, plus a few recently shown ones, are mounted at any time; the
// rest of the document exists only as layout until scrolled to.
package viewer

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/dgallion1/docnav/internal/dom"
	"github.com/dgallion1/docnav/internal/layout"
)

// ErrNoSuchLink is returned by ActivateLink for an out-of-range index.
var ErrNoSuchLink = errors.New("no such link")

// ErrClosed is returned for operations on a closed viewer.
var ErrClosed = errors.New("viewer closed")

// Options controls virtualization.
type Options struct {
	ViewportHeight float64
	Overscan       float64
	// PageCache is how many pages outside the window stay mounted.
	PageCache int
	// Encapsulate mounts content in a sub-tree hidden behind the root,
	// attached AttachDelay after New.
	Encapsulate bool
	AttachDelay time.Duration
	// NoScrollRegion hides the scroll region from navigation code.
	NoScrollRegion bool
	Log            *slog.Logger
}

// DefaultOptions matches the service configuration defaults.
func DefaultOptions() Options {
	return Options{
		ViewportHeight: 900,
		Overscan:       200,
		PageCache:      4,
		Encapsulate:    true,
		AttachDelay:    50 * time.Millisecond,
	}
}

// Viewer renders a layout.Document and implements dom.View.
type Viewer struct {
	doc  *layout.Document
	opts Options
	log  *slog.Logger

	mu       sync.Mutex
	offset   float64
	mounted  map[int][]*node
	recent   []int // mounted pages, least recently wanted first
	host     *element
	content  *element
	attached bool
	attach   *time.Timer
	handlers map[int]func(*dom.LinkEvent)
	nextID   int
	closed   bool
}

// New mounts the first window of doc.
func New(doc *layout.Document, opts Options) *Viewer {
	if opts.ViewportHeight <= 0 {
		opts.ViewportHeight = DefaultOptions().ViewportHeight
	}
	if opts.Overscan < 0 {
		opts.Overscan = 0
	}
	if opts.PageCache < 0 {
		opts.PageCache = 0
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	v := &Viewer{
		doc:      doc,
		opts:     opts,
		log:      log,
		mounted:  make(map[int][]*node),
		handlers: make(map[int]func(*dom.LinkEvent)),
	}
	v.host = &element{v: v, observers: make(map[int]*observer)}
	v.content = v.host
	if opts.Encapsulate {
		v.content = &element{v: v, observers: make(map[int]*observer)}
		v.attach = time.AfterFunc(opts.AttachDelay, func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if !v.closed {
				v.attached = true
				v.log.Debug("content sub-tree attached")
			}
		})
	}

	v.mu.Lock()
	v.remount()
	v.mu.Unlock()
	return v
}

// Root implements dom.View.
func (v *Viewer) Root() dom.Element { return v.host }

// ScrollRegion implements dom.View.
func (v *Viewer) ScrollRegion() dom.ScrollRegion {
	if v.opts.NoScrollRegion {
		return nil
	}
	return region{v}
}

// OnLinkActivated implements dom.View.
func (v *Viewer) OnLinkActivated(fn func(*dom.LinkEvent)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextID
	v.nextID++
	v.handlers[id] = fn
	return func() {
		v.mu.Lock()
		delete(v.handlers, id)
		v.mu.Unlock()
	}
}

// Links returns the document's link annotations.
func (v *Viewer) Links() []layout.Link { return v.doc.Links }

// Document returns the layout being rendered.
func (v *Viewer) Document() *layout.Document { return v.doc }

// ActivateLink fires the link at index as a user click from the page the
// link sits on. Handlers run synchronously in registration order; unless
// one prevents it, the viewer then jumps to the link's destination.
func (v *Viewer) ActivateLink(ctx context.Context, index int) (*dom.LinkEvent, error) {
	if index < 0 || index >= len(v.doc.Links) {
		return nil, ErrNoSuchLink
	}
	link := v.doc.Links[index]

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrClosed
	}
	ids := make([]int, 0, len(v.handlers))
	for id := range v.handlers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	hs := make([]func(*dom.LinkEvent), 0, len(ids))
	for _, id := range ids {
		hs = append(hs, v.handlers[id])
	}
	v.mu.Unlock()

	ev := &dom.LinkEvent{Label: link.Label, OriginPage: link.Page, Ctx: ctx}
	for _, h := range hs {
		h(ev)
	}
	if !ev.DefaultPrevented() {
		v.log.Debug("default link action", "dest", link.Dest, "dest_page", link.DestPage)
		v.ScrollTo(v.doc.Pages[link.DestPage].Top, false)
	}
	return ev, nil
}

// ScrollTo moves the viewport. Offsets are clamped to the document.
func (v *Viewer) ScrollTo(offset float64, smooth bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || math.IsNaN(offset) {
		return
	}
	v.offset = max(0, min(offset, v.maxOffset()))
	v.remount()
}

func (v *Viewer) maxOffset() float64 {
	return max(0, v.doc.Height()-v.opts.ViewportHeight)
}

// Snapshot describes the viewer's current state.
type Snapshot struct {
	Title        string  `json:"title"`
	Pages        int     `json:"pages"`
	Links        int     `json:"links"`
	Offset       float64 `json:"offset"`
	ScrollHeight float64 `json:"scroll_height"`
	ClientHeight float64 `json:"client_height"`
	Mounted      []int   `json:"mounted"`
	Attached     bool    `json:"attached"`
}

func (v *Viewer) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Snapshot{
		Title:        v.doc.Title,
		Pages:        len(v.doc.Pages),
		Links:        len(v.doc.Links),
		Offset:       v.offset,
		ScrollHeight: v.doc.Height(),
		ClientHeight: v.opts.ViewportHeight,
		Mounted:      v.mountedPages(),
		Attached:     v.attached || !v.opts.Encapsulate,
	}
}

// Close unmounts everything, stops delivering events and drops handlers.
// It is idempotent.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	if v.attach != nil {
		v.attach.Stop()
	}
	clear(v.handlers)
	clear(v.mounted)
	v.recent = nil
	v.host.closeAll()
	if v.content != v.host {
		v.content.closeAll()
	}
}

func (v *Viewer) mountedPages() []int {
	pages := make([]int, 0, len(v.mounted))
	for p := range v.mounted {
		pages = append(pages, p)
	}
	slices.Sort(pages)
	return pages
}

// remount reconciles mounted pages with the viewport window. Caller holds mu.
func (v *Viewer) remount() {
	lo := v.offset - v.opts.Overscan
	hi := v.offset + v.opts.ViewportHeight + v.opts.Overscan

	var wanted []int
	for _, pg := range v.doc.Pages {
		if pg.Top+pg.Height > lo && pg.Top < hi {
			wanted = append(wanted, pg.Index)
		}
	}

	for _, p := range wanted {
		if _, ok := v.mounted[p]; !ok {
			v.mountPage(p)
		}
		v.touch(p)
	}

	// Evict the least recently wanted pages beyond the cache.
	extra := len(v.recent) - len(wanted) - v.opts.PageCache
	for i := 0; extra > 0 && i < len(v.recent); {
		p := v.recent[i]
		if slices.Contains(wanted, p) {
			i++
			continue
		}
		v.unmountPage(p)
		v.recent = slices.Delete(v.recent, i, i+1)
		extra--
	}
}

func (v *Viewer) touch(p int) {
	if i := slices.Index(v.recent, p); i >= 0 {
		v.recent = slices.Delete(v.recent, i, i+1)
	}
	v.recent = append(v.recent, p)
}

func (v *Viewer) mountPage(p int) {
	lines := v.doc.Pages[p].Lines
	nodes := make([]*node, 0, len(lines))
	added := make([]dom.Node, 0, len(lines))
	for _, l := range lines {
		n := &node{v: v, line: l}
		nodes = append(nodes, n)
		added = append(added, n)
	}
	v.mounted[p] = nodes
	v.content.emit(dom.Event{Added: added, Page: p})
}

func (v *Viewer) unmountPage(p int) {
	n := len(v.mounted[p])
	delete(v.mounted, p)
	v.content.emit(dom.Event{Removed: n, Page: p})
}

// query returns mounted nodes in document order. Caller holds mu.
func (v *Viewer) query(pred dom.Predicate) []dom.Node {
	var out []dom.Node
	for _, p := range v.mountedPages() {
		for _, n := range v.mounted[p] {
			if pred == nil || pred(n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// region exposes the viewer's scroll state as a dom.ScrollRegion.
type region struct{ v *Viewer }

func (r region) ScrollTop() float64 {
	r.v.mu.Lock()
	defer r.v.mu.Unlock()
	return r.v.offset
}

func (r region) ScrollHeight() float64        { return r.v.doc.Height() }
func (r region) ClientHeight() float64        { return r.v.opts.ViewportHeight }
func (r region) Top() float64                 { return 0 }
func (r region) ScrollTo(off float64, s bool) { r.v.ScrollTo(off, s) }

// node is a mounted line.
type node struct {
	v    *Viewer
	line layout.Line
}

func (n *node) Text() string { return n.line.Text }
func (n *node) Page() int    { return n.line.Page }

func (n *node) BoundingTop() float64 {
	n.v.mu.Lock()
	defer n.v.mu.Unlock()
	return n.line.Top - n.v.offset
}

func (n *node) ScrollIntoView(opts dom.ScrollOptions) {
	target := n.line.Top
	switch opts.Block {
	case dom.BlockCenter:
		target -= n.v.opts.ViewportHeight / 2
	case dom.BlockNearest:
		n.v.mu.Lock()
		off := n.v.offset
		n.v.mu.Unlock()
		if target >= off && target < off+n.v.opts.ViewportHeight {
			return
		}
	}
	n.v.ScrollTo(target, opts.Smooth)
}
