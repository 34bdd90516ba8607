// Package contentindex is a read-through view over the text nodes currently
// mounted by the rendering engine.
package contentindex

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docnav/internal/dom"
)

// ErrSubTreeUnavailable means the encapsulated content sub-tree never
// attached within the discovery window.
var ErrSubTreeUnavailable = errors.New("content sub-tree unavailable")

// Discovery bounds the search for the encapsulated sub-tree.
type Discovery struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultDiscovery polls every 100ms for three seconds.
func DefaultDiscovery() Discovery {
	return Discovery{Interval: 100 * time.Millisecond, MaxAttempts: 30}
}

// Index resolves queries against either the encapsulated sub-tree, once it
// is found, or the nominal root.
type Index struct {
	root dom.Element
	log  *slog.Logger

	mu     sync.RWMutex
	target dom.Element
	nested bool
}

// New returns an index over root. Until Discover succeeds queries go to root.
func New(root dom.Element, log *slog.Logger) *Index {
	if log == nil {
		log = slog.Default()
	}
	return &Index{root: root, target: root, log: log}
}

// Discover waits for the encapsulated sub-tree with bounded retry. On
// success later queries and subscriptions use the sub-tree; otherwise it
// returns ErrSubTreeUnavailable and the index stays on the nominal root.
func (ix *Index) Discover(ctx context.Context, d Discovery) error {
	if d.MaxAttempts <= 0 {
		d.MaxAttempts = 1
	}
	for attempt := range d.MaxAttempts {
		if sub := ix.root.Encapsulated(); sub != nil {
			ix.mu.Lock()
			ix.target = sub
			ix.nested = true
			ix.mu.Unlock()
			ix.log.Debug("content sub-tree attached", "attempt", attempt)
			return nil
		}
		if attempt == d.MaxAttempts-1 {
			break
		}
		select {
		case <-time.After(d.Interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return ErrSubTreeUnavailable
}

// Nested reports whether the index is attached to the encapsulated sub-tree.
func (ix *Index) Nested() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.nested
}

func (ix *Index) current() dom.Element {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.target
}

// QueryAll returns the mounted nodes matching pred. The result is a
// snapshot; query again after content changes.
func (ix *Index) QueryAll(pred dom.Predicate) []dom.Node {
	return ix.current().QueryAll(pred)
}

// Subscribe returns the mutation feed for nodes matching pred.
func (ix *Index) Subscribe(pred dom.Predicate) (<-chan dom.Event, func()) {
	return ix.current().Observe(pred)
}
