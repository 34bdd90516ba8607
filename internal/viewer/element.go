package viewer

import (
	"sync"

	"github.com/dgallion1/docnav/internal/dom"
)

// element is either the nominal root or the encapsulated content sub-tree.
type element struct {
	v         *Viewer
	observers map[int]*observer
	nextID    int
}

func (e *element) isContent() bool { return e == e.v.content }

// QueryAll and Observe run pred under the viewer lock; predicates may only
// inspect Text and Page.
func (e *element) QueryAll(pred dom.Predicate) []dom.Node {
	e.v.mu.Lock()
	defer e.v.mu.Unlock()
	if !e.isContent() || e.v.closed {
		return nil
	}
	return e.v.query(pred)
}

// Encapsulated returns the content sub-tree once it has attached.
func (e *element) Encapsulated() dom.Element {
	e.v.mu.Lock()
	defer e.v.mu.Unlock()
	if e != e.v.host || e.v.content == e.v.host || !e.v.attached {
		return nil
	}
	return e.v.content
}

func (e *element) Observe(pred dom.Predicate) (<-chan dom.Event, func()) {
	e.v.mu.Lock()
	defer e.v.mu.Unlock()
	o := newObserver(pred)
	if e.v.closed {
		o.stop()
		return o.out, func() {}
	}
	id := e.nextID
	e.nextID++
	e.observers[id] = o
	return o.out, func() {
		e.v.mu.Lock()
		delete(e.observers, id)
		e.v.mu.Unlock()
		o.stop()
	}
}

// emit queues ev for every observer. Caller holds v.mu.
func (e *element) emit(ev dom.Event) {
	for _, o := range e.observers {
		o.push(ev)
	}
}

func (e *element) closeAll() {
	for id, o := range e.observers {
		o.stop()
		delete(e.observers, id)
	}
}

// observer delivers events in order through an unbounded queue drained by
// its own goroutine, so the viewer never blocks on a slow reader.
type observer struct {
	pred dom.Predicate
	out  chan dom.Event

	mu    sync.Mutex
	queue []dom.Event
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newObserver(pred dom.Predicate) *observer {
	o := &observer{
		pred: pred,
		out:  make(chan dom.Event),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *observer) push(ev dom.Event) {
	if o.pred != nil && len(ev.Added) > 0 {
		var kept []dom.Node
		for _, n := range ev.Added {
			if o.pred(n) {
				kept = append(kept, n)
			}
		}
		if len(kept) == 0 && ev.Removed == 0 {
			return
		}
		ev.Added = kept
	}
	o.mu.Lock()
	o.queue = append(o.queue, ev)
	o.mu.Unlock()
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *observer) stop() {
	o.once.Do(func() { close(o.done) })
}

func (o *observer) run() {
	defer close(o.out)
	for {
		select {
		case <-o.wake:
		case <-o.done:
			return
		}
		for {
			o.mu.Lock()
			if len(o.queue) == 0 {
				o.mu.Unlock()
				break
			}
			ev := o.queue[0]
			o.queue = o.queue[1:]
			o.mu.Unlock()

			select {
			case o.out <- ev:
			case <-o.done:
				return
			}
		}
	}
}
