// Package navigate resolves TOC link activations to rendered content and
// scrolls the viewer there.
package navigate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgallion1/docnav/internal/contentindex"
	"github.com/dgallion1/docnav/internal/dom"
	"github.com/dgallion1/docnav/internal/normalize"
	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dgallion1/docnav/internal/resolve"
)

var (
	// ErrNoMatchFound is terminal for one navigation request.
	ErrNoMatchFound = errors.New("no matching content found")
	// ErrSessionClosed is returned for requests that outlive their view.
	ErrSessionClosed = errors.New("navigation session closed")
)

// NoOrigin marks a request that did not come from a link on a known page.
const NoOrigin = -1

// State is a step of one navigation request.
type State string

const (
	StateIdle        State = "idle"
	StateNormalizing State = "normalizing"
	StateResolving   State = "resolving"
	StateFound       State = "found"
	StateScrolling   State = "scrolling"
	StateNotFound    State = "not_found"
	StateLoading     State = "loading"
	StateFailed      State = "failed"
)

// Config tunes a Session.
type Config struct {
	Discovery  contentindex.Discovery
	Settle     time.Duration
	Sweep      bool
	StepSettle time.Duration
	Margin     float64
	Pick       resolve.Pick
	// ReloadOnSelfMatch treats a first pass whose only candidates sit on the
	// link's own page, or are contents entries, as a miss.
	ReloadOnSelfMatch bool
	// OnResult, if set, observes every finished request.
	OnResult func(Result)
}

// DefaultConfig mirrors the service defaults.
func DefaultConfig() Config {
	return Config{
		Discovery:         contentindex.DefaultDiscovery(),
		Settle:            300 * time.Millisecond,
		Sweep:             true,
		StepSettle:        20 * time.Millisecond,
		Margin:            DefaultMargin,
		Pick:              resolve.PickSecond,
		ReloadOnSelfMatch: true,
	}
}

// Result describes how one navigation request ended.
type Result struct {
	State      State         `json:"state"`
	Trace      []State       `json:"trace"`
	Label      string        `json:"label"`
	Normalized string        `json:"normalized"`
	OriginPage int           `json:"origin_page"`
	Match      string        `json:"match,omitempty"`
	Target     string        `json:"target,omitempty"`
	TargetPage int           `json:"target_page"`
	SelfMatch  bool          `json:"self_match,omitempty"`
	Retried    bool          `json:"retried"`
	Notice     string        `json:"notice,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	Err        error         `json:"-"`
}

func (r *Result) enter(s State) {
	r.State = s
	r.Trace = append(r.Trace, s)
}

// Session is the per-view navigation context. It owns the view's mutation
// subscription from Open until Close.
type Session struct {
	view     dom.View
	index    *contentindex.Index
	locator  *outline.Locator
	resolver *resolve.Resolver
	trigger  *Trigger
	scroller *Scroller
	cfg      Config
	log      *slog.Logger

	mu         sync.Mutex
	closed     bool
	cancelFeed func()
	removeLink func()
	watches    map[*watch]struct{}

	mounted atomic.Int64
	wg      sync.WaitGroup
}

// Open attaches a session to view: it discovers the content sub-tree,
// subscribes to the mutation feed and takes over link activation.
func Open(ctx context.Context, view dom.View, cfg Config, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	index := contentindex.New(view.Root(), log)
	if err := index.Discover(ctx, cfg.Discovery); err != nil {
		if !errors.Is(err, contentindex.ErrSubTreeUnavailable) {
			return nil, fmt.Errorf("discover content: %w", err)
		}
		log.Warn("content sub-tree never attached, querying root", "error", err)
	}

	region := view.ScrollRegion()
	s := &Session{
		view:     view,
		index:    index,
		locator:  outline.NewLocator(index),
		resolver: resolve.New(index, cfg.Pick),
		trigger:  &Trigger{Region: region, Settle: cfg.Settle, Sweep: cfg.Sweep, StepSettle: cfg.StepSettle, Log: log},
		scroller: &Scroller{Region: region, Margin: cfg.Margin, Log: log},
		cfg:      cfg,
		log:      log,
		watches:  make(map[*watch]struct{}),
	}

	events, cancel := index.Subscribe(nil)
	s.cancelFeed = cancel
	s.wg.Add(1)
	go s.consume(events)

	s.removeLink = view.OnLinkActivated(func(ev *dom.LinkEvent) {
		if !s.live() {
			return
		}
		ev.PreventDefault()
		ev.SetResult(s.Navigate(ev.Context(), ev.Label, ev.OriginPage))
	})
	return s, nil
}

// Close releases the subscription and link handler. Requests still in
// flight finish without touching the viewport. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancelFeed()
	s.removeLink()
	s.wg.Wait()
}

func (s *Session) live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Nested reports whether content was found inside an encapsulated sub-tree.
func (s *Session) Nested() bool { return s.index.Nested() }

// Mounted is the number of nodes the mutation feed has reported so far.
func (s *Session) Mounted() int64 { return s.mounted.Load() }

// consume is the blocking-read loop over the mutation feed.
func (s *Session) consume(events <-chan dom.Event) {
	defer s.wg.Done()
	for ev := range events {
		if len(ev.Added) == 0 {
			continue
		}
		s.mounted.Add(int64(len(ev.Added)))

		s.mu.Lock()
		ws := make([]*watch, 0, len(s.watches))
		for w := range s.watches {
			ws = append(ws, w)
		}
		s.mu.Unlock()
		for _, w := range ws {
			w.check(ev.Added)
		}
	}
}

// watch waits for a node matching label to mount away from the origin
// page. Contents entries do not count: the retry needs the body
// occurrence mounted, not another link.
type watch struct {
	match  *resolve.Matcher
	origin int
	hit    atomic.Bool
}

// check runs on the consumer goroutine only.
func (w *watch) check(nodes []dom.Node) {
	if w.hit.Load() || w.match == nil {
		return
	}
	for _, n := range nodes {
		if n.Page() == w.origin || normalize.HasLeader(n.Text()) {
			continue
		}
		if _, ok := w.match.Match(n.Text()); ok {
			w.hit.Store(true)
			return
		}
	}
}

func (s *Session) addWatch(label string, origin int) *watch {
	w := &watch{match: resolve.NewMatcher(label), origin: origin}
	s.mu.Lock()
	s.watches[w] = struct{}{}
	s.mu.Unlock()
	return w
}

func (s *Session) removeWatch(w *watch) {
	s.mu.Lock()
	delete(s.watches, w)
	s.mu.Unlock()
}

// Navigate resolves label and scrolls to it. Requests are independent;
// concurrent ones race on the viewport.
func (s *Session) Navigate(ctx context.Context, label string, origin int) (res Result) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	res = Result{Label: label, OriginPage: origin, TargetPage: NoOrigin}
	defer func() {
		res.Duration = time.Since(start)
		if s.cfg.OnResult != nil {
			s.cfg.OnResult(res)
		}
	}()
	if !s.live() {
		res.Err = ErrSessionClosed
		return res
	}
	log := s.log.With("label", label, "origin_page", origin)

	res.enter(StateNormalizing)
	res.Normalized = normalize.Label(label)

	res.enter(StateResolving)
	cand, ok := s.resolveFirst(res.Normalized, origin)
	if !ok {
		res.enter(StateNotFound)
		res.enter(StateLoading)
		w := s.addWatch(res.Normalized, origin)
		err := s.trigger.EnsureLoaded(ctx, w.hit.Load)
		s.removeWatch(w)
		if err != nil {
			log.Warn("loading pass interrupted", "error", err)
		}
		if !s.live() {
			res.Err = ErrSessionClosed
			return res
		}

		res.Retried = true
		res.enter(StateResolving)
		cand, ok = s.resolver.Resolve(res.Normalized)
		if !ok {
			res.enter(StateNotFound)
			res.enter(StateFailed)
			res.Err = fmt.Errorf("%w for %q", ErrNoMatchFound, res.Normalized)
			res.Notice = fmt.Sprintf("no matching content found for %q", res.Normalized)
			log.Info("navigation failed", "normalized", res.Normalized)
			return res
		}
		res.SelfMatch = origin != NoOrigin && cand.Node.Page() == origin
	}

	res.enter(StateFound)
	res.Match = cand.Kind.String()
	res.Target = strings.TrimSpace(cand.Node.Text())
	res.TargetPage = cand.Node.Page()

	if !s.live() {
		res.Err = ErrSessionClosed
		return res
	}
	res.enter(StateScrolling)
	s.scroller.ScrollTo(cand.Node)
	res.enter(StateIdle)
	log.Info("navigated", "target", res.Target, "target_page", res.TargetPage, "match", res.Match, "retried", res.Retried)
	return res
}

// resolveFirst is the first resolution pass. Candidates that all sit on
// the origin page or read as contents entries are the link itself or its
// siblings, and count as a miss.
func (s *Session) resolveFirst(label string, origin int) (resolve.Candidate, bool) {
	cands := s.resolver.ResolveAll(label)
	if !s.cfg.ReloadOnSelfMatch {
		return s.resolver.Choose(cands)
	}
	for _, c := range cands {
		if c.Node.Page() != origin && !normalize.HasLeader(c.Node.Text()) {
			return s.resolver.Choose(cands)
		}
	}
	return resolve.Candidate{}, false
}

// SectionAt returns the section heading under viewport position y.
func (s *Session) SectionAt(y float64) (outline.Heading, bool) {
	return s.locator.At(y)
}

// Headings lists the currently mounted section headings.
func (s *Session) Headings() []outline.Heading {
	return s.locator.Headings()
}
