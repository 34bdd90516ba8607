// Package views opens uploaded documents as navigable views and keeps them
// in a TTL-bounded registry.
package views

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/contentindex"
	"github.com/dgallion1/docnav/internal/layout"
	"github.com/dgallion1/docnav/internal/navigate"
	"github.com/dgallion1/docnav/internal/parser"
	"github.com/dgallion1/docnav/internal/resolve"
	"github.com/dgallion1/docnav/internal/stats"
	"github.com/dgallion1/docnav/internal/viewer"
)

// ErrTooManyViews is returned by Open when the registry is full.
var ErrTooManyViews = errors.New("too many open views")

// Options configures every view the manager opens.
type Options struct {
	TTL      time.Duration
	MaxViews int
	Parser   parser.Options
	Layout   layout.Options
	Viewer   viewer.Options
	Navigate navigate.Config
}

// OptionsFromConfig maps service configuration onto view options.
func OptionsFromConfig(cfg config.Config) (Options, error) {
	pick, err := resolve.ParsePick(cfg.PickOccurrence)
	if err != nil {
		return Options{}, err
	}
	lay := layout.DefaultOptions()
	lay.Width = cfg.LineWidth
	lay.LinesPerPage = cfg.LinesPerPage
	return Options{
		TTL:      cfg.ViewTTL,
		MaxViews: cfg.MaxViews,
		Parser:   parser.Options{PDFFallback: cfg.PDFFallbackPdftotext},
		Layout:   lay,
		Viewer: viewer.Options{
			ViewportHeight: cfg.ViewportHeight,
			Overscan:       cfg.Overscan,
			PageCache:      cfg.PageCache,
			Encapsulate:    cfg.Encapsulate,
			AttachDelay:    cfg.AttachDelay,
		},
		Navigate: navigate.Config{
			Discovery: contentindex.Discovery{
				Interval:    cfg.DiscoveryInterval,
				MaxAttempts: cfg.DiscoveryAttempts,
			},
			Settle:            cfg.SettleInterval,
			Sweep:             cfg.Sweep,
			StepSettle:        cfg.SweepStepSettle,
			Margin:            cfg.ScrollMargin,
			Pick:              pick,
			ReloadOnSelfMatch: cfg.ReloadOnSelfMatch,
		},
	}, nil
}

// Manager owns the open views.
type Manager struct {
	store *Store
	opts  Options
	stats *stats.Navigation
	log   *slog.Logger

	slotMu  sync.Mutex
	pending int // opens in progress, counted against MaxViews
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(opts Options, st *stats.Navigation, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	if st == nil {
		st = stats.NewNavigation(time.Hour)
	}
	return &Manager{
		store: NewStore(opts.TTL),
		opts:  opts,
		stats: st,
		log:   log,
	}
}

// Start launches the idle-view cleanup loop.
func (m *Manager) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	interval := min(5*time.Minute, max(m.opts.TTL/2, time.Second))
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				m.Cleanup()
			}
		}
	}()
}

// Stop ends the cleanup loop and closes every view.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	for _, v := range m.store.List() {
		m.store.Delete(v.ID)
		v.Close()
	}
}

// Cleanup closes views idle past the TTL.
func (m *Manager) Cleanup() int {
	expired := m.store.Cleanup()
	for _, v := range expired {
		v.Close()
		m.log.Info("view expired", "view_id", v.ID)
	}
	return len(expired)
}

// Open parses data, lays it out, mounts a viewer and attaches a navigation
// session. title overrides the parsed title when non-empty.
func (m *Manager) Open(ctx context.Context, title, filename string, data []byte) (*View, error) {
	if err := m.reserve(); err != nil {
		return nil, err
	}
	defer m.release()

	p, err := parser.ForFile(filename, m.opts.Parser)
	if err != nil {
		return nil, err
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	if title != "" {
		tree.Title = title
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate view id: %w", err)
	}
	log := m.log.With("view_id", id.String())

	doc := layout.Build(tree, m.opts.Layout)
	vopts := m.opts.Viewer
	vopts.Log = log
	vw := viewer.New(doc, vopts)

	navCfg := m.opts.Navigate
	navCfg.OnResult = m.record
	sess, err := navigate.Open(ctx, vw, navCfg, log)
	if err != nil {
		vw.Close()
		return nil, fmt.Errorf("open navigation: %w", err)
	}

	now := time.Now()
	v := &View{
		ID:          id.String(),
		Title:       tree.Title,
		Filename:    filename,
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		Viewer:      vw,
		Session:     sess,
		lastUsed:    now,
	}
	m.store.Put(v)
	log.Info("view opened", "title", v.Title, "pages", len(doc.Pages), "sections", len(doc.Sections), "nested", sess.Nested())
	return v, nil
}

// reserve claims a registry slot for an open in progress. The slot is
// released after the view is stored or the open fails.
func (m *Manager) reserve() error {
	m.slotMu.Lock()
	defer m.slotMu.Unlock()
	if m.opts.MaxViews > 0 && m.store.Len()+m.pending >= m.opts.MaxViews {
		return fmt.Errorf("%w (%d)", ErrTooManyViews, m.opts.MaxViews)
	}
	m.pending++
	return nil
}

func (m *Manager) release() {
	m.slotMu.Lock()
	m.pending--
	m.slotMu.Unlock()
}

func (m *Manager) record(r navigate.Result) {
	if r.Err != nil && !errors.Is(r.Err, navigate.ErrNoMatchFound) {
		return
	}
	m.stats.Record(stats.Outcome{
		Duration: r.Duration,
		Failed:   r.State == navigate.StateFailed,
		Retried:  r.Retried,
		Match:    r.Match,
	})
}

// Get returns the view and marks it used, or nil.
func (m *Manager) Get(id string) *View {
	v := m.store.Get(id)
	if v != nil {
		v.Touch()
	}
	return v
}

// Close closes and forgets a view. It reports whether the view existed.
func (m *Manager) Close(id string) bool {
	v := m.store.Delete(id)
	if v == nil {
		return false
	}
	v.Close()
	m.log.Info("view closed", "view_id", id)
	return true
}

// List returns all open views.
func (m *Manager) List() []*View { return m.store.List() }

// Stats returns the navigation stats shared by all views.
func (m *Manager) Stats() *stats.Navigation { return m.stats }
