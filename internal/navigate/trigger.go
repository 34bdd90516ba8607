package navigate

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/docnav/internal/dom"
)

// Trigger makes a virtualized viewer materialize content it has not
// rendered yet by driving its scroll region to the end.
type Trigger struct {
	Region dom.ScrollRegion
	Settle time.Duration
	// Sweep visits every viewport-sized step on the way to the end instead
	// of jumping straight there, pausing StepSettle at each.
	Sweep      bool
	StepSettle time.Duration
	Log        *slog.Logger
}

// EnsureLoaded runs one best-effort loading pass and restores the original
// scroll offset. found, if non-nil, is polled after every step; once it
// reports true the pass stops early. Without a scroll region it does
// nothing.
func (t *Trigger) EnsureLoaded(ctx context.Context, found func() bool) error {
	if t.Region == nil {
		return nil
	}
	if found == nil {
		found = func() bool { return false }
	}
	log := t.Log
	if log == nil {
		log = slog.Default()
	}

	origin := t.Region.ScrollTop()
	end := t.Region.ScrollHeight() - t.Region.ClientHeight()
	defer t.Region.ScrollTo(origin, false)

	steps := 0
	if step := t.Region.ClientHeight(); t.Sweep && step > 0 {
		for off := origin + step; off < end; off += step {
			t.Region.ScrollTo(off, false)
			steps++
			if err := wait(ctx, t.StepSettle); err != nil {
				return err
			}
			if found() {
				log.Debug("target mounted during sweep", "offset", off, "steps", steps)
				return nil
			}
		}
	}

	t.Region.ScrollTo(end, false)
	log.Debug("forced scroll to end", "from", origin, "to", end, "steps", steps)
	if found() {
		return nil
	}
	return wait(ctx, t.Settle)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
