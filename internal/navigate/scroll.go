package navigate

import (
	"errors"
	"log/slog"
	"math"

	"github.com/dgallion1/docnav/internal/dom"
)

// ErrScrollTargetUnreachable means the scroll region is missing or its
// geometry cannot be used; the scroller falls back to ScrollIntoView.
var ErrScrollTargetUnreachable = errors.New("scroll target unreachable")

// DefaultMargin keeps the target off the viewport's top edge.
const DefaultMargin = 20

// Scroller moves the viewport to a node.
type Scroller struct {
	Region dom.ScrollRegion
	Margin float64
	Log    *slog.Logger
}

// ScrollTo brings node into view. It never panics and reports nothing.
func (s *Scroller) ScrollTo(node dom.Node) {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("scroll failed", "panic", r)
		}
	}()

	target, err := s.target(node)
	if err != nil {
		log.Debug("falling back to scroll into view", "error", err)
		node.ScrollIntoView(dom.ScrollOptions{Smooth: true, Block: dom.BlockStart})
		return
	}
	s.Region.ScrollTo(target, true)
}

// target computes the region offset that puts node Margin below the top.
func (s *Scroller) target(node dom.Node) (float64, error) {
	if s.Region == nil {
		return 0, ErrScrollTargetUnreachable
	}
	cur, top, client := s.Region.ScrollTop(), s.Region.Top(), s.Region.ClientHeight()
	nodeTop := node.BoundingTop()
	for _, v := range []float64{cur, top, client, nodeTop} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, ErrScrollTargetUnreachable
		}
	}
	if client <= 0 {
		return 0, ErrScrollTargetUnreachable
	}
	return cur + (nodeTop - top) - s.Margin, nil
}
