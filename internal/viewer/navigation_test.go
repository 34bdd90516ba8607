package viewer_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dgallion1/docnav/internal/contentindex"
	"github.com/dgallion1/docnav/internal/doctree"
	"github.com/dgallion1/docnav/internal/layout"
	"github.com/dgallion1/docnav/internal/navigate"
	"github.com/dgallion1/docnav/internal/normalize"
	"github.com/dgallion1/docnav/internal/viewer"
)

func phonetic() *layout.Document {
	tree := &doctree.DocTree{Title: "Phonetic"}
	for _, title := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf", "Hotel", "India", "Juliet"} {
		tree.Children = append(tree.Children, &doctree.DocNode{
			Title: title,
			Text:  fmt.Sprintf("Body of %s.", title),
		})
	}
	return layout.Build(tree, layout.Options{Width: 40, LinesPerPage: 5, LineHeight: 20})
}

func openNavigation(t *testing.T, v *viewer.Viewer, sweep bool) *navigate.Session {
	t.Helper()
	cfg := navigate.DefaultConfig()
	cfg.Discovery = contentindex.Discovery{Interval: time.Millisecond, MaxAttempts: 1}
	if !v.Snapshot().Attached {
		cfg.Discovery.MaxAttempts = 1000
	}
	cfg.Settle = 20 * time.Millisecond
	cfg.StepSettle = 10 * time.Millisecond
	cfg.Sweep = sweep
	s, err := navigate.Open(context.Background(), v, cfg, nil)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestNavigation_UnmountedSection(t *testing.T) {
	v := viewer.New(phonetic(), viewer.Options{
		ViewportHeight: 100,
		PageCache:      2,
		Encapsulate:    true,
		AttachDelay:    5 * time.Millisecond,
	})
	defer v.Close()
	s := openNavigation(t, v, true)
	if !s.Nested() {
		t.Fatal("expected the session to find the encapsulated content")
	}

	// "7. Golf" lives on page 9, far outside the initial window.
	ev, err := v.ActivateLink(context.Background(), 6)
	if err != nil {
		t.Fatal(err)
	}
	if !ev.DefaultPrevented() {
		t.Error("session should take over link handling")
	}
	res := ev.Result().(navigate.Result)
	if res.Err != nil || res.State != navigate.StateIdle {
		t.Fatalf("navigation failed: %+v", res)
	}
	if !res.Retried || res.TargetPage != 9 || res.Target != "7. Golf" {
		t.Errorf("unexpected result %+v", res)
	}
	if got := v.Snapshot().Offset; got != 900-navigate.DefaultMargin {
		t.Errorf("expected offset %v, got %v", 900-navigate.DefaultMargin, got)
	}
	if h, ok := s.SectionAt(navigate.DefaultMargin); !ok || h.Title != "Golf" {
		t.Errorf("expected Golf under the viewport top, got %q", h.Title)
	}
}

func TestNavigation_MountedSection(t *testing.T) {
	v := viewer.New(phonetic(), viewer.Options{ViewportHeight: 100, Overscan: 2000})
	defer v.Close()
	openNavigation(t, v, false)

	ev, err := v.ActivateLink(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	res := ev.Result().(navigate.Result)
	if res.Retried || res.TargetPage != 4 {
		t.Errorf("expected a first-pass hit on page 4, got %+v", res)
	}
}

func TestNavigation_UnknownLabel(t *testing.T) {
	v := viewer.New(phonetic(), viewer.Options{ViewportHeight: 100, Encapsulate: false})
	defer v.Close()
	s := openNavigation(t, v, false)

	res := s.Navigate(context.Background(), "Zulu ........ 14", navigate.NoOrigin)
	if res.State != navigate.StateFailed || res.Notice == "" {
		t.Errorf("expected a failed navigation with a notice, got %+v", res)
	}
	if v.Snapshot().Offset != 0 {
		t.Error("failed navigation moved the viewport")
	}
}

func TestNavigation_NoOriginSkipsContentsEntries(t *testing.T) {
	// The contents list spans pages 0 to 2; "7. Golf" is listed on page 1
	// and starts on page 9.
	tests := []struct {
		label  string
		target string
	}{
		{"7. Golf", "7. Golf"},
		{"Golf", ""},
		{"golf", ""},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			v := viewer.New(phonetic(), viewer.Options{ViewportHeight: 100, PageCache: 2})
			defer v.Close()
			s := openNavigation(t, v, true)

			res := s.Navigate(context.Background(), tt.label, navigate.NoOrigin)
			if res.Err != nil || res.State != navigate.StateIdle {
				t.Fatalf("navigation failed: %+v", res)
			}
			if !res.Retried || res.TargetPage != 9 {
				t.Errorf("expected a retried hit on page 9, got %+v", res)
			}
			if normalize.HasLeader(res.Target) {
				t.Errorf("landed on a contents entry %q", res.Target)
			}
			if tt.target != "" && res.Target != tt.target {
				t.Errorf("expected target %q, got %q", tt.target, res.Target)
			}
		})
	}
}

func TestNavigation_NoOriginWithMountedContentsEntry(t *testing.T) {
	// "1. Alpha" is listed on the mounted first page; the heading is not
	// mounted yet.
	v := viewer.New(phonetic(), viewer.Options{ViewportHeight: 100, PageCache: 2})
	defer v.Close()
	s := openNavigation(t, v, true)

	res := s.Navigate(context.Background(), "1. Alpha", navigate.NoOrigin)
	if res.State != navigate.StateIdle || !res.Retried {
		t.Fatalf("expected a load and retry, got %+v", res)
	}
	if res.Target != "1. Alpha" || res.TargetPage != 3 {
		t.Errorf("expected the heading on page 3, got %+v", res)
	}
}
