package views

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/docnav/internal/layout"
	"github.com/dgallion1/docnav/internal/navigate"
	"github.com/dgallion1/docnav/internal/viewer"
)

// View is one opened document: its rendering engine and the navigation
// session attached to it.
type View struct {
	ID          string
	Title       string
	Filename    string
	ContentHash string
	CreatedAt   time.Time

	Viewer  *viewer.Viewer
	Session *navigate.Session

	mu       sync.Mutex
	lastUsed time.Time
	closed   bool
}

// Touch marks the view as used, postponing its expiry.
func (v *View) Touch() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastUsed = time.Now()
}

// LastUsed returns when the view was last touched.
func (v *View) LastUsed() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUsed
}

// Close detaches the session, then tears down the viewer. Idempotent.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()

	v.Session.Close()
	v.Viewer.Close()
}

// Links returns the contents-page link annotations.
func (v *View) Links() []layout.Link { return v.Viewer.Links() }

// Snapshot is a read-only, JSON-safe copy of view state.
type Snapshot struct {
	ID          string    `json:"view_id"`
	Title       string    `json:"title"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash"`
	Sections    int       `json:"sections"`
	Nested      bool      `json:"nested"`
	Mounted     int64     `json:"mounted_nodes"`
	CreatedAt   time.Time `json:"created_at"`
	LastUsed    time.Time `json:"last_used"`

	Viewer viewer.Snapshot `json:"viewer"`
}

// Snapshot returns a JSON-safe copy of the view state.
func (v *View) Snapshot() Snapshot {
	return Snapshot{
		ID:          v.ID,
		Title:       v.Title,
		Filename:    v.Filename,
		ContentHash: v.ContentHash,
		Sections:    len(v.Viewer.Document().Sections),
		Nested:      v.Session.Nested(),
		Mounted:     v.Session.Mounted(),
		CreatedAt:   v.CreatedAt,
		LastUsed:    v.LastUsed(),
		Viewer:      v.Viewer.Snapshot(),
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
