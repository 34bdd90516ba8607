package views

import (
	"sort"
	"sync"
	"time"

	"github.com/maruel/natural"
)

// Store is a thread-safe in-memory view registry with idle-TTL eviction.
type Store struct {
	mu    sync.Mutex
	views map[string]*View
	ttl   time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		views: make(map[string]*View),
		ttl:   ttl,
	}
}

func (s *Store) Put(v *View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[v.ID] = v
}

func (s *Store) Get(id string) *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views[id]
}

// Delete removes and returns the view, or nil if absent.
func (s *Store) Delete(id string) *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.views[id]
	delete(s.views, id)
	return v
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// List returns all views ordered naturally by title ("Part 2" before
// "Part 10"), then by ID.
func (s *Store) List() []*View {
	s.mu.Lock()
	out := make([]*View, 0, len(s.views))
	for _, v := range s.views {
		out = append(out, v)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return natural.Less(out[i].Title, out[j].Title)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Cleanup removes views idle longer than the TTL and returns them so the
// caller can close them outside the store lock.
func (s *Store) Cleanup() []*View {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var expired []*View
	for id, v := range s.views {
		if now.Sub(v.LastUsed()) > s.ttl {
			expired = append(expired, v)
			delete(s.views, id)
		}
	}
	return expired
}
