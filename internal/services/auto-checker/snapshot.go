package auto_checker

import (
	"sync"
	"time"

	"github.com/NordCoder/sitestatus/internal/domain/statuslog"
)

// Snapshot is the server-known view of every route. It is replaced wholesale
// on refresh and advanced in between by status_logged events.
type Snapshot struct {
	mu     sync.RWMutex
	loaded bool
	routes []statuslog.RouteStatus
	index  map[string]int
}

func NewSnapshot() *Snapshot {
	return &Snapshot{index: map[string]int{}}
}

func (s *Snapshot) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Replace installs a fresh listing. A newer timestamp already known from an
// event wins over an older one in the listing.
func (s *Snapshot) Replace(routes []statuslog.RouteStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]statuslog.RouteStatus, len(routes))
	index := make(map[string]int, len(routes))
	for i, r := range routes {
		key := routeKey(r.ProjectSlug, r.Path)
		if j, ok := s.index[key]; ok {
			if prev := s.routes[j].LastChecked; prev != nil && (r.LastChecked == nil || prev.After(*r.LastChecked)) {
				at := *prev
				r.LastChecked = &at
			}
		}
		next[i] = r
		index[key] = i
	}
	s.routes, s.index, s.loaded = next, index, true
}

// Advance records a check at at. Unknown routes and older timestamps are ignored.
func (s *Snapshot) Advance(slug, path string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[routeKey(slug, path)]
	if !ok {
		return false
	}
	if cur := s.routes[i].LastChecked; cur != nil && !at.After(*cur) {
		return false
	}
	at = at.UTC()
	s.routes[i].LastChecked = &at
	return true
}

func (s *Snapshot) Routes() []statuslog.RouteStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]statuslog.RouteStatus(nil), s.routes...)
}
