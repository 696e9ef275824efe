package auto_checker

import (
	"sync"
	"time"

	"github.com/NordCoder/sitestatus/internal/domain/statuslog"
)

func routeKey(slug, path string) string { return slug + "::" + path }

// MarkerStore remembers when this process last attempted a route. Entries
// older than the TTL are treated as absent.
type MarkerStore struct {
	mu  sync.Mutex
	ttl time.Duration
	at  map[string]time.Time
}

func NewMarkerStore(ttl time.Duration) *MarkerStore {
	return &MarkerStore{ttl: ttl, at: make(map[string]time.Time)}
}

func (m *MarkerStore) AttemptedRecently(slug, path string, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.at[routeKey(slug, path)]
	return ok && now.Sub(t) < m.ttl
}

func (m *MarkerStore) Mark(slug, path string, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.at[routeKey(slug, path)] = now
}

// Prune drops expired markers and returns how many remain.
func (m *MarkerStore) Prune(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range m.at {
		if now.Sub(t) >= m.ttl {
			delete(m.at, k)
		}
	}
	return len(m.at)
}

// DueRoutes selects the routes worth probing at now. A route is due when the
// server has never checked it, or its last check is at least window old, and
// it was not attempted locally within the window either.
func DueRoutes(routes []statuslog.RouteStatus, now time.Time, window time.Duration, markers *MarkerStore) []statuslog.RouteStatus {
	var due []statuslog.RouteStatus
	for _, r := range routes {
		if r.LastChecked != nil && now.Sub(*r.LastChecked) < window {
			continue
		}
		if markers.AttemptedRecently(r.ProjectSlug, r.Path, now) {
			continue
		}
		due = append(due, r)
	}
	return due
}
