package status

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NordCoder/sitestatus/internal/domain/project"
	"github.com/NordCoder/sitestatus/internal/domain/statuslog"
)

var errDown = errors.New("database is down")

type memLogs struct {
	mu      sync.Mutex
	rows    []statuslog.Entry
	failFor map[string]bool
}

func newMemLogs() *memLogs { return &memLogs{failFor: map[string]bool{}} }

func (m *memLogs) Insert(_ context.Context, e *statuslog.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[e.RoutePath] {
		return errDown
	}
	e.ID = int64(len(m.rows) + 1)
	e.Timestamp = time.Date(2026, 10, 1, 12, 0, len(m.rows), 0, time.UTC)
	m.rows = append(m.rows, *e)
	return nil
}

func (m *memLogs) DeleteByProject(_ context.Context, slug string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	var n int64
	for _, r := range m.rows {
		if r.ProjectSlug == slug {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

func (m *memLogs) LatestPerRoute(_ context.Context, slug string) (map[string]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]time.Time{}
	for _, r := range m.rows {
		if r.ProjectSlug == slug && r.Timestamp.After(out[r.RoutePath]) {
			out[r.RoutePath] = r.Timestamp
		}
	}
	return out, nil
}

func (m *memLogs) snapshot() []statuslog.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]statuslog.Entry(nil), m.rows...)
}

// stubPinger answers by absolute URL; unknown URLs fail like a refused connection.
type stubPinger struct {
	mu      sync.Mutex
	replies map[string]*PingResult
	calls   []string
}

func (s *stubPinger) Ping(_ context.Context, url string) (*PingResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, url)
	if r, ok := s.replies[url]; ok {
		return r, nil
	}
	return nil, errors.New("dial tcp: connection refused")
}

func acmeRegistry() *project.Registry {
	reg, err := project.NewRegistry([]project.Project{
		{Slug: "acme", BaseURL: "https://acme.example.com", Routes: []string{"/", "/api/items/[id]"}},
		{Slug: "docs", BaseURL: "https://docs.example.org/", Routes: []string{"/about", "/admin", "/submit", "/gone"}},
	})
	if err != nil {
		panic(err)
	}
	return reg
}
