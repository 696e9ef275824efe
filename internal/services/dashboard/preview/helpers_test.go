package preview

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/NordCoder/sitestatus/internal/httpclient"
)

var testHosts = []string{"acme.example.com", "docs.example.org"}

// origin serves every hostname from one httptest listener. The client dials
// that listener whatever the URL says, so the validator alone decides which
// hosts are reachable.
type origin struct {
	srv *httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func newOrigin(t *testing.T, h http.HandlerFunc) *origin {
	t.Helper()
	o := &origin{hits: map[string]int{}}
	o.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		o.mu.Lock()
		o.hits[r.Host+r.URL.Path]++
		o.mu.Unlock()
		h(w, r)
	}))
	t.Cleanup(o.srv.Close)
	return o
}

func (o *origin) count(hostPath string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hits[hostPath]
}

func (o *origin) client() *http.Client {
	addr := o.srv.Listener.Addr().String()
	return httpclient.New(httpclient.Config{
		Timeout:      2 * time.Second,
		MaxRedirects: -1,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(ctx, network, addr)
		},
	})
}

type recordedSleep struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *recordedSleep) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return nil
}

func testFetchConfig() FetchConfig {
	return FetchConfig{
		MaxRedirects:        3,
		UserAgent:           "Website-Monitor-Preview/1.0",
		Timeout:             2 * time.Second,
		RedirectDelayMin:    3 * time.Second,
		RedirectDelayJitter: 2 * time.Second,
		MaxBodyBytes:        1 << 20,
	}
}

func newTestFetcher(o *origin, cfg FetchConfig) (*Fetcher, *recordedSleep) {
	f := NewFetcher(o.client(), NewValidator(testHosts), cfg)
	rec := &recordedSleep{}
	f.sleep = rec.sleep
	f.jitter = func(n int64) int64 { return n / 2 }
	return f, rec
}
