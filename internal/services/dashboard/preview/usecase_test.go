package preview

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestUsecase(o *origin, cfg Config) *Usecase {
	f, _ := newTestFetcher(o, cfg.Fetch)
	return NewUsecase(NewValidator(testHosts), f, cfg, zap.NewNop())
}

func defaultConfig() Config {
	return Config{Fetch: testFetchConfig(), LoadTimeout: 15 * time.Second, CacheSeconds: 300}
}

func TestPreviewRedirectThenSanitize(t *testing.T) {
	o := newOrigin(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Host == "acme.example.com" {
			http.Redirect(w, r, "http://docs.example.org/start", http.StatusMovedPermanently)
			return
		}
		_, _ = w.Write([]byte(`<html><head><title>Docs</title></head><body><script>evil()</script><h1>Docs</h1></body></html>`))
	})
	uc := newTestUsecase(o, defaultConfig())

	doc, err := uc.Preview(context.Background(), "http://acme.example.com/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, doc.StatusCode)
	assert.Equal(t, 300, doc.CacheSeconds)

	body := string(doc.Body)
	assert.NotContains(t, strings.ToLower(body), "<script")
	assert.Contains(t, body, `<base href="http://docs.example.org/"/>`)
	assert.Contains(t, body, "<h1>Docs</h1>")
}

func TestPreviewMethodNotAllowed(t *testing.T) {
	o := newOrigin(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
	uc := newTestUsecase(o, defaultConfig())

	doc, err := uc.Preview(context.Background(), "http://acme.example.com/api/submit")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, doc.StatusCode)
	assert.Zero(t, doc.CacheSeconds)
	assert.Contains(t, string(doc.Body), "<h1>405 Method Not Allowed</h1>")
	assert.Contains(t, string(doc.Body), "The requested URL http://acme.example.com/api/submit returned 405.")
}

func TestPreviewUpstreamStatus(t *testing.T) {
	o := newOrigin(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	uc := newTestUsecase(o, defaultConfig())

	_, err := uc.Preview(context.Background(), "http://acme.example.com/missing")
	var upstream *UpstreamStatusError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
	assert.Equal(t, "Failed to fetch: 404", upstream.Error())
}

func TestPreviewWaitForFullLoad(t *testing.T) {
	o := newOrigin(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/home?a=1&b=2", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte("<script>never()</script>"))
	})
	cfg := defaultConfig()
	cfg.WaitForFullLoad = true
	cfg.LoadTimeout = 7 * time.Second
	uc := newTestUsecase(o, cfg)

	doc, err := uc.Preview(context.Background(), "http://acme.example.com/")
	require.NoError(t, err)
	body := string(doc.Body)
	assert.Contains(t, body, `src="http://acme.example.com/home?a=1&amp;b=2"`)
	assert.Contains(t, body, `sandbox="allow-scripts"`)
	assert.Contains(t, body, "7000")
	assert.Contains(t, body, "if (settled) { return; }")
	assert.NotContains(t, body, "never()")
}

func TestPreviewInputErrors(t *testing.T) {
	o := newOrigin(t, func(http.ResponseWriter, *http.Request) {})
	uc := newTestUsecase(o, defaultConfig())

	_, err := uc.Preview(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrMissingURL)

	_, err = uc.Preview(context.Background(), "http://localhost/")
	assert.ErrorIs(t, err, ErrDomainNotAllowed)
	assert.Zero(t, o.count("localhost/"))
}
