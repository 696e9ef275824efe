package preview

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"

	"github.com/NordCoder/sitestatus/internal/obs"
)

type FetchConfig struct {
	MaxRedirects        int
	UserAgent           string
	Timeout             time.Duration
	RedirectDelayMin    time.Duration
	RedirectDelayJitter time.Duration
	MaxBodyBytes        int64
}

// Response is the first non-redirect answer of a chain.
type Response struct {
	URL        *url.URL
	StatusCode int
	Header     http.Header
	Body       []byte
	Hops       int
}

var redirectHops = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "preview_redirect_hops",
	Help:    "Redirects followed per successful preview fetch.",
	Buckets: []float64{0, 1, 2, 3, 5, 10},
})

type Fetcher struct {
	client    *http.Client
	validator *Validator
	cfg       FetchConfig

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(n int64) int64
}

// NewFetcher expects a client that does not follow redirects on its own.
func NewFetcher(client *http.Client, v *Validator, cfg FetchConfig) *Fetcher {
	return &Fetcher{
		client:    client,
		validator: v,
		cfg:       cfg,
		sleep:     sleepCtx,
		jitter:    rand.Int64N,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (f *Fetcher) redirectDelay() time.Duration {
	d := f.cfg.RedirectDelayMin
	if f.cfg.RedirectDelayJitter > 0 {
		d += time.Duration(f.jitter(int64(f.cfg.RedirectDelayJitter)))
	}
	return d
}

// Fetch walks the redirect chain starting at target. Every hop, the first
// included, is validated before it is requested, and consecutive hops are
// separated by a randomized pause.
func (f *Fetcher) Fetch(ctx context.Context, target *url.URL) (resp *Response, err error) {
	ctx, span := obs.StartSpan(ctx, "preview", "preview.fetch", attribute.String("url.initial", target.String()))
	defer func() { obs.EndSpan(span, err) }()

	current, err := f.validator.Validate(target.String())
	if err != nil {
		return nil, err
	}
	for hop := 0; ; hop++ {
		res, location, err := f.do(ctx, current)
		if err != nil {
			return nil, err
		}
		if res != nil {
			res.Hops = hop
			redirectHops.Observe(float64(hop))
			span.SetAttributes(attribute.Int("redirect.hops", hop), attribute.Int("http.status_code", res.StatusCode))
			return res, nil
		}

		if hop >= f.cfg.MaxRedirects {
			return nil, fmt.Errorf("%w: limit %d", ErrRedirectBudgetExceeded, f.cfg.MaxRedirects)
		}
		next, err := current.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRedirectTarget, location)
		}
		if next, err = f.validator.Validate(next.String()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRedirectTarget, err)
		}
		if err := f.sleep(ctx, f.redirectDelay()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoResponse, err)
		}
		current = next
	}
}

// do issues one GET. A redirect yields (nil, location, nil); anything else
// yields the buffered response.
func (f *Fetcher) do(ctx context.Context, u *url.URL) (*Response, string, error) {
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrNoResponse, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 && res.StatusCode < 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
		loc := res.Header.Get("Location")
		if loc == "" {
			return nil, "", fmt.Errorf("%w: %d without Location", ErrInvalidRedirectTarget, res.StatusCode)
		}
		return nil, loc, nil
	}

	var body io.Reader = res.Body
	if f.cfg.MaxBodyBytes > 0 {
		body = io.LimitReader(res.Body, f.cfg.MaxBodyBytes)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: read body: %w", ErrNoResponse, err)
	}
	return &Response{URL: u, StatusCode: res.StatusCode, Header: res.Header.Clone(), Body: b}, "", nil
}
