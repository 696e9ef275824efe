package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/NordCoder/sitestatus/internal/httpclient"
)

// PingResult is what the probe needs to know about one GET.
type PingResult struct {
	StatusCode int
	// FinalURL is the URL that produced StatusCode after redirects.
	FinalURL   string
	Redirected bool
	// Blocked is set when a redirect hop failed URL validation; that hop
	// was never requested and FinalURL is left empty.
	Blocked error
}

type Pinger interface {
	Ping(ctx context.Context, url string) (*PingResult, error)
}

// HTTPPinger issues a single GET with a fixed user agent.
type HTTPPinger struct {
	c         *http.Client
	userAgent string
}

func NewHTTPPinger(c *http.Client, userAgent string) *HTTPPinger {
	return &HTTPPinger{c: c, userAgent: userAgent}
}

// drainLimit bounds how much of a body is read so keep-alive connections can be reused.
const drainLimit = 64 << 10

func (p *HTTPPinger) Ping(ctx context.Context, url string) (*PingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	resp, err := p.c.Do(req)
	if errors.Is(err, httpclient.ErrRedirectBlocked) {
		res := &PingResult{Redirected: true, Blocked: err}
		if resp != nil {
			res.StatusCode = resp.StatusCode
		}
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))

	res := &PingResult{StatusCode: resp.StatusCode, FinalURL: resp.Request.URL.String()}
	switch {
	case res.FinalURL != req.URL.String():
		res.Redirected = true
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		res.Redirected = true
		if loc, err := resp.Location(); err == nil {
			res.FinalURL = loc.String()
		}
	}
	return res, nil
}
