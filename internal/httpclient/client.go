// Package httpclient builds the outbound clients used for previews and probes.
package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/NordCoder/sitestatus/internal/obs"
)

type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

type Config struct {
	Timeout time.Duration
	// MaxRedirects < 0 disables redirect following; the 3xx is returned as is.
	MaxRedirects int
	VerifyTLS    bool
	// Dial overrides the network dialer; tests point it at httptest listeners.
	Dial DialFunc
	// CheckHop vets every redirect target before it is requested.
	CheckHop func(*url.URL) error
}

var (
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrRedirectBlocked  = errors.New("redirect target blocked")
)

// defaultRedirectLimit mirrors net/http when MaxRedirects is left at zero.
const defaultRedirectLimit = 10

func NewTransport(cfg Config) *http.Transport {
	dial := cfg.Dial
	if dial == nil {
		dial = (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dial,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.VerifyTLS,
			MinVersion:         tls.VersionTLS12,
		},
	}
}

// New returns a traced client. Per-request deadlines come from the caller's context.
func New(cfg Config) *http.Client {
	client := &http.Client{Transport: obs.HTTPTransport(NewTransport(cfg))}
	switch {
	case cfg.MaxRedirects < 0:
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	case cfg.MaxRedirects > 0 || cfg.CheckHop != nil:
		limit := cfg.MaxRedirects
		if limit == 0 {
			limit = defaultRedirectLimit
		}
		check := cfg.CheckHop
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) > limit {
				return fmt.Errorf("%w (%d)", ErrTooManyRedirects, limit)
			}
			if check != nil {
				if err := check(req.URL); err != nil {
					return fmt.Errorf("%w: %w", ErrRedirectBlocked, err)
				}
			}
			return nil
		}
	}
	return client
}
