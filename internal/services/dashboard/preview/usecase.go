package preview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/NordCoder/sitestatus/internal/obs"
)

type Config struct {
	Fetch           FetchConfig
	WaitForFullLoad bool
	LoadTimeout     time.Duration
	CacheSeconds    int
}

// Document is a ready-to-send preview answer.
type Document struct {
	StatusCode int
	Body       []byte
	// CacheSeconds > 0 allows public caching for that long.
	CacheSeconds int
}

// UpstreamStatusError carries a non-2xx, non-405 final status from the target.
type UpstreamStatusError struct {
	StatusCode int
}

func (e *UpstreamStatusError) Error() string { return fmt.Sprintf("Failed to fetch: %d", e.StatusCode) }

var previewResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "preview_requests_total",
	Help: "Preview requests by outcome.",
}, []string{"outcome"})

type Usecase struct {
	validator *Validator
	fetcher   *Fetcher
	cfg       Config
	log       *zap.Logger
}

func NewUsecase(v *Validator, f *Fetcher, cfg Config, log *zap.Logger) *Usecase {
	return &Usecase{validator: v, fetcher: f, cfg: cfg, log: log.With(zap.String("component", "preview"))}
}

// Preview validates raw, follows its redirect chain and produces either the
// sanitized page, a full-load wrapper around the final URL, or the 405 page.
func (u *Usecase) Preview(ctx context.Context, raw string) (doc *Document, err error) {
	defer func() { previewResults.WithLabelValues(outcome(doc, err)).Inc() }()
	log := obs.WithTrace(ctx, u.log)

	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingURL
	}
	target, err := u.validator.Validate(raw)
	if err != nil {
		log.Warn("preview url rejected", zap.String("url", raw), zap.Error(err))
		return nil, err
	}

	res, err := u.fetcher.Fetch(ctx, target)
	if err != nil {
		log.Warn("preview fetch failed", zap.String("url", target.String()), zap.Error(err))
		return nil, err
	}

	switch {
	case res.StatusCode == http.StatusMethodNotAllowed:
		return &Document{StatusCode: http.StatusMethodNotAllowed, Body: renderMethodNotAllowed(res.URL)}, nil
	case res.StatusCode < 200 || res.StatusCode > 299:
		return nil, &UpstreamStatusError{StatusCode: res.StatusCode}
	}

	if u.cfg.WaitForFullLoad {
		return &Document{
			StatusCode: http.StatusOK,
			Body:       renderWrapper(res.URL, u.cfg.LoadTimeout.Milliseconds()),
		}, nil
	}

	body, err := Sanitize(res.Body, res.URL)
	if err != nil {
		return nil, fmt.Errorf("sanitize %s: %w", res.URL, err)
	}
	log.Debug("preview served", zap.String("final_url", res.URL.String()), zap.Int("hops", res.Hops), zap.Int("bytes", len(body)))
	return &Document{StatusCode: http.StatusOK, Body: body, CacheSeconds: u.cfg.CacheSeconds}, nil
}

func outcome(doc *Document, err error) string {
	var upstream *UpstreamStatusError
	switch {
	case err == nil && doc != nil && doc.StatusCode == http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingURL):
		return "missing_url"
	case errors.Is(err, ErrInvalidRedirectTarget), errors.Is(err, ErrRedirectBudgetExceeded):
		return "redirect_rejected"
	case IsRejection(err):
		return "rejected"
	case errors.Is(err, ErrNoResponse):
		return "no_response"
	case errors.As(err, &upstream):
		return "upstream_status"
	default:
		return "error"
	}
}
