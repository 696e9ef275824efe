package auto_checker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/NordCoder/sitestatus/internal/domain/probe"
	"github.com/NordCoder/sitestatus/internal/domain/statuslog"
	"github.com/NordCoder/sitestatus/internal/obs/retry"
)

// Dashboard is the part of the dashboard API the scheduler drives.
type Dashboard interface {
	Routes(ctx context.Context) ([]statuslog.RouteStatus, error)
	Report(ctx context.Context, slug, path string) (*probe.Outcome, error)
}

// StatusError is a non-2xx answer from the dashboard.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dashboard answered %d: %s", e.Code, e.Body)
}

type DashboardClient struct {
	base   string
	c      *http.Client
	policy retry.Policy
}

var _ Dashboard = (*DashboardClient)(nil)

func NewDashboardClient(baseURL string, c *http.Client, policy retry.Policy) *DashboardClient {
	return &DashboardClient{base: strings.TrimRight(baseURL, "/"), c: c, policy: policy}
}

func (d *DashboardClient) Routes(ctx context.Context) ([]statuslog.RouteStatus, error) {
	var out struct {
		Routes []statuslog.RouteStatus `json:"routes"`
	}
	if err := d.call(ctx, http.MethodGet, "/status/routes", &out); err != nil {
		return nil, err
	}
	return out.Routes, nil
}

func (d *DashboardClient) Report(ctx context.Context, slug, path string) (*probe.Outcome, error) {
	q := url.Values{"project": {slug}, "route": {path}}
	var out struct {
		Result probe.Outcome `json:"result"`
	}
	if err := d.call(ctx, http.MethodPost, "/report?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// call retries transport failures and 5xx answers of idempotent requests.
// A POST /report probes the origin and may have stored a row before the
// failure surfaced, so it is sent once. 4xx answers are always final.
func (d *DashboardClient) call(ctx context.Context, method, path string, into any) error {
	idempotent := method == http.MethodGet
	return retry.Do(ctx, func() error {
		err := d.once(ctx, method, path, into)
		if err != nil && !idempotent {
			return retry.Permanent(err)
		}
		return err
	}, d.policy)
}

func (d *DashboardClient) once(ctx context.Context, method, path string, into any) error {
	req, err := http.NewRequestWithContext(ctx, method, d.base+path, nil)
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := d.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		serr := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if resp.StatusCode < 500 {
			return retry.Permanent(serr)
		}
		return serr
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return retry.Permanent(fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}
