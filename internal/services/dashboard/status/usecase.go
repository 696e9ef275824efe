package status

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NordCoder/sitestatus/internal/auth"
	"github.com/NordCoder/sitestatus/internal/domain/probe"
	"github.com/NordCoder/sitestatus/internal/domain/project"
	"github.com/NordCoder/sitestatus/internal/domain/statuslog"
	"github.com/NordCoder/sitestatus/internal/obs"
)

var (
	ErrMissingParam   = errors.New("missing parameter")
	ErrUnknownProject = errors.New("project not found")
	ErrUnknownRoute   = errors.New("route not configured for project")
	ErrForbidden      = errors.New("forbidden in production")
	ErrUnauthorized   = errors.New("admin token rejected")
)

type Config struct {
	// Production disables the destructive admin operations.
	Production bool
}

type Usecase struct {
	projects project.Lookup
	engine   *Engine
	logs     statuslog.Repo
	admin    *auth.AdminGuard
	cfg      Config
	now      func() time.Time
	log      *zap.Logger
}

func NewUsecase(projects project.Lookup, engine *Engine, logs statuslog.Repo, admin *auth.AdminGuard, cfg Config, log *zap.Logger) *Usecase {
	return &Usecase{
		projects: projects,
		engine:   engine,
		logs:     logs,
		admin:    admin,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With(zap.String("component", "status")),
	}
}

type UpdateResult struct {
	Message   string          `json:"message"`
	Site      string          `json:"site"`
	Timestamp time.Time       `json:"timestamp"`
	Results   []probe.Outcome `json:"results"`
}

// ReportResult answers a single-route probe. Message and Help explain outcomes
// that were deliberately not logged.
type ReportResult struct {
	Result  probe.Outcome `json:"result"`
	Message string        `json:"message,omitempty"`
	Help    string        `json:"help,omitempty"`
}

type RoutesResult struct {
	Routes []statuslog.RouteStatus `json:"routes"`
}

func (u *Usecase) project(slug string) (*project.Project, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, fmt.Errorf("%w: project", ErrMissingParam)
	}
	p, ok := u.projects.Get(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProject, slug)
	}
	return p, nil
}

// UpdateStatus probes every route of the site.
func (u *Usecase) UpdateStatus(ctx context.Context, slug string) (*UpdateResult, error) {
	p, err := u.project(slug)
	if err != nil {
		return nil, err
	}
	obs.WithTrace(ctx, u.log).Info("updating all statuses", zap.String("site", slug), zap.Int("routes", len(p.Routes)))

	results := u.engine.ProbeAll(ctx, p)
	return &UpdateResult{
		Message:   fmt.Sprintf("Updated %d routes for %s", len(results), slug),
		Site:      slug,
		Timestamp: u.now(),
		Results:   results,
	}, nil
}

// Report probes one configured route of the site.
func (u *Usecase) Report(ctx context.Context, slug, route string) (*ReportResult, error) {
	p, err := u.project(slug)
	if err != nil {
		return nil, err
	}
	if route == "" {
		return nil, fmt.Errorf("%w: route", ErrMissingParam)
	}
	if !p.HasRoute(route) {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownRoute, slug, route)
	}

	res := &ReportResult{Result: u.engine.ProbeRoute(ctx, p, route)}
	switch res.Result.StatusCode {
	case 401, 403:
		res.Message = "Endpoint requires authentication"
		res.Help = "401 and 403 reflect access policy rather than availability, so the check was not logged."
	case 405:
		res.Message = "Endpoint does not accept GET"
		res.Help = "The route answered 405 Method Not Allowed. It is probably reachable but expects another method."
	}
	return res, nil
}

// Clear deletes every stored log row of the project.
func (u *Usecase) Clear(ctx context.Context, slug, token string) (int64, error) {
	if u.cfg.Production {
		return 0, ErrForbidden
	}
	if _, err := u.project(slug); err != nil {
		return 0, err
	}
	if err := u.admin.Check(token); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	n, err := u.logs.DeleteByProject(ctx, slug)
	if err != nil {
		return 0, fmt.Errorf("clear logs for %s: %w", slug, err)
	}
	obs.WithTrace(ctx, u.log).Info("status logs cleared", zap.String("site", slug), zap.Int64("deleted", n))
	return n, nil
}

// Routes lists the monitored routes with their latest server-side check time.
// An empty slug lists every project.
func (u *Usecase) Routes(ctx context.Context, slug string) (*RoutesResult, error) {
	var projects []*project.Project
	if slug == "" {
		projects = u.projects.All()
	} else {
		p, err := u.project(slug)
		if err != nil {
			return nil, err
		}
		projects = []*project.Project{p}
	}

	out := &RoutesResult{Routes: []statuslog.RouteStatus{}}
	for _, p := range projects {
		latest, err := u.logs.LatestPerRoute(ctx, p.Slug)
		if err != nil {
			return nil, fmt.Errorf("latest logs for %s: %w", p.Slug, err)
		}
		for _, route := range p.Routes {
			rs := statuslog.RouteStatus{ProjectSlug: p.Slug, Path: route}
			if at, ok := latest[route]; ok {
				at := at.UTC()
				rs.LastChecked = &at
			}
			out.Routes = append(out.Routes, rs)
		}
	}
	return out, nil
}
