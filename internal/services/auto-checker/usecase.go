package auto_checker

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/NordCoder/sitestatus/internal/obs"
)

type Config struct {
	StaleWindow  time.Duration
	RequestDelay time.Duration
	// Constrained hosts stretch RequestDelay by ReducedFrequencyFactor.
	Constrained            bool
	ReducedFrequencyFactor int
}

// Pacing is the wait between two consecutive probes.
func (c Config) Pacing() time.Duration {
	if c.Constrained && c.ReducedFrequencyFactor > 1 {
		return c.RequestDelay * time.Duration(c.ReducedFrequencyFactor)
	}
	return c.RequestDelay
}

type TickResult struct {
	Due       int
	Checked   int
	Logged    int
	Failed    int
	Refreshed bool
}

type Usecase struct {
	dash    Dashboard
	snap    *Snapshot
	markers *MarkerStore
	cfg     Config
	log     *zap.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewUsecase(dash Dashboard, snap *Snapshot, markers *MarkerStore, cfg Config, log *zap.Logger) *Usecase {
	return &Usecase{
		dash:    dash,
		snap:    snap,
		markers: markers,
		cfg:     cfg,
		log:     log.With(zap.String("component", "auto_check")),
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

// Refresh reloads the server-known route listing.
func (u *Usecase) Refresh(ctx context.Context) error {
	routes, err := u.dash.Routes(ctx)
	if err != nil {
		return fmt.Errorf("load routes: %w", err)
	}
	u.snap.Replace(routes)
	return nil
}

// Tick probes every due route one at a time. The listing is reloaded only
// when at least one probe produced a stored log row.
func (u *Usecase) Tick(ctx context.Context) (TickResult, error) {
	var res TickResult
	ctx, span := obs.StartSpan(ctx, "auto_checker.uc", "auto_checker.tick")
	var spanErr error
	defer func() { obs.EndSpan(span, spanErr) }()
	log := obs.WithTrace(ctx, u.log)

	if !u.snap.Loaded() {
		if err := u.Refresh(ctx); err != nil {
			spanErr = err
			return res, err
		}
	}

	due := DueRoutes(u.snap.Routes(), u.now(), u.cfg.StaleWindow, u.markers)
	res.Due = len(due)
	span.SetAttributes(attribute.Int("routes.due", len(due)))
	if len(due) == 0 {
		return res, nil
	}

	for i, r := range due {
		if i > 0 {
			if err := u.sleep(ctx, u.cfg.Pacing()); err != nil {
				spanErr = err
				return res, err
			}
		}
		// Marked before the call so a slow probe is not issued twice.
		u.markers.Mark(r.ProjectSlug, r.Path, u.now())

		out, err := u.dash.Report(ctx, r.ProjectSlug, r.Path)
		if err != nil {
			res.Failed++
			log.Warn("auto check failed", zap.String("site", r.ProjectSlug), zap.String("route", r.Path), zap.Error(err))
			if ctx.Err() != nil {
				spanErr = ctx.Err()
				return res, ctx.Err()
			}
			continue
		}
		res.Checked++
		if out.Logged {
			res.Logged++
			u.snap.Advance(r.ProjectSlug, r.Path, u.now())
		}
		log.Debug("auto check done",
			zap.String("site", r.ProjectSlug),
			zap.String("route", r.Path),
			zap.Int("status", out.StatusCode),
			zap.Bool("logged", out.Logged),
		)
	}

	if res.Logged > 0 {
		if err := u.Refresh(ctx); err != nil {
			log.Warn("refresh after auto check", zap.Error(err))
		} else {
			res.Refreshed = true
		}
	}
	span.SetAttributes(attribute.Int("routes.checked", res.Checked), attribute.Int("routes.logged", res.Logged))
	return res, nil
}
