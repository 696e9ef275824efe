package auto_checker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	mChecked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auto_checker_probes_total", Help: "Routes probed through the dashboard",
	})
	mLogged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auto_checker_logged_total", Help: "Probes that stored a status log row",
	})
	mErr = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auto_checker_errors_total", Help: "Failed probes and ticks",
	})
	mRefresh = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auto_checker_refreshes_total", Help: "Route listing reloads after logged probes",
	})
	mTickDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "auto_checker_tick_duration_seconds", Help: "Auto check tick duration",
		Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
	})
)

type Runner struct {
	log   *zap.Logger
	uc    *Usecase
	tick  time.Duration
	prune func(now time.Time) int
}

func NewRunner(log *zap.Logger, uc *Usecase, tick time.Duration) *Runner {
	if tick <= 0 {
		tick = time.Minute
	}
	return &Runner{log: log, uc: uc, tick: tick, prune: uc.markers.Prune}
}

func (r *Runner) once(ctx context.Context) {
	start := time.Now()
	res, err := r.uc.Tick(ctx)
	mTickDur.Observe(time.Since(start).Seconds())
	mChecked.Add(float64(res.Checked))
	mLogged.Add(float64(res.Logged))
	mErr.Add(float64(res.Failed))
	if res.Refreshed {
		mRefresh.Inc()
	}
	if err != nil && ctx.Err() == nil {
		mErr.Inc()
		r.log.Warn("auto check tick", zap.Error(err))
	}
	if res.Due > 0 {
		r.log.Info("auto check batch",
			zap.Int("due", res.Due),
			zap.Int("checked", res.Checked),
			zap.Int("logged", res.Logged),
			zap.Int("failed", res.Failed),
			zap.Bool("refreshed", res.Refreshed),
		)
	}
	r.prune(time.Now())
}

// Run ticks until ctx is done. Ticks never overlap.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	r.once(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.once(ctx)
		}
	}
}
