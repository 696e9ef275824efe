package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/NordCoder/sitestatus/internal/domain/probe"
	"github.com/NordCoder/sitestatus/internal/domain/project"
	"github.com/NordCoder/sitestatus/internal/domain/statuslog"
	"github.com/NordCoder/sitestatus/internal/obs"
)

var (
	routeProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "route_probes_total",
		Help: "Route probes by result (ok, failed, ignored, transport_error, blocked, skipped).",
	}, []string{"result"})
	routeProbeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_probe_duration_seconds",
		Help:    "Time to first response for a route probe.",
		Buckets: prometheus.DefBuckets,
	})
	statusLogWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "status_log_write_failures_total",
		Help: "Status log rows that could not be persisted.",
	})
)

type EngineConfig struct {
	Timeout time.Duration
}

// Engine checks a project's routes one after another and records the loggable outcomes.
type Engine struct {
	pinger Pinger
	logs   statuslog.Writer
	cfg    EngineConfig
	log    *zap.Logger
}

func NewEngine(p Pinger, logs statuslog.Writer, cfg EngineConfig, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{pinger: p, logs: logs, cfg: cfg, log: log.With(zap.String("component", "probe"))}
}

// ProbeAll returns one outcome per route, in route-list order.
func (e *Engine) ProbeAll(ctx context.Context, p *project.Project) []probe.Outcome {
	ctx, span := obs.StartSpan(ctx, "status.engine", "status.probe_all",
		attribute.String("project.slug", p.Slug),
		attribute.Int("project.routes", len(p.Routes)),
	)
	defer span.End()

	out := make([]probe.Outcome, 0, len(p.Routes))
	for _, route := range p.Routes {
		out = append(out, e.ProbeRoute(ctx, p, route))
	}
	return out
}

func (e *Engine) ProbeRoute(ctx context.Context, p *project.Project, route string) probe.Outcome {
	log := obs.WithTrace(ctx, e.log).With(zap.String("site", p.Slug), zap.String("route", route))

	if project.Classify(route) == project.RouteTemplated {
		routeProbes.WithLabelValues("skipped").Inc()
		log.Info("dynamic route skipped")
		return probe.Outcome{Route: route, StatusCode: probe.StatusSkipped, Error: probe.SkippedReason}
	}

	ctx, span := obs.StartSpan(ctx, "status.engine", "status.probe_route",
		attribute.String("project.slug", p.Slug),
		attribute.String("route", route),
	)
	defer span.End()

	pctx, cancel := ctx, context.CancelFunc(func() {})
	if e.cfg.Timeout > 0 {
		pctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
	}
	start := time.Now()
	res, err := e.pinger.Ping(pctx, p.Target(route))
	elapsed := time.Since(start)
	cancel()
	routeProbeDuration.Observe(elapsed.Seconds())

	o := probe.Outcome{Route: route, ResponseTimeMs: elapsed.Milliseconds()}
	if err != nil {
		o.StatusCode = probe.StatusTransportError
		o.Error = e.transportError(err)
		// Connection failures are always part of the uptime history.
		o.Loggable = true
		routeProbes.WithLabelValues("transport_error").Inc()
		span.RecordError(err)
	} else if res.Blocked != nil {
		// A hop outside the allow-list says nothing about availability.
		o.StatusCode = res.StatusCode
		o.Redirected = true
		o.Error = "redirect target blocked"
		routeProbes.WithLabelValues("blocked").Inc()
		log.Warn("redirect target blocked", zap.Int("status", res.StatusCode), zap.Error(res.Blocked))
	} else {
		o.StatusCode = res.StatusCode
		o.Success = res.StatusCode >= 200 && res.StatusCode <= 399
		o.MethodMismatch = res.StatusCode == 405
		o.Loggable = !probe.IsIgnoredStatus(res.StatusCode)
		if res.Redirected {
			o.Redirected = true
			o.RedirectLocation = res.FinalURL
		}
		routeProbes.WithLabelValues(resultLabel(o)).Inc()
	}
	span.SetAttributes(attribute.Int("http.status_code", o.StatusCode), attribute.Bool("probe.loggable", o.Loggable))

	if o.Loggable {
		if werr := e.record(ctx, p.Slug, &o); werr != nil {
			statusLogWriteFailures.Inc()
			log.Warn("status log write failed", zap.Int("status", o.StatusCode), zap.Error(werr))
			if o.Error == "" {
				o.Error = "status log write failed"
			}
		} else {
			o.Logged = true
		}
	}

	log.Info("route checked",
		zap.Int("status", o.StatusCode),
		zap.Int64("response_ms", o.ResponseTimeMs),
		zap.Bool("logged", o.Logged),
	)
	return o
}

func (e *Engine) record(ctx context.Context, slug string, o *probe.Outcome) error {
	return e.logs.Insert(ctx, &statuslog.Entry{
		ProjectSlug:    slug,
		RoutePath:      o.Route,
		StatusCode:     o.StatusCode,
		ResponseTimeMs: o.ResponseTimeMs,
	})
}

func (e *Engine) transportError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) && e.cfg.Timeout > 0 {
		return fmt.Sprintf("timeout after %s", e.cfg.Timeout)
	}
	return err.Error()
}

func resultLabel(o probe.Outcome) string {
	switch {
	case !o.Loggable:
		return "ignored"
	case o.Success:
		return "ok"
	default:
		return "failed"
	}
}
