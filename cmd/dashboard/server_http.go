package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc/health/grpc_health_v1"

	config "github.com/NordCoder/sitestatus/internal/config/dashboard"
	"github.com/NordCoder/sitestatus/internal/obs"
	"github.com/NordCoder/sitestatus/internal/services/dashboard/favicon"
	"github.com/NordCoder/sitestatus/internal/services/dashboard/preview"
	"github.com/NordCoder/sitestatus/internal/services/dashboard/status"
)

type controllers struct {
	preview *preview.Controller
	status  *status.Controller
}

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, c controllers, healthClient grpc_health_v1.HealthClient) (*http.Server, error) {
	mux := runtime.NewServeMux(runtime.WithHealthzEndpoint(healthClient))

	routes := []struct {
		method, path string
		h            runtime.HandlerFunc
	}{
		{http.MethodGet, "/preview", c.preview.Preview},
		{http.MethodPost, "/updateStatus/{site}", c.status.UpdateStatus},
		{http.MethodPost, "/report", c.status.Report},
		{http.MethodPost, "/status/clear", c.status.Clear},
		{http.MethodGet, "/status/routes", c.status.Routes},
		{http.MethodGet, "/favicon.ico", favicon.Handler},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.path, rt.h); err != nil {
			return nil, fmt.Errorf("register %s %s: %w", rt.method, rt.path, err)
		}
	}

	root := http.NewServeMux()
	root.Handle("/", mux)
	root.Handle("/metrics", promhttp.Handler())

	handler := obs.Recover(logger)(obs.AccessLog(logger)(root))

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           obs.HTTPHandler(handler, "dashboard"),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}, nil
}

func serveHTTP(srv *http.Server, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
	return srv.ListenAndServe()
}
