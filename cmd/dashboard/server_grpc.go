package main

import (
	"context"
	"net"
	"time"

	grpcprometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	config "github.com/NordCoder/sitestatus/internal/config/dashboard"
	"github.com/NordCoder/sitestatus/internal/obs"
)

const healthService = "sitestatus.dashboard"

func buildGRPCServer(cfg *config.Config) (*grpc.Server, net.Listener, *health.Server, error) {
	grpcMetrics := grpcprometheus.NewServerMetrics()

	opts := obs.GRPCServerOpts()
	opts = append(opts,
		grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)

	grpcServer := grpc.NewServer(opts...)
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, hs)
	reflection.Register(grpcServer)

	grpcMetrics.InitializeMetrics(grpcServer)
	if err := prometheus.Register(grpcMetrics); err != nil {
		return nil, nil, nil, err
	}

	ln, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return nil, nil, nil, err
	}
	return grpcServer, ln, hs, nil
}

func serveGRPC(s *grpc.Server, ln net.Listener, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("grpc listening", zap.String("addr", cfg.Server.GRPCAddr))
	return s.Serve(ln)
}

// watchHealth mirrors database reachability into the gRPC health service.
func watchHealth(ctx context.Context, hs *health.Server, check obs.HealthFunc, every time.Duration, logger *zap.Logger) {
	set := func() {
		hctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		st := grpc_health_v1.HealthCheckResponse_SERVING
		if err := check(hctx); err != nil {
			st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
			logger.Warn("health check failed", zap.Error(err))
		}
		hs.SetServingStatus("", st)
		hs.SetServingStatus(healthService, st)
	}

	set()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-t.C:
			set()
		}
	}
}

// dialHealth connects the HTTP gateway's /healthz to the local gRPC health service.
func dialHealth(cfg *config.Config) (grpc_health_v1.HealthClient, *grpc.ClientConn, error) {
	opts := append(obs.GRPCDialOpts(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	conn, err := grpc.NewClient(cfg.Server.GRPCAddr, opts...)
	if err != nil {
		return nil, nil, err
	}
	return grpc_health_v1.NewHealthClient(conn), conn, nil
}
