package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/NordCoder/sitestatus/internal/auth"
	config "github.com/NordCoder/sitestatus/internal/config/dashboard"
	"github.com/NordCoder/sitestatus/internal/domain/project"
	"github.com/NordCoder/sitestatus/internal/httpclient"
	"github.com/NordCoder/sitestatus/internal/obs/retry"
	outboxrunner "github.com/NordCoder/sitestatus/internal/outbox"
	kafkaRepo "github.com/NordCoder/sitestatus/internal/repository/kafka"
	"github.com/NordCoder/sitestatus/internal/services/dashboard/preview"
	"github.com/NordCoder/sitestatus/internal/services/dashboard/status"
)

func configPath() string {
	if p := os.Getenv("DASHBOARD_CONFIG"); p != "" {
		return p
	}
	return "config/dashboard.yaml"
}

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath())
	if err != nil {
		panic(err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting dashboard",
		zap.String("env", cfg.App.Env),
		zap.String("db_driver", cfg.DB.Driver),
		zap.Int("projects", len(cfg.Projects)),
		zap.Bool("kafka", cfg.Kafka.Enable),
	)

	otelShutdown, err := initOTel(rootCtx, cfg)
	if err != nil {
		logger.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	registry, err := project.NewRegistry(cfg.Projects)
	if err != nil {
		logger.Fatal("projects", zap.Error(err))
	}

	st, err := initStore(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer st.close()

	// preview
	validator := preview.NewValidator(registry.Hostnames())
	fetchCfg := preview.FetchConfig{
		MaxRedirects:        cfg.Preview.MaxRedirects,
		UserAgent:           cfg.Preview.UserAgent,
		Timeout:             cfg.Preview.FetchTimeout,
		RedirectDelayMin:    cfg.Preview.RedirectDelayMin,
		RedirectDelayJitter: cfg.Preview.RedirectDelayJitter,
		MaxBodyBytes:        cfg.Preview.MaxBodyBytes,
	}
	previewClient := httpclient.New(httpclient.Config{Timeout: cfg.Preview.FetchTimeout, MaxRedirects: -1, VerifyTLS: true})
	previewUC := preview.NewUsecase(validator, preview.NewFetcher(previewClient, validator, fetchCfg), preview.Config{
		Fetch:           fetchCfg,
		WaitForFullLoad: cfg.Preview.WaitForFullLoad,
		LoadTimeout:     cfg.Preview.LoadTimeout,
		CacheSeconds:    cfg.Preview.CacheSeconds,
	}, logger)

	// status
	probeClient := httpclient.New(httpclient.Config{
		Timeout:      cfg.Probe.Timeout,
		MaxRedirects: cfg.Probe.MaxRedirects,
		VerifyTLS:    true,
		CheckHop:     validator.CheckHop,
	})
	engine := status.NewEngine(
		status.NewHTTPPinger(probeClient, cfg.Probe.UserAgent),
		st.writer,
		status.EngineConfig{Timeout: cfg.Probe.Timeout},
		logger,
	)
	statusUC := status.NewUsecase(registry, engine, st.logs, auth.NewAdminGuard(cfg.Admin.TokenHash),
		status.Config{Production: cfg.App.IsProduction()}, logger)

	// outbox -> kafka
	var (
		runner   *outboxrunner.Runner
		producer *kafkaRepo.Producer
	)
	if st.outbox != nil {
		producer = kafkaRepo.BootstrapProducer(rootCtx, cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		dispatch := outboxrunner.MakeGlobalOutboxHandler(kafkaRepo.NewStatusEventsKafka(producer), retry.OutboxPolicy(logger))
		runner = outboxrunner.NewOutboxRunner(logger, st.outbox, dispatch, cfg.Outbox)
		runner.Start(rootCtx)
	}

	// grpc health
	grpcServer, grpcLn, hs, err := buildGRPCServer(cfg)
	if err != nil {
		logger.Fatal("build grpc", zap.Error(err))
	}
	go watchHealth(rootCtx, hs, st.health, 10*time.Second, logger)

	grpcErrCh := make(chan error, 1)
	go func() { grpcErrCh <- serveGRPC(grpcServer, grpcLn, cfg, logger) }()

	healthClient, healthConn, err := dialHealth(cfg)
	if err != nil {
		logger.Fatal("dial grpc health", zap.Error(err))
	}
	defer func() { _ = healthConn.Close() }()

	// http
	httpSrv, err := buildHTTPServer(cfg, logger, controllers{
		preview: preview.NewController(previewUC, logger),
		status:  status.NewController(statusUC, logger),
	}, healthClient)
	if err != nil {
		logger.Fatal("build http", zap.Error(err))
	}

	httpErrCh := make(chan error, 1)
	go func() { httpErrCh <- serveHTTP(httpSrv, cfg, logger) }()

	var runErr error
	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal", zap.String("reason", "context canceled"))
	case runErr = <-grpcErrCh:
		if runErr != nil {
			logger.Error("grpc serve", zap.Error(runErr))
		}
	case runErr = <-httpErrCh:
		if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
			logger.Error("http serve", zap.Error(runErr))
		}
	}
	stop()

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()

	_ = httpSrv.Shutdown(shCtx)
	grpcServer.GracefulStop()
	if runner != nil {
		runner.Wait()
		_ = producer.Close()
	}
	logger.Info("bye")
}
