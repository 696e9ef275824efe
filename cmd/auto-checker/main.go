package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/NordCoder/sitestatus/internal/config/auto-checker"
	"github.com/NordCoder/sitestatus/internal/httpclient"
	"github.com/NordCoder/sitestatus/internal/obs"
	"github.com/NordCoder/sitestatus/internal/obs/retry"
	kafkaRepo "github.com/NordCoder/sitestatus/internal/repository/kafka"
	autochecker "github.com/NordCoder/sitestatus/internal/services/auto-checker"
)

func configPath() string {
	if p := os.Getenv("AUTO_CHECKER_CONFIG"); p != "" {
		return p
	}
	return "config/auto-checker.yaml"
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(cfg.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	if !cfg.AutoCheck.Enabled {
		l.Info("auto check disabled, exiting")
		return
	}
	l.Info("starting auto-checker",
		zap.String("dashboard", cfg.Dashboard.BaseURL),
		zap.Duration("stale_window", cfg.AutoCheck.StaleWindow),
		zap.Duration("pacing", autochecker.Config{
			RequestDelay:           cfg.AutoCheck.RequestDelay,
			Constrained:            cfg.AutoCheck.Constrained,
			ReducedFrequencyFactor: cfg.AutoCheck.ReducedFrequencyFactor,
		}.Pacing()),
	)

	// otel
	otelCloser, err := obs.SetupOTel(ctx, cfg.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// wiring
	client := httpclient.New(httpclient.Config{Timeout: cfg.Dashboard.Timeout, VerifyTLS: true})
	client.Timeout = cfg.Dashboard.Timeout
	dash := autochecker.NewDashboardClient(cfg.Dashboard.BaseURL, client, retry.DashboardPolicy(l))

	snap := autochecker.NewSnapshot()
	markers := autochecker.NewMarkerStore(cfg.AutoCheck.StaleWindow)
	uc := autochecker.NewUsecase(dash, snap, markers, autochecker.Config{
		StaleWindow:            cfg.AutoCheck.StaleWindow,
		RequestDelay:           cfg.AutoCheck.RequestDelay,
		Constrained:            cfg.AutoCheck.Constrained,
		ReducedFrequencyFactor: cfg.AutoCheck.ReducedFrequencyFactor,
	}, l)
	runner := autochecker.NewRunner(l, uc, cfg.AutoCheck.Tick)

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, nil, l)

	// run
	errCh := make(chan error, 2)
	go func() { errCh <- runner.Run(ctx) }()

	var consumer *kafkaRepo.Consumer
	if cfg.Kafka.Enable {
		consumer = kafkaRepo.BootstrapConsumer(ctx, &kafkaRepo.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.GroupID,
			Topic:   cfg.Kafka.Topic,
		}, l)
		ctrl := &autochecker.Controller{Log: l, Sub: consumer, Snap: snap}
		go func() { errCh <- ctrl.Run(ctx) }()
	}

	l.Info("auto-checker started")

	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			l.Error("runner error", zap.Error(err))
		}
	}
	stop()

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	if consumer != nil {
		_ = consumer.Close()
	}
	l.Info("bye")
}
