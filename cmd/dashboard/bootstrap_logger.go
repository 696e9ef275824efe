package main

import (
	"go.uber.org/zap"

	config "github.com/NordCoder/sitestatus/internal/config/dashboard"
	"github.com/NordCoder/sitestatus/internal/obs"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return obs.NewLogger(cfg.AsLoggerConfig())
}
