package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	config "github.com/NordCoder/sitestatus/internal/config/dashboard"
	"github.com/NordCoder/sitestatus/internal/domain/outbox"
	"github.com/NordCoder/sitestatus/internal/domain/statuslog"
	"github.com/NordCoder/sitestatus/internal/obs"
	pg "github.com/NordCoder/sitestatus/internal/repository/postgres"
	"github.com/NordCoder/sitestatus/internal/repository/sqlite"
	"github.com/NordCoder/sitestatus/internal/services/dashboard/status"
)

// store is everything the handlers need from persistence.
type store struct {
	logs statuslog.Repo
	// writer is logs, or an outbox-backed recorder when events are published.
	writer statuslog.Writer
	// outbox is nil unless status events go to Kafka.
	outbox outbox.Repository
	health obs.HealthFunc
	close  func()
}

func initStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store, error) {
	switch cfg.DB.Driver {
	case "sqlite":
		db, err := sqlite.Open(ctx, sqlite.Config{
			Path:         cfg.DB.DSN,
			MaxConns:     int(cfg.DB.MaxConns),
			QueryTimeout: cfg.DB.QueryTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if cfg.Kafka.Enable {
			logger.Warn("kafka publishing needs the postgres outbox; status events are disabled with sqlite")
		}
		logs := sqlite.NewStatusLogRepo(db)
		return &store{
			logs:   logs,
			writer: logs,
			health: db.Ping,
			close:  func() { _ = db.Close() },
		}, nil

	default:
		db, err := pg.New(ctx, cfg.DB.Config)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		logs := pg.NewStatusLogRepo(db)
		st := &store{logs: logs, writer: logs, health: db.Ping, close: db.Close}
		if cfg.Kafka.Enable {
			st.outbox = pg.NewOutboxRepo(db)
			st.writer = status.NewOutboxRecorder(pg.NewTransactor(db, logger), logs, st.outbox)
		}
		return st, nil
	}
}
