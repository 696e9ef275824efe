package status

import (
	"context"
	"fmt"

	"github.com/NordCoder/sitestatus/internal/domain/outbox"
	"github.com/NordCoder/sitestatus/internal/domain/statuslog"
	"github.com/NordCoder/sitestatus/internal/repository/kafka"
	"github.com/NordCoder/sitestatus/internal/repository/postgres"
)

// OutboxRecorder writes a status log row and its status_logged event in one transaction.
type OutboxRecorder struct {
	tx     postgres.Transactor
	logs   statuslog.Writer
	outbox outbox.Repository
}

var _ statuslog.Writer = (*OutboxRecorder)(nil)

func NewOutboxRecorder(tx postgres.Transactor, logs statuslog.Writer, ob outbox.Repository) *OutboxRecorder {
	return &OutboxRecorder{tx: tx, logs: logs, outbox: ob}
}

func (r *OutboxRecorder) Insert(ctx context.Context, e *statuslog.Entry) error {
	return r.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := r.logs.Insert(txCtx, e); err != nil {
			return fmt.Errorf("insert status log: %w", err)
		}
		payload, err := kafka.EncodeStatusLogged(e)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("status_logged:%d", e.ID)
		if err := r.outbox.Enqueue(txCtx, key, outbox.KindStatusLogged, payload); err != nil {
			return fmt.Errorf("enqueue status_logged: %w", err)
		}
		return nil
	})
}
