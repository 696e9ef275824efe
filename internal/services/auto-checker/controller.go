package auto_checker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/NordCoder/sitestatus/internal/domain/statuslog"
	kafkax "github.com/NordCoder/sitestatus/internal/repository/kafka"
)

// Controller advances the snapshot from status_logged events so probes
// triggered elsewhere suppress duplicates here.
type Controller struct {
	Log  *zap.Logger
	Sub  *kafkax.Consumer
	Snap *Snapshot
}

func (c *Controller) Handle(_ context.Context, e *statuslog.Entry) error {
	if c.Snap.Advance(e.ProjectSlug, e.RoutePath, e.Timestamp) {
		c.Log.Debug("route advanced", zap.String("site", e.ProjectSlug), zap.String("route", e.RoutePath))
	}
	return nil
}

func (c *Controller) Run(ctx context.Context) error {
	handler := kafkax.StatusLoggedHandler(c.Handle, func(key []byte, err error) {
		c.Log.Warn("skip status_logged event", zap.ByteString("key", key), zap.Error(err))
	})
	if err := c.Sub.Consume(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		c.Log.Warn("kafka consume", zap.Error(err))
		return err
	}
	return ctx.Err()
}
