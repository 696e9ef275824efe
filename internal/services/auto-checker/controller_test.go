package auto_checker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NordCoder/sitestatus/internal/domain/statuslog"
	kafkax "github.com/NordCoder/sitestatus/internal/repository/kafka"
)

func TestControllerAdvancesSnapshot(t *testing.T) {
	snap := NewSnapshot()
	snap.Replace([]statuslog.RouteStatus{{ProjectSlug: "acme", Path: "/", LastChecked: ago(time.Hour)}})
	c := &Controller{Log: zap.NewNop(), Snap: snap}

	payload, err := kafkax.EncodeStatusLogged(&statuslog.Entry{
		ID: 7, ProjectSlug: "acme", RoutePath: "/", StatusCode: 200, Timestamp: t0,
	})
	require.NoError(t, err)

	var skipped int
	h := kafkax.StatusLoggedHandler(c.Handle, func([]byte, error) { skipped++ })
	require.NoError(t, h(context.Background(), []byte("acme"), payload))
	assert.True(t, snap.Routes()[0].LastChecked.Equal(t0))

	older, err := kafkax.EncodeStatusLogged(&statuslog.Entry{
		ID: 6, ProjectSlug: "acme", RoutePath: "/", StatusCode: 200, Timestamp: t0.Add(-time.Minute),
	})
	require.NoError(t, err)
	require.NoError(t, h(context.Background(), []byte("acme"), older))
	assert.True(t, snap.Routes()[0].LastChecked.Equal(t0))

	assert.NoError(t, h(context.Background(), nil, []byte{0xff, 0x01}))
	assert.Equal(t, 1, skipped)
}
