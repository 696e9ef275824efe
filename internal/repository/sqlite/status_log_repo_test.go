package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NordCoder/sitestatus/internal/domain/statuslog"
)

func newRepo(t *testing.T) *StatusLogRepo {
	t.Helper()
	db, err := Open(context.Background(), Config{Path: filepath.Join(t.TempDir(), "status.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStatusLogRepo(db)
}

func TestStatusLogRepo(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	repo.now = func() time.Time { return clock }

	insert := func(slug, route string, code int) *statuslog.Entry {
		e := &statuslog.Entry{ProjectSlug: slug, RoutePath: route, StatusCode: code, ResponseTimeMs: 42}
		require.NoError(t, repo.Insert(ctx, e))
		return e
	}

	first := insert("acme", "/", 200)
	assert.NotZero(t, first.ID)
	assert.Equal(t, base, first.Timestamp)

	clock = base.Add(5 * time.Minute)
	insert("acme", "/", 500)
	clock = base.Add(7 * time.Minute)
	insert("acme", "/docs", 0)
	insert("other", "/", 200)

	latest, err := repo.LatestPerRoute(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, map[string]time.Time{
		"/":     base.Add(5 * time.Minute),
		"/docs": base.Add(7 * time.Minute),
	}, latest)

	n, err := repo.DeleteByProject(ctx, "acme")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	latest, err = repo.LatestPerRoute(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, latest)

	latest, err = repo.LatestPerRoute(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, latest, 1)
}

func TestDeleteUnknownProject(t *testing.T) {
	repo := newRepo(t)
	n, err := repo.DeleteByProject(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, n)
}
