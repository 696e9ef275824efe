package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/NordCoder/sitestatus/internal/domain/statuslog"
)

var _ statuslog.Repo = (*StatusLogRepo)(nil)

type StatusLogRepo struct{ db *DB }

func NewStatusLogRepo(db *DB) *StatusLogRepo { return &StatusLogRepo{db: db} }

const (
	qInsertLog = `
INSERT INTO status_logs (project_slug, route_path, status_code, response_time_ms)
VALUES ($1, $2, $3, $4)
RETURNING id, checked_at;`

	qDeleteLogs = `DELETE FROM status_logs WHERE project_slug = $1;`

	qLatestPerRoute = `
SELECT DISTINCT ON (route_path) route_path, checked_at
FROM status_logs
WHERE project_slug = $1
ORDER BY route_path, checked_at DESC;`
)

func (r *StatusLogRepo) Insert(ctx context.Context, e *statuslog.Entry) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.execQueryer(ctx).QueryRow(ctx, qInsertLog, e.ProjectSlug, e.RoutePath, e.StatusCode, e.ResponseTimeMs)
	if err := row.Scan(&e.ID, &e.Timestamp); err != nil {
		return fmt.Errorf("insert status log: %w", err)
	}
	return nil
}

func (r *StatusLogRepo) DeleteByProject(ctx context.Context, slug string) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qDeleteLogs, slug)
	if err != nil {
		return 0, fmt.Errorf("delete status logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *StatusLogRepo) LatestPerRoute(ctx context.Context, slug string) (map[string]time.Time, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qLatestPerRoute, slug)
	if err != nil {
		return nil, fmt.Errorf("latest per route: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var (
			route string
			at    time.Time
		)
		if err := rows.Scan(&route, &at); err != nil {
			return nil, fmt.Errorf("latest per route scan: %w", err)
		}
		out[route] = at.UTC()
	}
	return out, rows.Err()
}
