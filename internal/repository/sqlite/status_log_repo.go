package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/NordCoder/sitestatus/internal/domain/statuslog"
)

var _ statuslog.Repo = (*StatusLogRepo)(nil)

// timeLayout is fixed width so that lexical order matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type StatusLogRepo struct {
	db  *DB
	now func() time.Time
}

func NewStatusLogRepo(db *DB) *StatusLogRepo {
	return &StatusLogRepo{db: db, now: time.Now}
}

func (r *StatusLogRepo) Insert(ctx context.Context, e *statuslog.Entry) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	at := r.now().UTC()
	res, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO status_logs (project_slug, route_path, status_code, response_time_ms, checked_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ProjectSlug, e.RoutePath, e.StatusCode, e.ResponseTimeMs, at.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert status log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert status log id: %w", err)
	}
	e.ID = id
	e.Timestamp = at
	return nil
}

func (r *StatusLogRepo) DeleteByProject(ctx context.Context, slug string) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	res, err := r.db.sql.ExecContext(ctx, `DELETE FROM status_logs WHERE project_slug = ?`, slug)
	if err != nil {
		return 0, fmt.Errorf("delete status logs: %w", err)
	}
	return res.RowsAffected()
}

func (r *StatusLogRepo) LatestPerRoute(ctx context.Context, slug string) (map[string]time.Time, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT route_path, MAX(checked_at) FROM status_logs WHERE project_slug = ? GROUP BY route_path`, slug)
	if err != nil {
		return nil, fmt.Errorf("latest per route: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var route, raw string
		if err := rows.Scan(&route, &raw); err != nil {
			return nil, fmt.Errorf("latest per route scan: %w", err)
		}
		at, err := time.Parse(timeLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("latest per route %q: %w", route, err)
		}
		out[route] = at
	}
	return out, rows.Err()
}
