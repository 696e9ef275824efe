package statuslog

import (
	"context"
	"time"
)

type Writer interface {
	Insert(ctx context.Context, e *Entry) error
}

type Repo interface {
	Writer
	DeleteByProject(ctx context.Context, slug string) (int64, error)
	LatestPerRoute(ctx context.Context, slug string) (map[string]time.Time, error)
}
