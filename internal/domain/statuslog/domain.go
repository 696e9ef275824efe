package statuslog

import "time"

// Entry is one persisted uptime sample. Rows are append-only.
type Entry struct {
	ID             int64     `json:"id"`
	ProjectSlug    string    `json:"project_slug"`
	RoutePath      string    `json:"route_path"`
	StatusCode     int       `json:"status_code"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

// RouteStatus is the server-known freshness of one monitored route.
type RouteStatus struct {
	ProjectSlug string     `json:"projectSlug"`
	Path        string     `json:"path"`
	LastChecked *time.Time `json:"lastChecked"`
}
