package kafka

import "context"

// StatusEvents publishes already-encoded status_logged payloads.
type StatusEvents interface {
	PublishStatusLogged(ctx context.Context, payload []byte) error
}
