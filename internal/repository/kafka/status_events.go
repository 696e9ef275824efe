package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/NordCoder/sitestatus/internal/domain/kafka"
	"github.com/NordCoder/sitestatus/internal/domain/statuslog"
)

var ErrBadEvent = errors.New("malformed status_logged event")

// EncodeStatusLogged serializes a persisted log row as a protobuf Struct.
func EncodeStatusLogged(e *statuslog.Entry) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"id":               float64(e.ID),
		"project_slug":     e.ProjectSlug,
		"route_path":       e.RoutePath,
		"status_code":      float64(e.StatusCode),
		"response_time_ms": float64(e.ResponseTimeMs),
		"checked_at":       e.Timestamp.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("build status_logged struct: %w", err)
	}
	return proto.Marshal(s)
}

func DecodeStatusLogged(s *structpb.Struct) (*statuslog.Entry, error) {
	f := s.GetFields()
	slug := f["project_slug"].GetStringValue()
	route := f["route_path"].GetStringValue()
	if slug == "" || route == "" {
		return nil, ErrBadEvent
	}
	at, err := time.Parse(time.RFC3339Nano, f["checked_at"].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("%w: checked_at: %v", ErrBadEvent, err)
	}
	return &statuslog.Entry{
		ID:             int64(f["id"].GetNumberValue()),
		ProjectSlug:    slug,
		RoutePath:      route,
		StatusCode:     int(f["status_code"].GetNumberValue()),
		ResponseTimeMs: int64(f["response_time_ms"].GetNumberValue()),
		Timestamp:      at,
	}, nil
}

func decodeStatusLoggedPayload(payload []byte) (*statuslog.Entry, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(payload, s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEvent, err)
	}
	return DecodeStatusLogged(s)
}

// StatusLoggedHandler adapts handle to the consumer. Malformed events go to
// skip and are committed so they cannot wedge the partition.
func StatusLoggedHandler(handle func(context.Context, *statuslog.Entry) error, skip func(key []byte, err error)) Handler {
	return func(ctx context.Context, key, value []byte) error {
		e, err := decodeStatusLoggedPayload(value)
		if err != nil {
			if skip != nil {
				skip(key, err)
			}
			return nil
		}
		return handle(ctx, e)
	}
}

type StatusEventsKafka struct {
	p *Producer
}

func NewStatusEventsKafka(p *Producer) *StatusEventsKafka { return &StatusEventsKafka{p: p} }

var _ kafka.StatusEvents = (*StatusEventsKafka)(nil)

// PublishStatusLogged keys messages by project so one project's events stay ordered.
func (e *StatusEventsKafka) PublishStatusLogged(ctx context.Context, payload []byte) error {
	entry, err := decodeStatusLoggedPayload(payload)
	if err != nil {
		return err
	}
	return e.p.Publish(ctx, []byte(entry.ProjectSlug), payload)
}
