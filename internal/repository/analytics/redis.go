package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	domanalytics "github.com/kailas-cloud/marketsearch/internal/domain/analytics"
)

// DefaultStream is the Redis stream receiving search events.
const DefaultStream = "search:events"

// streamStore is the consumer interface for stream appends (ISP).
type streamStore interface {
	XAdd(ctx context.Context, key string, maxLen int64, fields map[string]string) (string, error)
}

// StreamSink appends events to a capped Redis stream.
type StreamSink struct {
	store  streamStore
	key    string
	maxLen int64
}

// NewStreamSink creates a stream sink. maxLen<=0 leaves the stream uncapped.
func NewStreamSink(s streamStore, key string, maxLen int64) *StreamSink {
	if key == "" {
		key = DefaultStream
	}
	return &StreamSink{store: s, key: key, maxLen: maxLen}
}

// Name identifies the sink in metrics.
func (s *StreamSink) Name() string { return "redis" }

// Record appends the event. The normalized query is stored as JSON.
func (s *StreamSink) Record(ctx context.Context, ev domanalytics.SearchEvent) error {
	query, err := json.Marshal(ev.Query)
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}
	fields := map[string]string{
		"id":              ev.ID,
		"user_id":         ev.UserID,
		"query":           string(query),
		"result_count":    strconv.Itoa(ev.ResultCount),
		"took_ms":         strconv.FormatInt(ev.TookMs, 10),
		"timestamp":       ev.Timestamp.Format(time.RFC3339Nano),
		"expanded_radius": strconv.FormatBool(ev.ExpandedRadius),
	}
	if _, err := s.store.XAdd(ctx, s.key, s.maxLen, fields); err != nil {
		return fmt.Errorf("append search event: %w", err)
	}
	return nil
}
