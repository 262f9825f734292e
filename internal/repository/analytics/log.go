package analytics

import (
	"context"

	"go.uber.org/zap"

	domanalytics "github.com/kailas-cloud/marketsearch/internal/domain/analytics"
)

// LogSink writes events as structured log lines.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink that logs through logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Name identifies the sink in metrics.
func (s *LogSink) Name() string { return "log" }

// Record logs the event at info level.
func (s *LogSink) Record(_ context.Context, ev domanalytics.SearchEvent) error {
	s.logger.Info("search_event",
		zap.String("event_id", ev.ID),
		zap.String("user_id", ev.UserID),
		zap.String("term", ev.Query.Term),
		zap.String("sort", string(ev.Query.Sort)),
		zap.Int("result_count", ev.ResultCount),
		zap.Int64("took_ms", ev.TookMs),
		zap.Bool("expanded_radius", ev.ExpandedRadius),
		zap.Time("timestamp", ev.Timestamp),
	)
	return nil
}

// NopSink discards events.
type NopSink struct{}

// Name identifies the sink in metrics.
func (NopSink) Name() string { return "none" }

// Record does nothing.
func (NopSink) Record(context.Context, domanalytics.SearchEvent) error { return nil }
