package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	domanalytics "github.com/kailas-cloud/marketsearch/internal/domain/analytics"
	"github.com/kailas-cloud/marketsearch/internal/metrics"
)

// Dispatcher delivers events on a bounded worker pool without blocking the caller.
// When every worker is busy the event is dropped.
type Dispatcher struct {
	pool    *ants.Pool
	sink    Sink
	timeout time.Duration
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher with size workers. timeout bounds each Record call.
func NewDispatcher(sink Sink, size int, timeout time.Duration, logger *zap.Logger) (*Dispatcher, error) {
	if size <= 0 {
		return nil, fmt.Errorf("analytics pool size must be positive, got %d", size)
	}
	pool, err := ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p any) {
			logger.Error("analytics worker panic", zap.Any("panic", p))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create analytics pool: %w", err)
	}
	return &Dispatcher{pool: pool, sink: sink, timeout: timeout, logger: logger}, nil
}

// Publish schedules ev for delivery and returns immediately.
func (d *Dispatcher) Publish(ev domanalytics.SearchEvent) {
	err := d.pool.Submit(func() { d.deliver(ev) })
	if err == nil {
		return
	}
	metrics.AnalyticsEventsTotal.WithLabelValues(d.sink.Name(), metrics.AnalyticsDropped).Inc()
	if !errors.Is(err, ants.ErrPoolOverload) {
		d.logger.Warn("analytics event not scheduled", zap.String("event_id", ev.ID), zap.Error(err))
		return
	}
	d.logger.Debug("analytics pool full, event dropped", zap.String("event_id", ev.ID))
}

func (d *Dispatcher) deliver(ev domanalytics.SearchEvent) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	if err := d.sink.Record(ctx, ev); err != nil {
		metrics.AnalyticsEventsTotal.WithLabelValues(d.sink.Name(), metrics.AnalyticsFailed).Inc()
		d.logger.Warn("analytics sink failed",
			zap.String("sink", d.sink.Name()), zap.String("event_id", ev.ID), zap.Error(err))
		return
	}
	metrics.AnalyticsEventsTotal.WithLabelValues(d.sink.Name(), metrics.AnalyticsSent).Inc()
}

// Close waits up to timeout for in-flight deliveries and releases the pool.
func (d *Dispatcher) Close(timeout time.Duration) error {
	if err := d.pool.ReleaseTimeout(timeout); err != nil {
		return fmt.Errorf("release analytics pool: %w", err)
	}
	return nil
}
