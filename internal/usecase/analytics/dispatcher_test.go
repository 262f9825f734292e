package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	domanalytics "github.com/kailas-cloud/marketsearch/internal/domain/analytics"
	"github.com/kailas-cloud/marketsearch/internal/metrics"
)

// --- Mocks ---

type mockSink struct {
	name    string
	err     error
	gate    chan struct{}
	mu      sync.Mutex
	got     []domanalytics.SearchEvent
	records chan struct{}
}

func newMockSink(name string) *mockSink {
	return &mockSink{name: name, records: make(chan struct{}, 16)}
}

func (m *mockSink) Record(_ context.Context, ev domanalytics.SearchEvent) error {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	m.got = append(m.got, ev)
	m.mu.Unlock()
	m.records <- struct{}{}
	return m.err
}

func (m *mockSink) Name() string { return m.name }

func waitRecord(t *testing.T, s *mockSink) {
	t.Helper()
	select {
	case <-s.records:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sink")
	}
}

// --- Tests ---

func TestDispatcher_Delivers(t *testing.T) {
	sink := newMockSink("test-sent")
	d, err := NewDispatcher(sink, 2, time.Second, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = d.Close(time.Second) }()

	d.Publish(domanalytics.SearchEvent{ID: "e1"})
	waitRecord(t, sink)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.got) != 1 || sink.got[0].ID != "e1" {
		t.Errorf("unexpected events: %+v", sink.got)
	}
}

func TestDispatcher_SinkErrorIsCounted(t *testing.T) {
	sink := newMockSink("test-failed")
	sink.err = errors.New("broker down")
	d, err := NewDispatcher(sink, 1, time.Second, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	d.Publish(domanalytics.SearchEvent{ID: "e1"})
	waitRecord(t, sink)
	if err := d.Close(time.Second); err != nil {
		t.Fatal(err)
	}

	if v := testutil.ToFloat64(metrics.AnalyticsEventsTotal.WithLabelValues("test-failed", metrics.AnalyticsFailed)); v != 1 {
		t.Errorf("expected 1 failed event, got %v", v)
	}
}

func TestDispatcher_FullPoolDrops(t *testing.T) {
	sink := newMockSink("test-dropped")
	sink.gate = make(chan struct{})
	d, err := NewDispatcher(sink, 1, time.Second, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	d.Publish(domanalytics.SearchEvent{ID: "busy"})
	d.Publish(domanalytics.SearchEvent{ID: "dropped"})
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Publish must not block")
	}

	if v := testutil.ToFloat64(metrics.AnalyticsEventsTotal.WithLabelValues("test-dropped", metrics.AnalyticsDropped)); v != 1 {
		t.Errorf("expected 1 dropped event, got %v", v)
	}

	close(sink.gate)
	waitRecord(t, sink)
	_ = d.Close(time.Second)
}

func TestNewDispatcher_InvalidSize(t *testing.T) {
	if _, err := NewDispatcher(newMockSink("x"), 0, 0, zap.NewNop()); err == nil {
		t.Error("expected error for zero pool size")
	}
}
