package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
)

func TestInit_EmptyDSN(t *testing.T) {
	flush, err := Init(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	flush()
}

func TestInit_InvalidDSN(t *testing.T) {
	flush, err := Init(Config{DSN: "not-a-dsn"})
	if err == nil {
		t.Fatal("expected error for invalid DSN")
	}
	if flush == nil {
		t.Fatal("flush must never be nil")
	}
	flush()
}

type recordingTransport struct {
	events []*sentry.Event
}

func (r *recordingTransport) Flush(_ time.Duration) bool { return true }
func (r *recordingTransport) FlushWithContext(_ context.Context) bool { return true }
func (r *recordingTransport) Configure(_ sentry.ClientOptions) {}
func (r *recordingTransport) SendEvent(e *sentry.Event) { r.events = append(r.events, e) }
func (r *recordingTransport) Close() {}

func TestCaptureError_UsesContextHub(t *testing.T) {
	tr := &recordingTransport{}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:       "https://public@example.com/1",
		Transport: tr,
	})
	if err != nil {
		t.Fatal(err)
	}
	hub := sentry.NewHub(client, sentry.NewScope())
	ctx := sentry.SetHubOnContext(context.Background(), hub)

	SetUser(ctx, "u1")
	CaptureError(ctx, errors.New("catalog down"))

	if len(tr.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(tr.events))
	}
	if tr.events[0].User.ID != "u1" {
		t.Errorf("expected user u1, got %+v", tr.events[0].User)
	}
}
