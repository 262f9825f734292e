package db

import (
	"context"
	"time"
)

// Store is the Redis-compatible facade combining all sub-interfaces.
// Consumers depend on the narrow sub-interfaces.
type Store interface {
	Pinger
	GeoStore
	SetStore
	StreamStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// GeoMember is a named coordinate in a geo set.
type GeoMember struct {
	Name string
	Lng  float64
	Lat  float64
}

// GeoStore provides radius queries over geo sets.
type GeoStore interface {
	GeoSearchRadius(ctx context.Context, key string, lng, lat, radiusMiles float64) ([]string, error)
	GeoAdd(ctx context.Context, key string, members []GeoMember) error
}

// SetStore provides set membership operations.
type SetStore interface {
	SMembers(ctx context.Context, key string) ([]string, error)
	SAdd(ctx context.Context, key string, members ...string) error
}

// StreamStore appends entries to capped streams.
type StreamStore interface {
	// XAdd appends fields to the stream at key, trimming it to roughly maxLen entries.
	// It returns the generated entry id.
	XAdd(ctx context.Context, key string, maxLen int64, fields map[string]string) (string, error)
}
