package windows

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
	"github.com/kailas-cloud/marketsearch/internal/domain/window"
)

// Service answers nearby sales window queries.
type Service struct {
	store   Store
	timeout time.Duration
	now     func() time.Time
}

// New creates a Service. timeout<=0 disables the per-request deadline.
func New(store Store, timeout time.Duration) *Service {
	return &Service{store: store, timeout: timeout, now: time.Now}
}

// Nearby returns open windows ordered by distance then id, at most request.MaxNearbyWindows.
func (s *Service) Nearby(ctx context.Context, q request.Nearby) ([]window.Hit, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	hits, err := s.store.ActiveWithinRadius(ctx, q.Point, q.RadiusMiles, s.now(), request.MaxNearbyWindows)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("nearby windows: %w: %w", domain.ErrTimeout, err)
		}
		return nil, fmt.Errorf("nearby windows: %w: %w", domain.ErrBackendUnavailable, err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].DistanceMiles != hits[j].DistanceMiles {
			return hits[i].DistanceMiles < hits[j].DistanceMiles
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > request.MaxNearbyWindows {
		hits = hits[:request.MaxNearbyWindows]
	}
	if hits == nil {
		hits = []window.Hit{}
	}
	return hits, nil
}
