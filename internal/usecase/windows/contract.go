package windows

import (
	"context"
	"time"

	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
	"github.com/kailas-cloud/marketsearch/internal/domain/window"
)

// Store finds sales windows open at now within a radius of pt.
type Store interface {
	ActiveWithinRadius(
		ctx context.Context, pt geo.Point, radiusMiles float64, now time.Time, limit int,
	) ([]window.Hit, error)
}
