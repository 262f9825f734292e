package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/domain/catalog"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
	"github.com/kailas-cloud/marketsearch/internal/logger"
	"github.com/kailas-cloud/marketsearch/internal/metrics"
)

// expansionFactor multiplies the radius for the single retry.
const expansionFactor = 2

// GeoOutcome records how the proximity constraint was applied.
type GeoOutcome struct {
	VendorIDs  map[string]struct{}
	RadiusUsed float64
	Expanded   bool
	// Applied is true only when the vendor restriction is in effect.
	Applied bool
}

// Apply keeps candidates whose vendor is in the outcome's set.
// The input slice is not modified.
func (o GeoOutcome) Apply(items []catalog.Candidate) []catalog.Candidate {
	if !o.Applied {
		return items
	}
	kept := make([]catalog.Candidate, 0, len(items))
	for i := range items {
		if _, ok := o.VendorIDs[items[i].Product.VendorID]; ok {
			kept = append(kept, items[i])
		}
	}
	return kept
}

// Locator applies the proximity constraint with one bounded expansion.
type Locator struct {
	index VendorGeoIndex
}

// NewLocator creates a Locator. A nil index disables geo filtering.
func NewLocator(index VendorGeoIndex) *Locator {
	return &Locator{index: index}
}

// Locate resolves the candidate vendors near the query point. A lookup only
// counts as a hit when it overlaps vendors, so an outcome is never applied
// to an empty result. Empty vendors skips the lookup. Index failures degrade
// to no restriction; deadline expiry fails the request.
func (l *Locator) Locate(ctx context.Context, q *request.Search, vendors map[string]struct{}) (GeoOutcome, error) {
	if q.National || !q.HasPoint() || len(vendors) == 0 || l.index == nil {
		metrics.GeoOutcomesTotal.WithLabelValues(metrics.GeoSkipped).Inc()
		return GeoOutcome{}, nil
	}

	radius := q.RadiusMiles
	for attempt := 0; attempt < 2; attempt++ {
		ids, err := l.index.WithinRadius(ctx, *q.Point, radius)
		if err != nil {
			if interrupted(ctx, err) {
				return GeoOutcome{}, backendError(ctx, "geo lookup", err)
			}
			logger.FromContext(ctx).Warn("geo index unavailable, location filter skipped",
				zap.Float64("radius_miles", radius), zap.Error(err))
			metrics.GeoOutcomesTotal.WithLabelValues(metrics.GeoDegraded).Inc()
			return GeoOutcome{}, nil
		}
		if near := overlap(ids, vendors); len(near) > 0 {
			expanded := attempt > 0
			label := metrics.GeoDirect
			if expanded {
				label = metrics.GeoExpanded
			}
			metrics.GeoOutcomesTotal.WithLabelValues(label).Inc()
			return GeoOutcome{VendorIDs: near, RadiusUsed: radius, Expanded: expanded, Applied: true}, nil
		}
		radius *= expansionFactor
	}

	metrics.GeoOutcomesTotal.WithLabelValues(metrics.GeoAbandoned).Inc()
	return GeoOutcome{}, nil
}

// overlap returns the ids present in vendors.
func overlap(ids []string, vendors map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := vendors[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}
