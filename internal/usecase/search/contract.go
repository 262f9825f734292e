package search

import (
	"context"

	"github.com/kailas-cloud/marketsearch/internal/domain/analytics"
	"github.com/kailas-cloud/marketsearch/internal/domain/catalog"
	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/filter"
)

// CatalogStore evaluates a composite predicate over the product catalog.
// Implementations return candidates with vendors joined, ordered by product id.
type CatalogStore interface {
	QueryProducts(ctx context.Context, p filter.Predicate) ([]catalog.Candidate, error)
}

// VendorGeoIndex answers vendor proximity queries.
type VendorGeoIndex interface {
	WithinRadius(ctx context.Context, pt geo.Point, radiusMiles float64) ([]string, error)
}

// FavoritesStore reads a user's saved vendors and products.
type FavoritesStore interface {
	FavoriteVendorIDs(ctx context.Context, userID string) ([]string, error)
	FavoriteProductIDs(ctx context.Context, userID string) ([]string, error)
}

// EventPublisher hands a search event off for asynchronous delivery. It must not block.
type EventPublisher interface {
	Publish(ev analytics.SearchEvent)
}
