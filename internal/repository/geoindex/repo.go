package geoindex

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/marketsearch/internal/db"
	"github.com/kailas-cloud/marketsearch/internal/domain/catalog"
	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
)

// DefaultKey is the geo set holding vendor coordinates.
const DefaultKey = "geo:vendors"

// store is the consumer interface for geo operations (ISP).
type store interface {
	GeoSearchRadius(ctx context.Context, key string, lng, lat, radiusMiles float64) ([]string, error)
	GeoAdd(ctx context.Context, key string, members []db.GeoMember) error
}

// Repo implements usecase/search.VendorGeoIndex over a Redis geo set.
type Repo struct {
	store store
	key   string
}

// New creates a geo index repository. prefix namespaces the set key.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, key: prefix + DefaultKey}
}

// WithinRadius returns vendor ids within radiusMiles of pt.
func (r *Repo) WithinRadius(ctx context.Context, pt geo.Point, radiusMiles float64) ([]string, error) {
	ids, err := r.store.GeoSearchRadius(ctx, r.key, pt.Lng, pt.Lat, radiusMiles)
	if err != nil {
		return nil, fmt.Errorf("vendors within %.1fmi: %w", radiusMiles, err)
	}
	return ids, nil
}

// Index upserts vendor coordinates. Vendors without a location are skipped.
func (r *Repo) Index(ctx context.Context, vendors []catalog.Vendor) (int, error) {
	members := make([]db.GeoMember, 0, len(vendors))
	for _, v := range vendors {
		if v.Location == nil {
			continue
		}
		members = append(members, db.GeoMember{Name: v.ID, Lng: v.Location.Lng, Lat: v.Location.Lat})
	}
	if err := r.store.GeoAdd(ctx, r.key, members); err != nil {
		return 0, fmt.Errorf("index vendors: %w", err)
	}
	return len(members), nil
}
