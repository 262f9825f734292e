// Package fixture serves the catalog, geo index, favorites and sales windows
// from a static YAML dataset. It backs local runs and end-to-end tests.
package fixture

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/marketsearch/internal/domain/catalog"
	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/marketsearch/internal/domain/window"
)

// Favorites are one user's saved vendors and products.
type Favorites struct {
	Vendors  []string `yaml:"vendors"`
	Products []string `yaml:"products"`
}

// Dataset is the on-disk fixture layout.
type Dataset struct {
	Vendors   []catalog.Vendor     `yaml:"vendors"`
	Products  []catalog.Product    `yaml:"products"`
	Windows   []window.SalesWindow `yaml:"windows"`
	Favorites map[string]Favorites `yaml:"favorites"`
}

// Store is an immutable in-memory backend built from a Dataset.
type Store struct {
	vendors    map[string]catalog.Vendor
	vendorIDs  []string
	candidates []catalog.Candidate
	windows    []window.SalesWindow
	favorites  map[string]Favorites
}

// Load reads and indexes a YAML dataset.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return New(ds)
}

// New indexes ds. Products must reference known vendors.
func New(ds Dataset) (*Store, error) {
	s := &Store{
		vendors:   make(map[string]catalog.Vendor, len(ds.Vendors)),
		windows:   ds.Windows,
		favorites: ds.Favorites,
	}
	for _, v := range ds.Vendors {
		if v.ID == "" {
			return nil, fmt.Errorf("vendor without id")
		}
		if _, dup := s.vendors[v.ID]; dup {
			return nil, fmt.Errorf("duplicate vendor %q", v.ID)
		}
		s.vendors[v.ID] = v
		s.vendorIDs = append(s.vendorIDs, v.ID)
	}
	sort.Strings(s.vendorIDs)

	seen := make(map[string]struct{}, len(ds.Products))
	for _, p := range ds.Products {
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product %q", p.ID)
		}
		seen[p.ID] = struct{}{}
		v, ok := s.vendors[p.VendorID]
		if !ok {
			return nil, fmt.Errorf("product %q: unknown vendor %q", p.ID, p.VendorID)
		}
		s.candidates = append(s.candidates, catalog.Candidate{Product: p, Vendor: v})
	}
	sort.Slice(s.candidates, func(i, j int) bool {
		return s.candidates[i].Product.ID < s.candidates[j].Product.ID
	})
	return s, nil
}

// Ping always succeeds unless ctx is done.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// QueryProducts evaluates p over every product, in id order.
func (s *Store) QueryProducts(ctx context.Context, p filter.Predicate) ([]catalog.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]catalog.Candidate, 0)
	for i := range s.candidates {
		if p.Matches(&s.candidates[i]) {
			out = append(out, s.candidates[i])
		}
	}
	return out, nil
}

// WithinRadius returns located vendors within radiusMiles of pt.
func (s *Store) WithinRadius(ctx context.Context, pt geo.Point, radiusMiles float64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids := make([]string, 0)
	for _, id := range s.vendorIDs {
		v := s.vendors[id]
		if v.Location == nil {
			continue
		}
		if geo.HaversineMiles(pt, *v.Location) <= radiusMiles {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// FavoriteVendorIDs returns the vendors userID follows.
func (s *Store) FavoriteVendorIDs(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.favorites[userID].Vendors, nil
}

// FavoriteProductIDs returns the products userID saved.
func (s *Store) FavoriteProductIDs(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.favorites[userID].Products, nil
}

// ActiveWithinRadius returns windows open at now within radiusMiles of pt,
// nearest first (ties by id), at most limit rows.
func (s *Store) ActiveWithinRadius(
	ctx context.Context, pt geo.Point, radiusMiles float64, now time.Time, limit int,
) ([]window.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hits := make([]window.Hit, 0)
	for i := range s.windows {
		w := &s.windows[i]
		if !w.OpenAt(now) {
			continue
		}
		d := geo.HaversineMiles(pt, w.Location)
		if d > radiusMiles {
			continue
		}
		hits = append(hits, window.Hit{SalesWindow: *w, DistanceMiles: d})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].DistanceMiles != hits[j].DistanceMiles {
			return hits[i].DistanceMiles < hits[j].DistanceMiles
		}
		return hits[i].ID < hits[j].ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Vendors returns every vendor, in id order.
func (s *Store) Vendors() []catalog.Vendor {
	out := make([]catalog.Vendor, 0, len(s.vendorIDs))
	for _, id := range s.vendorIDs {
		out = append(out, s.vendors[id])
	}
	return out
}

// FavoriteSets returns the per-user favorites, for seeding Redis.
func (s *Store) FavoriteSets() map[string]Favorites {
	return s.favorites
}
