package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	domcat "github.com/kailas-cloud/marketsearch/internal/domain/catalog"
	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/filter"
)

// querier is the consumer interface over a pgx pool (ISP).
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repo implements usecase/search.CatalogStore over Postgres.
type Repo struct {
	db querier
}

// New creates a catalog repository.
func New(db querier) *Repo {
	return &Repo{db: db}
}

// QueryProducts returns active products matching p, joined with vendors, ordered by id.
func (r *Repo) QueryProducts(ctx context.Context, p filter.Predicate) ([]domcat.Candidate, error) {
	if (p.VendorIDs != nil && len(p.VendorIDs) == 0) || (p.ProductIDs != nil && len(p.ProductIDs) == 0) {
		return []domcat.Candidate{}, nil
	}

	sql, args := buildQuery(p)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []domcat.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

func scanCandidate(row pgx.Row) (domcat.Candidate, error) {
	var (
		c           domcat.Candidate
		description *string
		tags        []string
		city, state *string
		lat, lng    *float64
		vRatingAvg  *float64
		vRatingCnt  *int
	)
	p := &c.Product
	err := row.Scan(
		&p.ID, &p.Name, &description, &tags, &p.Type, &p.Price,
		&p.Pickup, &p.Delivery, &p.Ship, &p.Active, &p.AvailableNow,
		&p.RatingAvg, &p.RatingCount, &p.CreatedAt, &p.VendorID,
		&c.Vendor.Name, &city, &state, &lat, &lng, &vRatingAvg, &vRatingCnt,
	)
	if err != nil {
		return domcat.Candidate{}, fmt.Errorf("scan product: %w", err)
	}
	if description != nil {
		p.Description = *description
	}
	p.Tags = tags
	c.Vendor.ID = p.VendorID
	if city != nil {
		c.Vendor.City = *city
	}
	if state != nil {
		c.Vendor.State = *state
	}
	if lat != nil && lng != nil {
		c.Vendor.Location = &geo.Point{Lat: *lat, Lng: *lng}
	}
	if vRatingAvg != nil {
		c.Vendor.RatingAvg = *vRatingAvg
	}
	if vRatingCnt != nil {
		c.Vendor.RatingCount = *vRatingCnt
	}
	return c, nil
}
