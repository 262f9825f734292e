package windows

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
	"github.com/kailas-cloud/marketsearch/internal/domain/window"
)

const activeWithinRadius = `SELECT sw.id, sw.name, sw.type, sw.address_text,
       sw.fulfill_start_at, sw.fulfill_end_at, sw.vendor_id, vp.store_name,
       ST_Y(sw.geo_point::geometry), ST_X(sw.geo_point::geometry), sw.status,
       ST_DistanceSphere(sw.geo_point::geometry, ST_MakePoint($1, $2)) AS distance_meters
FROM sales_windows sw
JOIN vendor_profiles vp ON vp.id = sw.vendor_id
WHERE sw.status = $3
  AND sw.geo_point IS NOT NULL
  AND sw.fulfill_start_at <= $4
  AND sw.fulfill_end_at >= $4
  AND ST_DWithin(sw.geo_point, ST_MakePoint($1, $2)::geography, $5)
ORDER BY distance_meters ASC, sw.id ASC
LIMIT $6`

// querier is the consumer interface over a pgx pool (ISP).
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repo implements usecase/windows.Store over PostGIS.
type Repo struct {
	db querier
}

// New creates a sales window repository.
func New(db querier) *Repo {
	return &Repo{db: db}
}

// ActiveWithinRadius returns ACTIVE windows open at now within radiusMiles of pt.
func (r *Repo) ActiveWithinRadius(
	ctx context.Context, pt geo.Point, radiusMiles float64, now time.Time, limit int,
) ([]window.Hit, error) {
	rows, err := r.db.Query(ctx, activeWithinRadius,
		pt.Lng, pt.Lat, window.StatusActive, now, geo.MilesToMeters(radiusMiles), limit)
	if err != nil {
		return nil, fmt.Errorf("query sales windows: %w", err)
	}
	defer rows.Close()

	var out []window.Hit
	for rows.Next() {
		var (
			h      window.Hit
			meters float64
		)
		if err := rows.Scan(
			&h.ID, &h.Name, &h.Type, &h.AddressText,
			&h.FulfillStartAt, &h.FulfillEndAt, &h.VendorID, &h.VendorName,
			&h.Location.Lat, &h.Location.Lng, &h.Status, &meters,
		); err != nil {
			return nil, fmt.Errorf("scan sales window: %w", err)
		}
		h.DistanceMiles = meters / geo.MetersPerMile
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales windows: %w", err)
	}
	return out, nil
}
