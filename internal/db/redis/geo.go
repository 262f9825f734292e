package redis

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/marketsearch/internal/db"
)

// GeoSearchRadius returns members of the geo set within radiusMiles of (lng, lat),
// nearest first.
func (s *Store) GeoSearchRadius(
	ctx context.Context, key string, lng, lat, radiusMiles float64,
) ([]string, error) {
	if radiusMiles <= 0 {
		return nil, fmt.Errorf("radius must be positive")
	}
	cmd := s.b().Arbitrary(db.OpGeoSearch).Keys(key).Args(
		"FROMLONLAT", formatFloat(lng), formatFloat(lat),
		"BYRADIUS", formatFloat(radiusMiles), "mi",
		"ASC",
	).Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpGeoSearch, Err: err}
	}
	return members, nil
}

// GeoAdd upserts members into the geo set.
func (s *Store) GeoAdd(ctx context.Context, key string, members []db.GeoMember) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]string, 0, len(members)*3)
	for _, m := range members {
		args = append(args, formatFloat(m.Lng), formatFloat(m.Lat), m.Name)
	}
	cmd := s.b().Arbitrary(db.OpGeoAdd).Keys(key).Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpGeoAdd, Err: err}
	}
	return nil
}
