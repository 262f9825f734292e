package request

import (
	"net/url"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
)

// MaxNearbyWindows caps the rows returned by a nearby-windows query.
const MaxNearbyWindows = 50

// Nearby is a validated nearby-windows query. Unlike Search, the point is mandatory.
type Nearby struct {
	Point       geo.Point
	RadiusMiles float64
}

// ParseNearby validates lat/lng/radius for the nearby-windows query.
func ParseNearby(v url.Values, d Defaults) (Nearby, error) {
	p := parser{values: v, errs: &domain.ValidationError{}}
	if d.RadiusMiles <= 0 {
		d.RadiusMiles = DefaultRadiusMiles
	}

	if p.raw(ParamLat) == "" {
		p.errs.Add(ParamLat, "is required")
	}
	if p.raw(ParamLng) == "" {
		p.errs.Add(ParamLng, "is required")
	}
	radius := clampFloat(p.float(ParamRadius, d.RadiusMiles), MinRadiusMiles, MaxRadiusMiles)
	pt := p.point()

	if err := p.errs.OrNil(); err != nil {
		return Nearby{}, err
	}
	return Nearby{Point: *pt, RadiusMiles: radius}, nil
}
