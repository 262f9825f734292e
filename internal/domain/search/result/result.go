package result

import (
	"github.com/kailas-cloud/marketsearch/internal/domain/catalog"
)

// ProductHit is a ranked product as returned to the caller.
type ProductHit struct {
	catalog.Product
	Vendor     catalog.Vendor `json:"vendor"`
	IsFavorite bool           `json:"isFavorite"`
	// DistanceMiles is set when the query carried a point and the vendor has a location.
	DistanceMiles *float64 `json:"distanceMiles,omitempty"`
}

// Meta describes the page and how the result was produced.
type Meta struct {
	Total          int     `json:"total"`
	Page           int     `json:"page"`
	PageSize       int     `json:"pageSize"`
	TotalPages     int     `json:"totalPages"`
	TookMs         int64   `json:"tookMs"`
	ExpandedRadius bool    `json:"expandedRadius"`
	RadiusUsed     float64 `json:"radiusUsed,omitempty"`
	GeoFiltered    bool    `json:"geoFiltered"`
	RankStrategy   string  `json:"rankStrategy"`
}

// Search is the assembled response of a search request.
type Search struct {
	Products []ProductHit `json:"products"`
	Facets   Facets       `json:"facets"`
	Meta     Meta         `json:"meta"`
}

// TotalPages returns ceil(total/pageSize), zero for an empty result.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
