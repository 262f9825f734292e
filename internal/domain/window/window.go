package window

import (
	"time"

	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
)

// StatusActive is the only status eligible for nearby queries.
const StatusActive = "ACTIVE"

// SalesWindow is a scheduled pickup or market slot published by a vendor.
type SalesWindow struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	Type           string    `json:"type" yaml:"type"`
	AddressText    string    `json:"addressText" yaml:"address_text"`
	FulfillStartAt time.Time `json:"fulfillStartAt" yaml:"fulfill_start_at"`
	FulfillEndAt   time.Time `json:"fulfillEndAt" yaml:"fulfill_end_at"`
	VendorID       string    `json:"vendorId" yaml:"vendor_id"`
	VendorName     string    `json:"vendorName" yaml:"vendor_name"`
	Location       geo.Point `json:"location" yaml:"location"`
	Status         string    `json:"status" yaml:"status"`
}

// OpenAt reports whether the window is active and now falls within it (inclusive).
func (w *SalesWindow) OpenAt(now time.Time) bool {
	return w.Status == StatusActive &&
		!now.Before(w.FulfillStartAt) && !now.After(w.FulfillEndAt)
}

// Hit is a window with its distance from the query point.
type Hit struct {
	SalesWindow
	DistanceMiles float64 `json:"distanceMiles"`
}
