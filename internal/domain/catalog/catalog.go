package catalog

import (
	"time"

	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
)

// Fulfillment is a way a product reaches the buyer.
type Fulfillment string

// Fulfillment methods.
const (
	Pickup   Fulfillment = "pickup"
	Delivery Fulfillment = "delivery"
	Ship     Fulfillment = "ship"
)

// Fulfillments lists all methods in facet order.
var Fulfillments = []Fulfillment{Pickup, Delivery, Ship}

// IsValid checks if f is a known fulfillment method.
func (f Fulfillment) IsValid() bool {
	return f == Pickup || f == Delivery || f == Ship
}

// Product is a read-only catalog row owned by the product service.
type Product struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Description  string    `json:"description" yaml:"description"`
	Tags         []string  `json:"tags" yaml:"tags"`
	Type         string    `json:"type" yaml:"type"`
	Price        float64   `json:"price" yaml:"price"`
	Pickup       bool      `json:"pickup" yaml:"pickup"`
	Delivery     bool      `json:"delivery" yaml:"delivery"`
	Ship         bool      `json:"ship" yaml:"ship"`
	Active       bool      `json:"active" yaml:"active"`
	AvailableNow bool      `json:"availableNow" yaml:"available_now"`
	RatingAvg    float64   `json:"ratingAvg" yaml:"rating_avg"`
	RatingCount  int       `json:"ratingCount" yaml:"rating_count"`
	CreatedAt    time.Time `json:"createdAt" yaml:"created_at"`
	VendorID     string    `json:"vendorId" yaml:"vendor_id"`
}

// Offers reports whether the product supports fulfillment method f.
func (p *Product) Offers(f Fulfillment) bool {
	switch f {
	case Pickup:
		return p.Pickup
	case Delivery:
		return p.Delivery
	case Ship:
		return p.Ship
	default:
		return false
	}
}

// Vendor is a read-only vendor profile owned by the vendor service.
type Vendor struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"storeName" yaml:"name"`
	City        string     `json:"city" yaml:"city"`
	State       string     `json:"state" yaml:"state"`
	Location    *geo.Point `json:"-" yaml:"location"`
	RatingAvg   float64    `json:"ratingAvg" yaml:"rating_avg"`
	RatingCount int        `json:"ratingCount" yaml:"rating_count"`
}

// Candidate is a product that passed catalog filtering, with its vendor joined.
type Candidate struct {
	Product Product
	Vendor  Vendor
}
