package request

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/kailas-cloud/marketsearch/internal/domain"
	"github.com/kailas-cloud/marketsearch/internal/domain/catalog"
	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxTermLength is the maximum allowed free-text term length.
	MaxTermLength      = 256
	DefaultPage        = 1
	DefaultPageSize    = 24
	MinPageSize        = 1
	MaxPageSize        = 100
	DefaultRadiusMiles = 25
	MinRadiusMiles     = 1
	MaxRadiusMiles     = 500
)

// Query parameter names.
const (
	ParamTerm          = "q"
	ParamPage          = "page"
	ParamPageSize      = "pageSize"
	ParamLat           = "lat"
	ParamLng           = "lng"
	ParamRadius        = "radius"
	ParamCategories    = "categories"
	ParamPriceMin      = "priceMin"
	ParamPriceMax      = "priceMax"
	ParamTags          = "tags"
	ParamFulfillment   = "fulfillment"
	ParamVendorsOnly   = "vendorsOnly"
	ParamFavoritesOnly = "favoritesOnly"
	ParamOpenNow       = "openNow"
	ParamSort          = "sort"
	ParamNational      = "national"
	ParamMyVendors     = "myVendors"
)

// Defaults are the values applied when a parameter is omitted.
type Defaults struct {
	PageSize    int
	RadiusMiles float64
}

// StandardDefaults returns the built-in defaults.
func StandardDefaults() Defaults {
	return Defaults{PageSize: DefaultPageSize, RadiusMiles: DefaultRadiusMiles}
}

// Search is a validated, canonical search query.
type Search struct {
	Term          string                `json:"q,omitempty"`
	Page          int                   `json:"page"`
	PageSize      int                   `json:"pageSize"`
	Point         *geo.Point            `json:"point,omitempty"`
	RadiusMiles   float64               `json:"radiusMiles"`
	Categories    []string              `json:"categories,omitempty"`
	PriceMin      *float64              `json:"priceMin,omitempty"`
	PriceMax      *float64              `json:"priceMax,omitempty"`
	Tags          []string              `json:"tags,omitempty"`
	Fulfillment   []catalog.Fulfillment `json:"fulfillment,omitempty"`
	VendorsOnly   bool                  `json:"vendorsOnly,omitempty"`
	FavoritesOnly bool                  `json:"favoritesOnly,omitempty"`
	OpenNow       bool                  `json:"openNow,omitempty"`
	Sort          mode.Mode             `json:"sort"`
	National      bool                  `json:"national,omitempty"`
	MyVendorsOnly bool                  `json:"myVendors,omitempty"`
}

// HasPoint reports whether both coordinates were supplied.
func (s *Search) HasPoint() bool { return s.Point != nil }

// Offset returns the number of ranked rows skipped before the page.
func (s *Search) Offset() int { return (s.Page - 1) * s.PageSize }

// VendorScoped reports whether results are limited to the caller's favorite vendors.
func (s *Search) VendorScoped() bool { return s.VendorsOnly || s.MyVendorsOnly }

// Parse validates raw query parameters into a Search.
// Every violation is collected into a single *domain.ValidationError.
func Parse(v url.Values, d Defaults) (Search, error) {
	p := parser{values: v, errs: &domain.ValidationError{}}

	if d.PageSize <= 0 {
		d.PageSize = DefaultPageSize
	}
	if d.RadiusMiles <= 0 {
		d.RadiusMiles = DefaultRadiusMiles
	}

	s := Search{
		Term:          p.term(),
		Page:          clampInt(p.integer(ParamPage, DefaultPage), 1, math.MaxInt32),
		PageSize:      clampInt(p.integer(ParamPageSize, d.PageSize), MinPageSize, MaxPageSize),
		RadiusMiles:   clampFloat(p.float(ParamRadius, d.RadiusMiles), MinRadiusMiles, MaxRadiusMiles),
		Categories:    splitList(v.Get(ParamCategories)),
		Tags:          lowerAll(splitList(v.Get(ParamTags))),
		Fulfillment:   p.fulfillment(),
		VendorsOnly:   p.boolean(ParamVendorsOnly),
		FavoritesOnly: p.boolean(ParamFavoritesOnly),
		OpenNow:       p.boolean(ParamOpenNow),
		Sort:          p.sort(),
		National:      p.boolean(ParamNational),
		MyVendorsOnly: p.boolean(ParamMyVendors),
	}
	s.Point = p.point()
	s.PriceMin = p.price(ParamPriceMin)
	s.PriceMax = p.price(ParamPriceMax)
	if s.PriceMin != nil && s.PriceMax != nil && *s.PriceMin > *s.PriceMax {
		p.errs.Add(ParamPriceMax, "must be greater than or equal to priceMin")
	}

	if err := p.errs.OrNil(); err != nil {
		return Search{}, err
	}
	return s, nil
}

type parser struct {
	values url.Values
	errs   *domain.ValidationError
}

func (p *parser) raw(name string) string {
	return strings.TrimSpace(p.values.Get(name))
}

func (p *parser) term() string {
	t := p.raw(ParamTerm)
	if len(t) > MaxTermLength {
		p.errs.Add(ParamTerm, "too long (max "+strconv.Itoa(MaxTermLength)+" chars)")
		return ""
	}
	return t
}

func (p *parser) integer(name string, def int) int {
	raw := p.raw(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.errs.Add(name, "must be an integer")
		return def
	}
	return n
}

// number parses a finite float. ok is false when the parameter is absent or invalid.
func (p *parser) number(name string) (float64, bool) {
	raw := p.raw(name)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		p.errs.Add(name, "must be a number")
		return 0, false
	}
	return f, true
}

func (p *parser) float(name string, def float64) float64 {
	if f, ok := p.number(name); ok {
		return f
	}
	return def
}

func (p *parser) price(name string) *float64 {
	f, ok := p.number(name)
	if !ok {
		return nil
	}
	if f < 0 {
		p.errs.Add(name, "must not be negative")
		return nil
	}
	return &f
}

// point returns nil unless both coordinates are present and valid.
// A lone lat or lng means "no location", not an error.
func (p *parser) point() *geo.Point {
	lat, hasLat := p.number(ParamLat)
	lng, hasLng := p.number(ParamLng)
	if hasLat && !geo.ValidLat(lat) {
		p.errs.Add(ParamLat, "must be between -90 and 90")
		hasLat = false
	}
	if hasLng && !geo.ValidLng(lng) {
		p.errs.Add(ParamLng, "must be between -180 and 180")
		hasLng = false
	}
	if !hasLat || !hasLng {
		return nil
	}
	return &geo.Point{Lat: lat, Lng: lng}
}

func (p *parser) boolean(name string) bool {
	switch strings.ToLower(p.raw(name)) {
	case "", "false":
		return false
	case "true":
		return true
	default:
		p.errs.Add(name, `must be "true" or "false"`)
		return false
	}
}

func (p *parser) sort() mode.Mode {
	raw := p.raw(ParamSort)
	if raw == "" {
		return mode.Relevance
	}
	m := mode.Mode(raw)
	if !m.IsValid() {
		p.errs.Add(ParamSort, "unsupported sort mode "+strconv.Quote(raw))
		return mode.Relevance
	}
	return m
}

func (p *parser) fulfillment() []catalog.Fulfillment {
	items := splitList(p.values.Get(ParamFulfillment))
	if len(items) == 0 {
		return nil
	}
	out := make([]catalog.Fulfillment, 0, len(items))
	for _, item := range items {
		f := catalog.Fulfillment(strings.ToLower(item))
		if !f.IsValid() {
			p.errs.Add(ParamFulfillment, "unsupported method "+strconv.Quote(item))
			continue
		}
		out = append(out, f)
	}
	return out
}

// splitList splits a comma-separated value, dropping blanks and duplicates.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}

func lowerAll(items []string) []string {
	if len(items) == 0 {
		return items
	}
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		l := strings.ToLower(item)
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
