package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kailas-cloud/marketsearch/internal/domain/analytics"
	"github.com/kailas-cloud/marketsearch/internal/domain/catalog"
	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
)

// --- Mocks ---

// mockCatalog evaluates the real predicate over an in-memory product list.
type mockCatalog struct {
	items  []catalog.Candidate
	err    error
	calls  int
	last   filter.Predicate
	before func(ctx context.Context) error
}

func (m *mockCatalog) QueryProducts(ctx context.Context, p filter.Predicate) ([]catalog.Candidate, error) {
	m.calls++
	m.last = p
	if m.before != nil {
		if err := m.before(ctx); err != nil {
			return nil, err
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	var out []catalog.Candidate
	for i := range m.items {
		if p.Matches(&m.items[i]) {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

type geoCall struct {
	point  geo.Point
	radius float64
}

// mockGeo answers by radius.
type mockGeo struct {
	byRadius map[float64][]string
	err      error
	calls    []geoCall
}

func (m *mockGeo) WithinRadius(_ context.Context, pt geo.Point, r float64) ([]string, error) {
	m.calls = append(m.calls, geoCall{point: pt, radius: r})
	if m.err != nil {
		return nil, m.err
	}
	return m.byRadius[r], nil
}

type mockFavorites struct {
	vendors     []string
	products    []string
	vendorErr   error
	productErr  error
	vendorCalls int
}

func (m *mockFavorites) FavoriteVendorIDs(_ context.Context, _ string) ([]string, error) {
	m.vendorCalls++
	return m.vendors, m.vendorErr
}

func (m *mockFavorites) FavoriteProductIDs(_ context.Context, _ string) ([]string, error) {
	return m.products, m.productErr
}

type mockEvents struct {
	mu     sync.Mutex
	events []analytics.SearchEvent
}

func (m *mockEvents) Publish(ev analytics.SearchEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// --- Fixtures ---

var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func vendor(id string, lat, lng float64) catalog.Vendor {
	pt := geo.Point{Lat: lat, Lng: lng}
	return catalog.Vendor{ID: id, Name: "Vendor " + id, City: "City " + id, State: "PA", Location: &pt}
}

func product(id, vendorID string, price float64) catalog.Product {
	return catalog.Product{
		ID: id, Name: "Item " + id, Type: "produce", Price: price,
		Active: true, AvailableNow: true, Pickup: true,
		VendorID: vendorID, CreatedAt: baseTime,
	}
}

func candidateOf(p catalog.Product, v catalog.Vendor) catalog.Candidate {
	return catalog.Candidate{Product: p, Vendor: v}
}

// numbered builds n products p01..pNN for one vendor.
func numbered(n int, v catalog.Vendor) []catalog.Candidate {
	out := make([]catalog.Candidate, n)
	for i := range out {
		out[i] = candidateOf(product(fmt.Sprintf("p%02d", i+1), v.ID, 5), v)
	}
	return out
}

func query(mutate func(q *request.Search)) request.Search {
	q := request.Search{
		Page:        1,
		PageSize:    request.DefaultPageSize,
		RadiusMiles: request.DefaultRadiusMiles,
		Sort:        mode.Relevance,
	}
	if mutate != nil {
		mutate(&q)
	}
	return q
}

func ptr(v float64) *float64 { return &v }

func ids(s []string) map[string]bool {
	m := make(map[string]bool, len(s))
	for _, v := range s {
		m[v] = true
	}
	return m
}
