package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/domain/catalog"
	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/result"
	"github.com/kailas-cloud/marketsearch/internal/domain/window"
	"github.com/kailas-cloud/marketsearch/internal/repository/fixture"
	healthuc "github.com/kailas-cloud/marketsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
	windowsuc "github.com/kailas-cloud/marketsearch/internal/usecase/windows"
)

// --- Fixtures ---

func testStore(t *testing.T) *fixture.Store {
	t.Helper()
	portland := geo.Point{Lat: 45.52, Lng: -122.68}
	seattle := geo.Point{Lat: 47.61, Lng: -122.33}
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

	s, err := fixture.New(fixture.Dataset{
		Vendors: []catalog.Vendor{
			{ID: "v1", Name: "Alder Farm", City: "Portland", State: "OR", Location: &portland, RatingAvg: 4.8},
			{ID: "v2", Name: "Driftwood", City: "Seattle", State: "WA", Location: &seattle, RatingAvg: 4.1},
		},
		Products: []catalog.Product{
			{ID: "p1", Name: "Wildflower Honey", Type: "pantry", Price: 12, Pickup: true,
				Active: true, AvailableNow: true, RatingAvg: 4.9, VendorID: "v1", Tags: []string{"honey"}},
			{ID: "p2", Name: "Tomatoes", Type: "produce", Price: 6, Delivery: true,
				Active: true, AvailableNow: true, RatingAvg: 4.2, VendorID: "v1"},
			{ID: "p3", Name: "Honey Mug", Type: "home", Price: 40, Ship: true,
				Active: true, AvailableNow: true, RatingAvg: 3.5, VendorID: "v2"},
		},
		Windows: []window.SalesWindow{
			{ID: "w1", Name: "Market", Status: window.StatusActive, Location: portland,
				FulfillStartAt: start, FulfillEndAt: end, VendorID: "v1"},
			{ID: "w2", Name: "Seattle stand", Status: window.StatusActive, Location: seattle,
				FulfillStartAt: start, FulfillEndAt: end, VendorID: "v2"},
		},
		Favorites: map[string]fixture.Favorites{"u1": {Products: []string{"p1"}, Vendors: []string{"v2"}}},
	})
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return s
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

type blockingCatalog struct{}

func (blockingCatalog) QueryProducts(ctx context.Context, _ filter.Predicate) ([]catalog.Candidate, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type brokenCatalog struct{}

func (brokenCatalog) QueryProducts(context.Context, filter.Predicate) ([]catalog.Candidate, error) {
	return nil, errors.New("connection refused")
}

type routerOpts struct {
	catalog searchuc.CatalogStore
	pingers map[string]healthuc.Pinger
	timeout time.Duration
}

func newTestRouter(t *testing.T, o routerOpts) http.Handler {
	t.Helper()
	store := testStore(t)
	cat := o.catalog
	if cat == nil {
		cat = store
	}
	if o.pingers == nil {
		o.pingers = map[string]healthuc.Pinger{"catalog": store}
	}
	timeout := o.timeout
	if timeout == 0 {
		timeout = time.Second
	}
	srv := NewServer(
		searchuc.New(cat, store, store, nil, searchuc.WithTimeout(timeout)),
		windowsuc.New(store, timeout),
		healthuc.New(o.pingers),
		request.StandardDefaults(),
		zap.NewNop(),
	).WithVersion("test")
	return NewRouter(srv, RouterConfig{})
}

func get(t *testing.T, h http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v (body %q)", err, rr.Body.String())
	}
	return v
}

// --- Tests ---

func TestSearch_TermMatches(t *testing.T) {
	h := newTestRouter(t, routerOpts{})
	rr := get(t, h, "/search?q=honey", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type %q", ct)
	}
	res := decode[result.Search](t, rr)
	if res.Meta.Total != 2 || len(res.Products) != 2 {
		t.Fatalf("expected 2 honey products, got %+v", res.Meta)
	}
	if res.Meta.Page != 1 || res.Meta.PageSize != request.DefaultPageSize || res.Meta.TotalPages != 1 {
		t.Errorf("unexpected meta: %+v", res.Meta)
	}
	if len(res.Facets.PriceRanges) != 5 || len(res.Facets.Ratings) != 6 {
		t.Errorf("fixed facet buckets missing: %+v", res.Facets)
	}
}

func TestSearch_GeoFilter(t *testing.T) {
	h := newTestRouter(t, routerOpts{})
	rr := get(t, h, "/search?lat=45.5152&lng=-122.6784&radius=10&sort=distance", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	res := decode[result.Search](t, rr)
	if !res.Meta.GeoFiltered || res.Meta.Total != 2 {
		t.Fatalf("expected only Portland products, got %+v", res.Meta)
	}
	for _, p := range res.Products {
		if p.VendorID != "v1" {
			t.Errorf("unexpected vendor %s", p.VendorID)
		}
		if p.DistanceMiles == nil {
			t.Errorf("distance missing for %s", p.ID)
		}
	}
}

func TestSearch_FavoritesFlag(t *testing.T) {
	h := newTestRouter(t, routerOpts{})
	rr := get(t, h, "/search", map[string]string{UserIDHeader: "u1"})

	res := decode[result.Search](t, rr)
	for _, p := range res.Products {
		if want := p.ID == "p1"; p.IsFavorite != want {
			t.Errorf("%s: isFavorite=%v, want %v", p.ID, p.IsFavorite, want)
		}
	}
}

func TestSearch_MyVendorsScope(t *testing.T) {
	h := newTestRouter(t, routerOpts{})

	rr := get(t, h, "/search?myVendors=true", map[string]string{UserIDHeader: "u1"})
	res := decode[result.Search](t, rr)
	if res.Meta.Total != 1 || res.Products[0].ID != "p3" {
		t.Fatalf("expected only favorite vendor products, got %+v", res.Products)
	}

	rr = get(t, h, "/search?myVendors=true", nil)
	res = decode[result.Search](t, rr)
	if res.Meta.Total != 0 || res.Products == nil {
		t.Errorf("anonymous scoped search must be empty, got %+v", res)
	}
}

func TestSearch_InvalidParameters(t *testing.T) {
	h := newTestRouter(t, routerOpts{})
	rr := get(t, h, "/search?sort=bogus&lat=200&lng=0&priceMin=-1", nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	body := decode[ErrorResponse](t, rr)
	if body.Code != CodeInvalidParameter {
		t.Errorf("code: got %s", body.Code)
	}
	fields := map[string]bool{}
	for _, f := range body.Errors {
		fields[f.Field] = true
	}
	for _, want := range []string{request.ParamSort, request.ParamLat, request.ParamPriceMin} {
		if !fields[want] {
			t.Errorf("missing violation for %s in %+v", want, body.Errors)
		}
	}
}

func TestSearch_Timeout(t *testing.T) {
	h := newTestRouter(t, routerOpts{catalog: blockingCatalog{}, timeout: 10 * time.Millisecond})
	rr := get(t, h, "/search", nil)

	if rr.Code != http.StatusGatewayTimeout {
		t.Fatalf("status: got %d, want 504", rr.Code)
	}
	if body := decode[ErrorResponse](t, rr); body.Code != CodeTimeout {
		t.Errorf("code: got %s", body.Code)
	}
}

func TestSearch_BackendFailure(t *testing.T) {
	h := newTestRouter(t, routerOpts{catalog: brokenCatalog{}})
	rr := get(t, h, "/search", nil)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rr.Code)
	}
	body := decode[ErrorResponse](t, rr)
	if body.Code != CodeInternalError || body.Message != "internal error" {
		t.Errorf("internal details leaked: %+v", body)
	}
}

func TestFacets(t *testing.T) {
	h := newTestRouter(t, routerOpts{})
	rr := get(t, h, "/facets?q=honey", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	f := decode[result.Facets](t, rr)
	if len(f.Fulfillment) != 3 || len(f.PriceRanges) != 5 {
		t.Errorf("fixed buckets missing: %+v", f)
	}
	total := 0
	for _, c := range f.Categories {
		total += c.Count
	}
	if total != 2 {
		t.Errorf("category counts should cover 2 products, got %d", total)
	}
}

func TestNearbyWindows(t *testing.T) {
	h := newTestRouter(t, routerOpts{})

	rr := get(t, h, "/nearby-windows?lat=45.5152&lng=-122.6784", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	body := decode[WindowsResponse](t, rr)
	if len(body.Windows) != 1 || body.Windows[0].ID != "w1" {
		t.Fatalf("expected [w1], got %+v", body.Windows)
	}

	rr = get(t, h, "/nearby-windows?lat=45.5152&lng=-122.6784&radius=500", nil)
	body = decode[WindowsResponse](t, rr)
	if len(body.Windows) != 2 || body.Windows[0].ID != "w1" {
		t.Errorf("expected nearest first, got %+v", body.Windows)
	}
}

func TestNearbyWindows_MissingCoordinates(t *testing.T) {
	h := newTestRouter(t, routerOpts{})
	rr := get(t, h, "/nearby-windows?lat=45.5", nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	body := decode[ErrorResponse](t, rr)
	if len(body.Errors) != 1 || body.Errors[0].Field != request.ParamLng {
		t.Errorf("expected lng violation, got %+v", body.Errors)
	}
}

func TestHealthCheck(t *testing.T) {
	h := newTestRouter(t, routerOpts{})
	rr := get(t, h, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	body := decode[HealthResponse](t, rr)
	if body.Status != healthuc.Healthy || body.Checks["catalog"] != healthuc.CheckOK || body.Version != "test" {
		t.Errorf("unexpected body %+v", body)
	}

	h = newTestRouter(t, routerOpts{pingers: map[string]healthuc.Pinger{"redis": failingPinger{}}})
	rr = get(t, h, "/health", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("degraded status: got %d", rr.Code)
	}
}

func TestMetricsAndNotFound(t *testing.T) {
	h := newTestRouter(t, routerOpts{})
	if rr := get(t, h, "/metrics", nil); rr.Code != http.StatusOK {
		t.Errorf("metrics: got %d", rr.Code)
	}

	rr := get(t, h, "/collections", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("not found: got %d", rr.Code)
	}
	if body := decode[ErrorResponse](t, rr); body.Code != "not_found" {
		t.Errorf("code: got %s", body.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestRouter(t, routerOpts{})
	rr := get(t, h, "/health", nil)
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not propagated")
	}
}
