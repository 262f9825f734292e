package search

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/marketsearch/internal/domain/catalog"
	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
	"github.com/kailas-cloud/marketsearch/internal/metrics"
)

func geoQuery(radius float64) *request.Search {
	return ptrQuery(func(q *request.Search) {
		q.Point = &geo.Point{Lat: 40, Lng: -75}
		q.RadiusMiles = radius
	})
}

func candidateVendors(ids ...string) map[string]struct{} {
	return toSet(ids)
}

func TestLocate_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		byRadius map[float64][]string
		want     GeoOutcome
		label    string
	}{
		{"direct", map[float64][]string{5: {"v1"}}, GeoOutcome{RadiusUsed: 5, Applied: true}, metrics.GeoDirect},
		{"expanded", map[float64][]string{10: {"v1"}}, GeoOutcome{RadiusUsed: 10, Expanded: true, Applied: true}, metrics.GeoExpanded},
		{"abandoned", map[float64][]string{20: {"v1"}}, GeoOutcome{}, metrics.GeoAbandoned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(metrics.GeoOutcomesTotal.WithLabelValues(tt.label))
			l := NewLocator(&mockGeo{byRadius: tt.byRadius})

			got, err := l.Locate(context.Background(), geoQuery(5), candidateVendors("v1"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.RadiusUsed != tt.want.RadiusUsed || got.Expanded != tt.want.Expanded || got.Applied != tt.want.Applied {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if after := testutil.ToFloat64(metrics.GeoOutcomesTotal.WithLabelValues(tt.label)); after != before+1 {
				t.Errorf("expected %s counter to increment", tt.label)
			}
		})
	}
}

func TestLocate_NoOverlapCountsAsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		byRadius map[float64][]string
		want     GeoOutcome
		kept     []string
	}{
		{"expands past unrelated vendors", map[float64][]string{5: {"v7"}, 10: {"v7", "v9"}},
			GeoOutcome{RadiusUsed: 10, Expanded: true, Applied: true}, []string{"v9"}},
		{"abandons when rescue has no candidates", map[float64][]string{10: {"v1"}},
			GeoOutcome{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := &mockGeo{byRadius: tt.byRadius}
			got, err := NewLocator(index).Locate(context.Background(), geoQuery(5), candidateVendors("v9"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(index.calls) != 2 {
				t.Errorf("expected two lookups, got %d", len(index.calls))
			}
			if got.RadiusUsed != tt.want.RadiusUsed || got.Expanded != tt.want.Expanded || got.Applied != tt.want.Applied {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if len(got.VendorIDs) != len(tt.kept) {
				t.Fatalf("expected vendors %v, got %v", tt.kept, got.VendorIDs)
			}
			for _, id := range tt.kept {
				if _, ok := got.VendorIDs[id]; !ok {
					t.Errorf("expected %s in vendor set", id)
				}
			}
		})
	}
}

func TestLocate_RetriesExactlyOnce(t *testing.T) {
	index := &mockGeo{byRadius: map[float64][]string{}}
	if _, err := NewLocator(index).Locate(context.Background(), geoQuery(7), candidateVendors("v1")); err != nil {
		t.Fatal(err)
	}
	if len(index.calls) != 2 || index.calls[1].radius != 14 {
		t.Errorf("expected one retry at 14mi, got %+v", index.calls)
	}
}

func TestLocate_Degrades(t *testing.T) {
	before := testutil.ToFloat64(metrics.GeoOutcomesTotal.WithLabelValues(metrics.GeoDegraded))
	got, err := NewLocator(&mockGeo{err: errors.New("down")}).Locate(context.Background(), geoQuery(5), candidateVendors("v1"))
	if err != nil {
		t.Fatalf("expected degradation, got %v", err)
	}
	if got.Applied || got.Expanded {
		t.Errorf("degraded outcome must not restrict: %+v", got)
	}
	if testutil.ToFloat64(metrics.GeoOutcomesTotal.WithLabelValues(metrics.GeoDegraded)) != before+1 {
		t.Error("expected degraded counter to increment")
	}
}

func TestLocate_CanceledContextFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocator(&mockGeo{err: context.Canceled}).Locate(ctx, geoQuery(5), candidateVendors("v1"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLocate_NilIndexSkips(t *testing.T) {
	got, err := NewLocator(nil).Locate(context.Background(), geoQuery(5), candidateVendors("v1"))
	if err != nil || got.Applied {
		t.Errorf("nil index should skip: %+v %v", got, err)
	}
}

func TestGeoOutcome_Apply(t *testing.T) {
	v1, v2 := vendor("v1", 0, 0), vendor("v2", 0, 0)
	items := []catalog.Candidate{candidateOf(product("a", "v1", 1), v1), candidateOf(product("b", "v2", 1), v2)}

	if got := (GeoOutcome{}).Apply(items); len(got) != 2 {
		t.Errorf("unapplied outcome should keep all, got %d", len(got))
	}
	got := GeoOutcome{Applied: true, VendorIDs: map[string]struct{}{"v2": {}}}.Apply(items)
	if len(got) != 1 || got[0].Product.ID != "b" {
		t.Errorf("expected only b, got %+v", got)
	}
}
