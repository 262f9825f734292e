package search

import (
	"math"
	"sort"
	"strings"

	"github.com/kailas-cloud/marketsearch/internal/domain/catalog"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/result"
)

// topFacetValues caps the tag, city and state facets.
const topFacetValues = 20

type priceBucket struct {
	label string
	min   float64
	max   float64 // exclusive; 0 means unbounded
}

var priceBuckets = []priceBucket{
	{label: "Under $10", min: 0, max: 10},
	{label: "$10-$25", min: 10, max: 25},
	{label: "$25-$50", min: 25, max: 50},
	{label: "$50-$100", min: 50, max: 100},
	{label: "Over $100", min: 100},
}

func priceBucketIndex(price float64) int {
	for i, b := range priceBuckets {
		if b.max == 0 || price < b.max {
			return i
		}
	}
	return len(priceBuckets) - 1
}

// aggregateFacets counts every facet dimension over items. Fixed dimensions
// (price, fulfillment, rating) always report every bucket, zeros included.
func aggregateFacets(items []catalog.Candidate) result.Facets {
	categories := map[string]int{}
	tags := map[string]int{}
	cities := map[string]int{}
	states := map[string]int{}
	prices := make([]int, len(priceBuckets))
	fulfillment := make([]int, len(catalog.Fulfillments))
	ratings := make([]int, int(maxRating)+1)

	for i := range items {
		p := &items[i].Product
		if p.Type != "" {
			categories[p.Type]++
		}
		prices[priceBucketIndex(p.Price)]++
		for fi, f := range catalog.Fulfillments {
			if p.Offers(f) {
				fulfillment[fi]++
			}
		}
		ratings[ratingBucket(p.RatingAvg)]++
		seen := make(map[string]struct{}, len(p.Tags))
		for _, t := range p.Tags {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			tags[t]++
		}
		if c := items[i].Vendor.City; c != "" {
			cities[c]++
		}
		if s := items[i].Vendor.State; s != "" {
			states[s]++
		}
	}

	out := result.Facets{
		PriceRanges: make([]result.PriceRangeCount, len(priceBuckets)),
		Fulfillment: make([]result.FulfillmentCount, len(catalog.Fulfillments)),
		Ratings:     make([]result.RatingCount, 0, len(ratings)),
	}
	for _, e := range topCounts(categories, 0) {
		out.Categories = append(out.Categories, result.CategoryCount{Category: e.key, Count: e.count})
	}
	for i, b := range priceBuckets {
		pr := result.PriceRangeCount{Range: b.label, Min: b.min, Count: prices[i]}
		if b.max != 0 {
			upper := b.max
			pr.Max = &upper
		}
		out.PriceRanges[i] = pr
	}
	for _, e := range topCounts(tags, topFacetValues) {
		out.Tags = append(out.Tags, result.TagCount{Tag: e.key, Count: e.count})
	}
	for i, f := range catalog.Fulfillments {
		out.Fulfillment[i] = result.FulfillmentCount{Type: string(f), Count: fulfillment[i]}
	}
	for r := len(ratings) - 1; r >= 0; r-- {
		out.Ratings = append(out.Ratings, result.RatingCount{Rating: r, Count: ratings[r]})
	}
	for _, e := range topCounts(cities, topFacetValues) {
		out.Cities = append(out.Cities, result.CityCount{City: e.key, Count: e.count})
	}
	for _, e := range topCounts(states, topFacetValues) {
		out.States = append(out.States, result.StateCount{State: e.key, Count: e.count})
	}
	ensureNonNil(&out)
	return out
}

func ratingBucket(avg float64) int {
	if math.IsNaN(avg) {
		return 0
	}
	b := int(math.Floor(avg))
	if b < 0 {
		return 0
	}
	if b > int(maxRating) {
		return int(maxRating)
	}
	return b
}

type keyCount struct {
	key   string
	count int
}

// topCounts orders by count desc then key asc; limit<=0 keeps all.
func topCounts(m map[string]int, limit int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, c := range m {
		out = append(out, keyCount{key: k, count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ensureNonNil makes empty dimensions encode as [] instead of null.
func ensureNonNil(f *result.Facets) {
	if f.Categories == nil {
		f.Categories = []result.CategoryCount{}
	}
	if f.Tags == nil {
		f.Tags = []result.TagCount{}
	}
	if f.Cities == nil {
		f.Cities = []result.CityCount{}
	}
	if f.States == nil {
		f.States = []result.StateCount{}
	}
}
