package search

import (
	"math"
	"sort"
	"strings"

	"github.com/kailas-cloud/marketsearch/internal/domain/catalog"
	"github.com/kailas-cloud/marketsearch/internal/domain/geo"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
)

// Relevance weights.
const (
	nameMatchWeight   = 0.6
	ratingWeight      = 0.3
	popularityWeight  = 0.1
	popularityDamping = 10.0
	maxRating         = 5.0
)

// ranked is a candidate with its sort keys precomputed.
type ranked struct {
	c        *catalog.Candidate
	score    float64
	distance float64
	located  bool
}

// strategy is a named, versioned total order over candidates.
type strategy struct {
	name string
	less func(a, b *ranked) bool
}

func byID(a, b *ranked) bool { return a.c.Product.ID < b.c.Product.ID }

var strategies = map[mode.Mode]strategy{
	mode.Relevance: {name: "relevance/v1", less: func(a, b *ranked) bool {
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.c.Product.CreatedAt.Equal(b.c.Product.CreatedAt) {
			return a.c.Product.CreatedAt.After(b.c.Product.CreatedAt)
		}
		return byID(a, b)
	}},
	mode.Distance: {name: "distance/v1", less: func(a, b *ranked) bool {
		if a.located != b.located {
			return a.located
		}
		if a.located && a.distance != b.distance {
			return a.distance < b.distance
		}
		return byID(a, b)
	}},
	mode.PriceAsc: {name: "price_asc/v1", less: func(a, b *ranked) bool {
		if a.c.Product.Price != b.c.Product.Price {
			return a.c.Product.Price < b.c.Product.Price
		}
		return byID(a, b)
	}},
	mode.PriceDesc: {name: "price_desc/v1", less: func(a, b *ranked) bool {
		if a.c.Product.Price != b.c.Product.Price {
			return a.c.Product.Price > b.c.Product.Price
		}
		return byID(a, b)
	}},
	mode.Newest: {name: "newest/v1", less: func(a, b *ranked) bool {
		if !a.c.Product.CreatedAt.Equal(b.c.Product.CreatedAt) {
			return a.c.Product.CreatedAt.After(b.c.Product.CreatedAt)
		}
		return byID(a, b)
	}},
	mode.Popular: {name: "popular/v1", less: func(a, b *ranked) bool {
		if a.c.Product.RatingCount != b.c.Product.RatingCount {
			return a.c.Product.RatingCount > b.c.Product.RatingCount
		}
		return byID(a, b)
	}},
	mode.Rating: {name: "rating/v1", less: func(a, b *ranked) bool {
		if a.c.Product.RatingAvg != b.c.Product.RatingAvg {
			return a.c.Product.RatingAvg > b.c.Product.RatingAvg
		}
		return byID(a, b)
	}},
}

// strategyFor picks the ordering for q. Distance without a point falls back to relevance.
func strategyFor(q *request.Search) strategy {
	m := q.Sort
	if m == mode.Distance && !q.HasPoint() {
		m = mode.Relevance
	}
	if s, ok := strategies[m]; ok {
		return s
	}
	return strategies[mode.Relevance]
}

// relevanceScore computes the relevance/v1 composite score in [0,1].
func relevanceScore(p *catalog.Product, term string) float64 {
	var nameMatch float64
	if term != "" && strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) {
		nameMatch = 1
	}
	rating := math.Max(0, math.Min(p.RatingAvg, maxRating)) / maxRating
	count := math.Max(0, float64(p.RatingCount))
	popularity := count / (count + popularityDamping)
	return nameMatchWeight*nameMatch + ratingWeight*rating + popularityWeight*popularity
}

// rankPage orders items and returns the requested page with the strategy name.
// items is read-only; ordering happens on a separate slice.
func rankPage(items []catalog.Candidate, q *request.Search) ([]ranked, string) {
	st := strategyFor(q)
	all := make([]ranked, len(items))
	for i := range items {
		r := ranked{c: &items[i]}
		if q.HasPoint() && items[i].Vendor.Location != nil {
			r.distance = geo.HaversineMiles(*q.Point, *items[i].Vendor.Location)
			r.located = true
		}
		if st.name == strategies[mode.Relevance].name {
			r.score = relevanceScore(&items[i].Product, q.Term)
		}
		all[i] = r
	}
	sort.Slice(all, func(i, j int) bool { return st.less(&all[i], &all[j]) })

	offset := q.Offset()
	if offset >= len(all) {
		return []ranked{}, st.name
	}
	end := offset + q.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], st.name
}
