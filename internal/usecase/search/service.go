package search

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/marketsearch/internal/domain/analytics"
	"github.com/kailas-cloud/marketsearch/internal/domain/catalog"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/result"
	"github.com/kailas-cloud/marketsearch/internal/metrics"
)

// DefaultTimeout bounds a request when no timeout is configured.
const DefaultTimeout = 2 * time.Second

// Service runs the search pipeline: filter, locate, then rank and facet in parallel.
type Service struct {
	catalog   CatalogStore
	favorites FavoritesStore
	locator   *Locator
	events    EventPublisher
	timeout   time.Duration
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout sets the per-request deadline for backend calls.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a search service. index and events may be nil.
func New(
	cat CatalogStore, index VendorGeoIndex, favs FavoritesStore, events EventPublisher, opts ...Option,
) *Service {
	s := &Service{
		catalog:   cat,
		favorites: favs,
		locator:   NewLocator(index),
		events:    events,
		timeout:   DefaultTimeout,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// located is the geo-filtered, unpaginated candidate set.
type located struct {
	items     []catalog.Candidate
	favorites map[string]struct{}
	geo       GeoOutcome
}

func (s *Service) locate(ctx context.Context, q *request.Search, userID string) (located, error) {
	set, err := s.collect(ctx, q, userID)
	if err != nil {
		return located{}, err
	}
	outcome, err := s.locator.Locate(ctx, q, vendorSet(set.items))
	if err != nil {
		return located{}, err
	}
	items := outcome.Apply(set.items)
	metrics.CandidateCount.Observe(float64(len(items)))
	return located{items: items, favorites: set.favorites, geo: outcome}, nil
}

// Search returns one ranked page with facets and meta. The analytics event
// is published after assembly and never affects the response.
func (s *Service) Search(ctx context.Context, q request.Search, userID string) (result.Search, error) {
	start := s.now()
	normalize(&q)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	loc, err := s.locate(ctx, &q, userID)
	if err != nil {
		observe("search", start, s.now(), err)
		return result.Search{}, err
	}

	var (
		page     []ranked
		strategy string
		facets   result.Facets
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, strategy = rankPage(loc.items, &q)
		return gctx.Err()
	})
	g.Go(func() error {
		facets = aggregateFacets(loc.items)
		return gctx.Err()
	})
	if err = g.Wait(); err != nil {
		err = backendError(ctx, "rank and facet", err)
		observe("search", start, s.now(), err)
		return result.Search{}, err
	}

	took := s.now().Sub(start)
	res := result.Search{
		Products: hits(page, loc.favorites),
		Facets:   facets,
		Meta: result.Meta{
			Total:          len(loc.items),
			Page:           q.Page,
			PageSize:       q.PageSize,
			TotalPages:     result.TotalPages(len(loc.items), q.PageSize),
			TookMs:         took.Milliseconds(),
			ExpandedRadius: loc.geo.Expanded,
			RadiusUsed:     loc.geo.RadiusUsed,
			GeoFiltered:    loc.geo.Applied,
			RankStrategy:   strategy,
		},
	}
	observe("search", start, s.now(), nil)

	if s.events != nil {
		s.events.Publish(analytics.NewSearchEvent(userID, q, res.Meta.Total, took, loc.geo.Expanded, s.now()))
	}
	return res, nil
}

// Facets returns facet counts for the same candidate set Search would rank.
func (s *Service) Facets(ctx context.Context, q request.Search, userID string) (result.Facets, error) {
	start := s.now()
	normalize(&q)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	loc, err := s.locate(ctx, &q, userID)
	observe("facets", start, s.now(), err)
	if err != nil {
		return result.Facets{}, err
	}
	return aggregateFacets(loc.items), nil
}

func vendorSet(items []catalog.Candidate) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for i := range items {
		out[items[i].Product.VendorID] = struct{}{}
	}
	return out
}

func hits(page []ranked, favorites map[string]struct{}) []result.ProductHit {
	out := make([]result.ProductHit, len(page))
	for i, r := range page {
		_, fav := favorites[r.c.Product.ID]
		h := result.ProductHit{Product: r.c.Product, Vendor: r.c.Vendor, IsFavorite: fav}
		if r.located {
			d := r.distance
			h.DistanceMiles = &d
		}
		out[i] = h
	}
	return out
}

// normalize fills and bounds paging for queries built outside request.Parse.
func normalize(q *request.Search) {
	if q.Page < 1 {
		q.Page = request.DefaultPage
	}
	if q.PageSize < 1 {
		q.PageSize = request.DefaultPageSize
	}
	if q.PageSize > request.MaxPageSize {
		q.PageSize = request.MaxPageSize
	}
	if q.Sort == "" {
		q.Sort = mode.Relevance
	}
}

func observe(op string, start, end time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchDuration.WithLabelValues(op, status).Observe(end.Sub(start).Seconds())
}
