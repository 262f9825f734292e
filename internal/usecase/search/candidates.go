package search

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/domain/catalog"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/request"
	"github.com/kailas-cloud/marketsearch/internal/logger"
)

// candidateSet is the output of the non-geo filtering stage.
type candidateSet struct {
	items []catalog.Candidate
	// favorites holds the caller's favorite product ids for isFavorite flags.
	favorites map[string]struct{}
}

// predicateFor maps the normalized query onto the catalog predicate.
// Favorite scopes are resolved separately by collect.
func predicateFor(q *request.Search) filter.Predicate {
	return filter.Predicate{
		Term:        q.Term,
		OpenNow:     q.OpenNow,
		Categories:  q.Categories,
		PriceMin:    q.PriceMin,
		PriceMax:    q.PriceMax,
		Tags:        q.Tags,
		Fulfillment: q.Fulfillment,
	}
}

// collect resolves favorite scopes and queries the catalog.
// Empty favorite scopes short-circuit without touching the catalog.
func (s *Service) collect(ctx context.Context, q *request.Search, userID string) (candidateSet, error) {
	pred := predicateFor(q)
	var out candidateSet

	if q.VendorScoped() {
		if userID == "" {
			return out, nil
		}
		ids, err := s.favorites.FavoriteVendorIDs(ctx, userID)
		if err != nil {
			return out, backendError(ctx, "favorite vendors", err)
		}
		if len(ids) == 0 {
			return out, nil
		}
		pred.VendorIDs = ids
	}

	if userID != "" {
		ids, err := s.favorites.FavoriteProductIDs(ctx, userID)
		switch {
		case err != nil && (q.FavoritesOnly || interrupted(ctx, err)):
			return out, backendError(ctx, "favorite products", err)
		case err != nil:
			logger.FromContext(ctx).Warn("favorite products unavailable, flags disabled",
				zap.String("user_id", userID), zap.Error(err))
		default:
			out.favorites = toSet(ids)
			if q.FavoritesOnly {
				if len(ids) == 0 {
					return out, nil
				}
				pred.ProductIDs = ids
			}
		}
	} else if q.FavoritesOnly {
		return out, nil
	}

	items, err := s.catalog.QueryProducts(ctx, pred)
	if err != nil {
		return out, backendError(ctx, "query catalog", err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Product.ID < items[j].Product.ID })
	out.items = items
	return out, nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
