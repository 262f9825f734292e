package favorites

import (
	"context"
	"fmt"
)

// store is the consumer interface for set operations (ISP).
type store interface {
	SMembers(ctx context.Context, key string) ([]string, error)
	SAdd(ctx context.Context, key string, members ...string) error
}

// Repo implements usecase/search.FavoritesStore over per-user Redis sets.
type Repo struct {
	store  store
	prefix string
}

// New creates a favorites repository. prefix namespaces the set keys.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

func (r *Repo) vendorsKey(userID string) string  { return r.prefix + "fav:vendors:" + userID }
func (r *Repo) productsKey(userID string) string { return r.prefix + "fav:products:" + userID }

// FavoriteVendorIDs returns the vendors the user follows.
func (r *Repo) FavoriteVendorIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.store.SMembers(ctx, r.vendorsKey(userID))
	if err != nil {
		return nil, fmt.Errorf("favorite vendors: %w", err)
	}
	return ids, nil
}

// FavoriteProductIDs returns the products the user saved.
func (r *Repo) FavoriteProductIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.store.SMembers(ctx, r.productsKey(userID))
	if err != nil {
		return nil, fmt.Errorf("favorite products: %w", err)
	}
	return ids, nil
}

// AddVendors records followed vendors for a user.
func (r *Repo) AddVendors(ctx context.Context, userID string, ids ...string) error {
	if err := r.store.SAdd(ctx, r.vendorsKey(userID), ids...); err != nil {
		return fmt.Errorf("add favorite vendors: %w", err)
	}
	return nil
}

// AddProducts records saved products for a user.
func (r *Repo) AddProducts(ctx context.Context, userID string, ids ...string) error {
	if err := r.store.SAdd(ctx, r.productsKey(userID), ids...); err != nil {
		return fmt.Errorf("add favorite products: %w", err)
	}
	return nil
}
