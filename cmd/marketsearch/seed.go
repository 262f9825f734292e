package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	favoritesrepo "github.com/kailas-cloud/marketsearch/internal/repository/favorites"
	"github.com/kailas-cloud/marketsearch/internal/repository/fixture"
	"github.com/kailas-cloud/marketsearch/internal/repository/geoindex"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load vendor locations and favorites from a fixture file into Redis",
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}
	cmd.Flags().String("fixture", "", "Fixture dataset path (default: catalog.fixture_path)")
	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Redis.Enabled() {
		return fmt.Errorf("redis.addrs is required to seed")
	}

	path, _ := cmd.Flags().GetString("fixture")
	if path == "" {
		path = cfg.Catalog.FixturePath
	}
	fx, err := fixture.Load(path)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := openRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer store.Close()

	indexed, err := geoindex.New(store, cfg.Redis.KeyPrefix).Index(ctx, fx.Vendors())
	if err != nil {
		return err
	}

	favs := favoritesrepo.New(store, cfg.Redis.KeyPrefix)
	sets := fx.FavoriteSets()
	users := make([]string, 0, len(sets))
	for u := range sets {
		users = append(users, u)
	}
	sort.Strings(users)
	for _, u := range users {
		if v := sets[u].Vendors; len(v) > 0 {
			if err := favs.AddVendors(ctx, u, v...); err != nil {
				return err
			}
		}
		if p := sets[u].Products; len(p) > 0 {
			if err := favs.AddProducts(ctx, u, p...); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d vendors, seeded favorites for %d users\n", indexed, len(users))
	return nil
}
