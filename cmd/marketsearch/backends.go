package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketsearch/internal/config"
	dbPostgres "github.com/kailas-cloud/marketsearch/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/marketsearch/internal/db/redis"
	analyticsrepo "github.com/kailas-cloud/marketsearch/internal/repository/analytics"
	catalogrepo "github.com/kailas-cloud/marketsearch/internal/repository/catalog"
	favoritesrepo "github.com/kailas-cloud/marketsearch/internal/repository/favorites"
	"github.com/kailas-cloud/marketsearch/internal/repository/fixture"
	"github.com/kailas-cloud/marketsearch/internal/repository/geoindex"
	windowsrepo "github.com/kailas-cloud/marketsearch/internal/repository/windows"
	analyticsuc "github.com/kailas-cloud/marketsearch/internal/usecase/analytics"
	healthuc "github.com/kailas-cloud/marketsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/marketsearch/internal/usecase/search"
	windowsuc "github.com/kailas-cloud/marketsearch/internal/usecase/windows"
)

// backends are the collaborators selected by config.
type backends struct {
	catalog   searchuc.CatalogStore
	geo       searchuc.VendorGeoIndex
	favorites searchuc.FavoritesStore
	windows   windowsuc.Store
	pingers   map[string]healthuc.Pinger
	redis     *dbRedis.Store
	closers   []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openRedis connects to Redis or Valkey. Both speak the same GEO, SET and STREAM commands.
func openRedis(ctx context.Context, cfg config.RedisConfig) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s not ready: %w", cfg.Driver, err)
	}
	return store, nil
}

func openBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backends, error) {
	b := &backends{pingers: map[string]healthuc.Pinger{}}

	if cfg.Redis.Enabled() {
		store, err := openRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		b.redis = store
		b.closers = append(b.closers, store.Close)
		b.pingers["redis"] = store
		b.geo = geoindex.New(store, cfg.Redis.KeyPrefix)
		b.favorites = favoritesrepo.New(store, cfg.Redis.KeyPrefix)
		logger.Info("Connected to geo index", zap.String("driver", cfg.Redis.Driver), zap.Strings("addrs", cfg.Redis.Addrs))
	}

	switch cfg.Catalog.Driver {
	case config.CatalogPostgres:
		pg := cfg.Catalog.Postgres
		pool, err := dbPostgres.NewPool(ctx, dbPostgres.Config{
			Host:     pg.Host,
			Port:     pg.Port,
			User:     pg.User,
			Password: pg.Password,
			Database: pg.Database,
			SSLMode:  pg.SSLMode,
			MaxConns: pg.MaxConns,
			MinConns: pg.MinConns,
		})
		if err == nil {
			err = pool.WaitForReady(ctx, time.Duration(pg.ReadinessTimeout)*time.Second)
		}
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("catalog database: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		b.catalog = catalogrepo.New(pool)
		b.windows = windowsrepo.New(pool)
		b.pingers["catalog"] = pool
		logger.Info("Connected to catalog database", zap.String("host", pg.Host), zap.String("database", pg.Database))

	case config.CatalogFixture:
		fx, err := fixture.Load(cfg.Catalog.FixturePath)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.catalog = fx
		b.windows = fx
		b.pingers["catalog"] = fx
		if b.geo == nil {
			b.geo = fx
			b.favorites = fx
		}
		logger.Info("Loaded fixture catalog", zap.String("path", cfg.Catalog.FixturePath))
	}

	return b, nil
}

// openSink builds the analytics sink named by config.
func openSink(cfg config.AnalyticsConfig, redis *dbRedis.Store, logger *zap.Logger) (analyticsuc.Sink, func(), error) {
	noop := func() {}
	switch cfg.Sink {
	case config.SinkRedis:
		return analyticsrepo.NewStreamSink(redis, cfg.Stream, cfg.StreamMaxLen), noop, nil
	case config.SinkKafka:
		sink, err := analyticsrepo.NewKafkaSink(analyticsrepo.KafkaConfig{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.Topic,
			ClientID: cfg.Kafka.ClientID,
			Version:  cfg.Kafka.Version,
			Timeout:  cfg.SinkTimeout(),
		})
		if err != nil {
			return nil, noop, err
		}
		return sink, func() {
			if err := sink.Close(); err != nil {
				logger.Warn("Kafka producer close failed", zap.Error(err))
			}
		}, nil
	case config.SinkLog:
		return analyticsrepo.NewLogSink(logger.Named("analytics")), noop, nil
	default:
		return analyticsrepo.NopSink{}, noop, nil
	}
}
