package cmd

import (
	"time"

	"goldwatch/core/cache"
	"goldwatch/core/config"
	"goldwatch/core/paging"
	"goldwatch/feature/goldprice"
	"goldwatch/feature/item"
	"goldwatch/feature/itemprice"
	"goldwatch/feature/population"
	"goldwatch/feature/server"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// application bundles the wired services shared by the server and the
// one-shot update command.
type application struct {
	servers     *server.Service
	items       *item.Service
	itemPrices  *itemprice.Service
	goldPrices  *goldprice.Service
	populations *population.Service
	updater     *goldprice.Updater
}

// loaderFor builds a read-path loader backed by a TTL cache, or by a noop
// cache when caching is disabled.
func loaderFor[V any](cfg config.CacheConfig) *cache.Loader[V] {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if !cfg.Enabled {
		return cache.NewLoader[V](cache.NoopCache[string, V]{}, 0)
	}
	return cache.NewLoader[V](cache.NewTTLCache[string, V](), ttl)
}

// buildApplication wires repositories, caches and services onto the shared
// database handle.
func buildApplication(cfg *config.Config, db *gorm.DB, logg *zap.Logger) *application {
	servers := server.NewService(db, logg, loaderFor[[]server.Server](cfg.Cache))
	items := item.NewService(db, logg)

	itemPrices := itemprice.NewService(
		itemprice.NewRepository(db),
		servers,
		items,
		logg,
		loaderFor[[]itemprice.ItemPrice](cfg.Cache),
		loaderFor[paging.Page[itemprice.ItemPrice]](cfg.Cache),
	)

	goldRepo := goldprice.NewRepository(db)
	goldPrices := goldprice.NewService(goldRepo, servers, logg, loaderFor[[]goldprice.GoldPrice](cfg.Cache))

	populations := population.NewService(
		population.NewRepository(db),
		servers,
		logg,
		loaderFor[[]population.Population](cfg.Cache),
	)

	var updater *goldprice.Updater
	if cfg.Feed.Enabled {
		client := goldprice.NewClient(cfg.Feed.URL, time.Duration(cfg.Feed.TimeoutSeconds)*time.Second)
		interval := time.Duration(cfg.Feed.IntervalMinutes) * time.Minute
		updater = goldprice.NewUpdater(client, servers, goldRepo, logg, interval)
	}

	return &application{
		servers:     servers,
		items:       items,
		itemPrices:  itemPrices,
		goldPrices:  goldPrices,
		populations: populations,
		updater:     updater,
	}
}

// migrate creates the snapshot and catalog tables if they do not exist yet.
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&server.Server{},
		&item.Item{},
		&itemprice.ItemPrice{},
		&goldprice.GoldPrice{},
		&population.Population{},
	)
}
