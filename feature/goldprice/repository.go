package goldprice

import (
	"context"
	"fmt"

	"goldwatch/core/apperror"
	"goldwatch/core/paging"
	"goldwatch/core/timerange"
	"goldwatch/feature/server"

	"gorm.io/gorm"
)

// saveChunkSize is how many snapshot rows one INSERT carries. All chunks of a
// run still commit inside one transaction.
const saveChunkSize = 100

// Repository runs the snapshot-store queries for gold prices.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new gold price repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// recentPerServer selects exactly one row per server: the one no other row of
// the same server beats on (updated_at, id). Equivalent to max updated_at
// with ties broken by max id, portable across backends.
func (r *Repository) recentPerServer(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("gold_prices AS gp").
		Joins("LEFT JOIN gold_prices AS nwr ON nwr.server_id = gp.server_id" +
			" AND (nwr.updated_at > gp.updated_at OR (nwr.updated_at = gp.updated_at AND nwr.id > gp.id))").
		Where("nwr.id IS NULL")
}

// RecentForServer returns the server's current gold price.
func (r *Repository) RecentForServer(ctx context.Context, serverID int) (*GoldPrice, error) {
	var prices []GoldPrice
	err := r.recentPerServer(ctx).
		Where("gp.server_id = ?", serverID).
		Select("gp.*").
		Limit(1).
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent gold price for server %d: %w", serverID, err)
	}
	if len(prices) == 0 {
		return nil, apperror.NewNotFound("no gold price found for server id %d", serverID)
	}
	return &prices[0], nil
}

// RecentForAll returns the current gold price of every server.
func (r *Repository) RecentForAll(ctx context.Context) ([]GoldPrice, error) {
	var prices []GoldPrice
	err := r.recentPerServer(ctx).
		Select("gp.*").
		Order("gp.server_id").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent gold prices: %w", err)
	}
	return prices, nil
}

// RecentForRegions returns the current gold price of every server in the
// given regions.
func (r *Repository) RecentForRegions(ctx context.Context, regions []server.Region) ([]GoldPrice, error) {
	var prices []GoldPrice
	err := r.recentPerServer(ctx).
		Joins("JOIN servers AS s ON s.id = gp.server_id").
		Where("s.region IN ?", regions).
		Select("gp.*").
		Order("gp.server_id").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent gold prices for regions %v: %w", regions, err)
	}
	return prices, nil
}

// RecentForFaction returns the current gold price of every server of the
// faction.
func (r *Repository) RecentForFaction(ctx context.Context, faction server.Faction) ([]GoldPrice, error) {
	var prices []GoldPrice
	err := r.recentPerServer(ctx).
		Joins("JOIN servers AS s ON s.id = gp.server_id").
		Where("s.faction = ?", faction).
		Select("gp.*").
		Order("gp.server_id").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent gold prices for faction %s: %w", faction, err)
	}
	return prices, nil
}

// RecentForServerList returns the current gold price of each listed server.
func (r *Repository) RecentForServerList(ctx context.Context, serverIDs []int) ([]GoldPrice, error) {
	var prices []GoldPrice
	err := r.recentPerServer(ctx).
		Where("gp.server_id IN ?", serverIDs).
		Select("gp.*").
		Order("gp.server_id").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent gold prices for server list: %w", err)
	}
	return prices, nil
}

// ForServerAndTimeRange returns every snapshot of one server inside the
// window, newest first, without deduplication.
func (r *Repository) ForServerAndTimeRange(ctx context.Context, serverID int, tr timerange.TimeRange, page paging.Request) ([]GoldPrice, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&GoldPrice{}).
			Where("server_id = ?", serverID).
			Where("updated_at >= ? AND updated_at <= ?", tr.Start, tr.End)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count gold prices in time range: %w", err)
	}

	var prices []GoldPrice
	err := base().
		Order("updated_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&prices).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load gold prices in time range: %w", err)
	}
	return prices, total, nil
}

// ForTimeRange returns every snapshot of every server inside the window.
func (r *Repository) ForTimeRange(ctx context.Context, tr timerange.TimeRange, page paging.Request) ([]GoldPrice, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&GoldPrice{}).
			Where("updated_at >= ? AND updated_at <= ?", tr.Start, tr.End)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count gold prices in time range: %w", err)
	}

	var prices []GoldPrice
	err := base().
		Order("updated_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&prices).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load gold prices in time range: %w", err)
	}
	return prices, total, nil
}

// SaveAll appends a batch of snapshots inside one transaction, chunked for
// the backend. A failing chunk rolls back everything written in the run, so
// partial batches never become visible to readers.
func (r *Repository) SaveAll(ctx context.Context, prices []GoldPrice) error {
	if len(prices) == 0 {
		return apperror.NewValidation("gold price batch cannot be empty")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(prices, saveChunkSize).Error
	})
}
