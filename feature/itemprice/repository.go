package itemprice

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

// Repository runs the snapshot-store queries for item prices.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new item price repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// recentForGroups selects exactly one row per (server_id, item_id) group: the
// one no other row in the group beats on (updated_at, id). The anti-join is
// equivalent to "max updated_at, ties broken by max id" on every backend,
// without relying on backend-specific DISTINCT ON ordering.
func (r *Repository) recentForGroups(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("item_prices AS ip").
		Joins("LEFT JOIN item_prices AS nwr ON nwr.server_id = ip.server_id AND nwr.item_id = ip.item_id" +
			" AND (nwr.updated_at > ip.updated_at OR (nwr.updated_at = ip.updated_at AND nwr.id > ip.id))").
		Where("nwr.id IS NULL")
}

// RecentForServer returns one page of the server's most recent snapshot per
// item. The total counts item groups, not raw rows.
func (r *Repository) RecentForServer(ctx context.Context, serverID int, page paging.Request) ([]ItemPrice, int64, error) {
	var total int64
	err := r.recentForGroups(ctx).
		Where("ip.server_id = ?", serverID).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count recent prices for server %d: %w", serverID, err)
	}

	var prices []ItemPrice
	err = r.recentForGroups(ctx).
		Where("ip.server_id = ?", serverID).
		Select("ip.*").
		Order("ip.item_id").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&prices).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load recent prices for server %d: %w", serverID, err)
	}
	return prices, total, nil
}

// RecentForServerAndItem returns the single most recent snapshot of one
// (server, item) group, as a list for uniformity with the other variants.
func (r *Repository) RecentForServerAndItem(ctx context.Context, serverID, itemID int) ([]ItemPrice, error) {
	var prices []ItemPrice
	err := r.recentForGroups(ctx).
		Where("ip.server_id = ? AND ip.item_id = ?", serverID, itemID).
		Select("ip.*").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent price for server %d item %d: %w", serverID, itemID, err)
	}
	return prices, nil
}

// RecentForRegionAndItem returns one snapshot per server in the given
// regions: each server's most recent for the item.
func (r *Repository) RecentForRegionAndItem(ctx context.Context, regions []server.Region, itemID int) ([]ItemPrice, error) {
	var prices []ItemPrice
	err := r.recentForGroups(ctx).
		Joins("JOIN servers AS s ON s.id = ip.server_id").
		Where("s.region IN ? AND ip.item_id = ?", regions, itemID).
		Select("ip.*").
		Order("ip.server_id").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent prices for regions %v item %d: %w", regions, itemID, err)
	}
	return prices, nil
}

// RecentForFactionAndItem returns one snapshot per server of the faction:
// each server's most recent for the item.
func (r *Repository) RecentForFactionAndItem(ctx context.Context, faction server.Faction, itemID int) ([]ItemPrice, error) {
	var prices []ItemPrice
	err := r.recentForGroups(ctx).
		Joins("JOIN servers AS s ON s.id = ip.server_id").
		Where("s.faction = ? AND ip.item_id = ?", faction, itemID).
		Select("ip.*").
		Order("ip.server_id").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent prices for faction %s item %d: %w", faction, itemID, err)
	}
	return prices, nil
}

// RecentForItemList returns one page of the most recent snapshot per
// (server, item) group for the given items. An empty serverIDs slice means
// all servers; otherwise groups are restricted to the listed servers.
func (r *Repository) RecentForItemList(ctx context.Context, itemIDs, serverIDs []int, page paging.Request) ([]ItemPrice, int64, error) {
	base := func() *gorm.DB {
		q := r.recentForGroups(ctx).Where("ip.item_id IN ?", itemIDs)
		if len(serverIDs) > 0 {
			q = q.Where("ip.server_id IN ?", serverIDs)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recent prices for item list: %w", err)
	}

	var prices []ItemPrice
	err := base().
		Select("ip.*").
		Order("ip.server_id, ip.item_id").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&prices).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load recent prices for item list: %w", err)
	}
	return prices, total, nil
}

// ForServerAndTimeRange returns every snapshot of one (server, item) pair
// inside the window, newest first, without deduplication. The total counts
// raw rows since every row is its own group here.
func (r *Repository) ForServerAndTimeRange(ctx context.Context, serverID, itemID int, tr timerange.TimeRange, page paging.Request) ([]ItemPrice, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&ItemPrice{}).
			Where("server_id = ? AND item_id = ?", serverID, itemID).
			Where("updated_at >= ? AND updated_at <= ?", tr.Start, tr.End)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count prices in time range: %w", err)
	}

	var prices []ItemPrice
	err := base().
		Order("updated_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&prices).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load prices in time range: %w", err)
	}
	return prices, total, nil
}

// SaveAll appends a batch of snapshots inside one transaction, chunked for
// the backend. A failing chunk rolls back everything written in the run.
func (r *Repository) SaveAll(ctx context.Context, prices []ItemPrice) error {
	if len(prices) == 0 {
		return apperror.NewValidation("item price batch cannot be empty")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(prices, saveChunkSize).Error
	})
}
