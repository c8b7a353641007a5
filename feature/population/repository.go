package population

import (
	"context"
	"fmt"

	"goldwatch/core/apperror"
	"goldwatch/core/paging"
	"goldwatch/core/timerange"
	"goldwatch/feature/server"

	"gorm.io/gorm"
)

const saveChunkSize = 100

// Repository runs the snapshot-store queries for populations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new population repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// recentPerServer selects exactly one row per server: the one no other row of
// the same server beats on (updated_at, id).
func (r *Repository) recentPerServer(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("populations AS p").
		Joins("LEFT JOIN populations AS nwr ON nwr.server_id = p.server_id" +
			" AND (nwr.updated_at > p.updated_at OR (nwr.updated_at = p.updated_at AND nwr.id > p.id))").
		Where("nwr.id IS NULL")
}

// RecentForServer returns the server's current population.
func (r *Repository) RecentForServer(ctx context.Context, serverID int) (*Population, error) {
	var pops []Population
	err := r.recentPerServer(ctx).
		Where("p.server_id = ?", serverID).
		Select("p.*").
		Limit(1).
		Find(&pops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent population for server %d: %w", serverID, err)
	}
	if len(pops) == 0 {
		return nil, apperror.NewNotFound("no population found for server id %d", serverID)
	}
	return &pops[0], nil
}

// RecentForAll returns the current population of every server.
func (r *Repository) RecentForAll(ctx context.Context) ([]Population, error) {
	var pops []Population
	err := r.recentPerServer(ctx).
		Select("p.*").
		Order("p.server_id").
		Find(&pops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent populations: %w", err)
	}
	return pops, nil
}

// RecentForRegions returns the current population of every server in the
// given regions.
func (r *Repository) RecentForRegions(ctx context.Context, regions []server.Region) ([]Population, error) {
	var pops []Population
	err := r.recentPerServer(ctx).
		Joins("JOIN servers AS s ON s.id = p.server_id").
		Where("s.region IN ?", regions).
		Select("p.*").
		Order("p.server_id").
		Find(&pops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent populations for regions %v: %w", regions, err)
	}
	return pops, nil
}

// RecentForFaction returns the current population of every server of the
// faction.
func (r *Repository) RecentForFaction(ctx context.Context, faction server.Faction) ([]Population, error) {
	var pops []Population
	err := r.recentPerServer(ctx).
		Joins("JOIN servers AS s ON s.id = p.server_id").
		Where("s.faction = ?", faction).
		Select("p.*").
		Order("p.server_id").
		Find(&pops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent populations for faction %s: %w", faction, err)
	}
	return pops, nil
}

// TotalForName sums the current population of both faction rows sharing one
// realm name. Missing factions contribute zero.
func (r *Repository) TotalForName(ctx context.Context, name string) (*TotalPop, error) {
	var totals []TotalPop
	err := r.recentPerServer(ctx).
		Joins("JOIN servers AS s ON s.id = p.server_id").
		Where("LOWER(s.name) = ?", name).
		Select("LOWER(s.name) AS name," +
			" SUM(CASE WHEN s.faction = 'ALLIANCE' THEN p.value ELSE 0 END) AS alliance_population," +
			" SUM(CASE WHEN s.faction = 'HORDE' THEN p.value ELSE 0 END) AS horde_population," +
			" SUM(p.value) AS combined_population").
		Group("LOWER(s.name)").
		Find(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to total population for %q: %w", name, err)
	}
	if len(totals) == 0 {
		return nil, apperror.NewNotFound("no population found for server name %q", name)
	}
	return &totals[0], nil
}

// ForServerAndTimeRange returns every snapshot of one server inside the
// window, newest first, without deduplication.
func (r *Repository) ForServerAndTimeRange(ctx context.Context, serverID int, tr timerange.TimeRange, page paging.Request) ([]Population, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&Population{}).
			Where("server_id = ?", serverID).
			Where("updated_at >= ? AND updated_at <= ?", tr.Start, tr.End)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count populations in time range: %w", err)
	}

	var pops []Population
	err := base().
		Order("updated_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&pops).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load populations in time range: %w", err)
	}
	return pops, total, nil
}

// SaveAll appends a batch of snapshots inside one transaction.
func (r *Repository) SaveAll(ctx context.Context, pops []Population) error {
	if len(pops) == 0 {
		return apperror.NewValidation("population batch cannot be empty")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(pops, saveChunkSize).Error
	})
}
