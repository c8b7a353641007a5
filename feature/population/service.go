package population

import (
	"context"
	"fmt"
	"strings"

	"goldwatch/core/apperror"
	"goldwatch/core/cache"
	"goldwatch/core/paging"
	"goldwatch/core/search"
	"goldwatch/core/timerange"
	"goldwatch/feature/server"

	"go.uber.org/zap"
)

// Service is the query surface over population snapshots.
type Service struct {
	repo    *Repository
	servers *server.Service
	logger  *zap.Logger
	lists   *cache.Loader[[]Population]
}

// NewService creates a new population service.
func NewService(repo *Repository, servers *server.Service, logger *zap.Logger, lists *cache.Loader[[]Population]) *Service {
	return &Service{repo: repo, servers: servers, logger: logger, lists: lists}
}

// Schema is the searchable field whitelist for population snapshots.
func Schema() search.Schema {
	return search.Schema{
		"serverId":  {Column: "server_id", Type: search.FieldNumber},
		"value":     {Column: "value", Type: search.FieldNumber},
		"updatedAt": {Column: "updated_at", Type: search.FieldTime},
	}
}

// GetRecentForServer returns the current population of one server.
func (s *Service) GetRecentForServer(ctx context.Context, serverIdentifier string) (*Population, error) {
	if strings.TrimSpace(serverIdentifier) == "" {
		return nil, apperror.NewValidation("server identifier cannot be null or empty")
	}
	srv, err := s.servers.Get(ctx, serverIdentifier)
	if err != nil {
		return nil, err
	}
	return s.repo.RecentForServer(ctx, srv.ID)
}

// GetAllRecent returns the current population of every server.
func (s *Service) GetAllRecent(ctx context.Context) ([]Population, error) {
	return s.lists.Get("population:recent:all", func() ([]Population, error) {
		pops, err := s.repo.RecentForAll(ctx)
		if err != nil {
			return nil, err
		}
		if len(pops) == 0 {
			return nil, apperror.NewNotFound("no populations found")
		}
		return pops, nil
	})
}

// GetRecentForRegion returns the current population of every server in the
// region, subregions included.
func (s *Service) GetRecentForRegion(ctx context.Context, regionName string) ([]Population, error) {
	region, err := server.ParseRegion(regionName)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("population:recent:region:%s", region)
	return s.lists.Get(key, func() ([]Population, error) {
		pops, err := s.repo.RecentForRegions(ctx, region.Members())
		if err != nil {
			return nil, err
		}
		if len(pops) == 0 {
			return nil, apperror.NewNotFound("no populations found for region %s", regionName)
		}
		return pops, nil
	})
}

// GetRecentForFaction returns the current population of every server of the
// faction.
func (s *Service) GetRecentForFaction(ctx context.Context, factionName string) ([]Population, error) {
	faction, err := server.ParseFaction(factionName)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("population:recent:faction:%s", faction)
	return s.lists.Get(key, func() ([]Population, error) {
		pops, err := s.repo.RecentForFaction(ctx, faction)
		if err != nil {
			return nil, err
		}
		if len(pops) == 0 {
			return nil, apperror.NewNotFound("no populations found for faction %s", factionName)
		}
		return pops, nil
	})
}

// GetTotalForName returns the combined current population of the realm name
// across both factions.
func (s *Service) GetTotalForName(ctx context.Context, name string) (*TotalPop, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, apperror.NewValidation("server name cannot be null or empty")
	}
	return s.repo.TotalForName(ctx, name)
}

// GetForServerAndTimeRange returns every snapshot of one server inside the
// window, newest first.
func (s *Service) GetForServerAndTimeRange(ctx context.Context, serverIdentifier string,
	tr timerange.TimeRange, page paging.Request) (paging.Page[Population], error) {
	if strings.TrimSpace(serverIdentifier) == "" {
		return paging.Page[Population]{}, apperror.NewValidation("server identifier cannot be null or empty")
	}
	page = page.Normalize()

	srv, err := s.servers.Get(ctx, serverIdentifier)
	if err != nil {
		return paging.Page[Population]{}, err
	}
	pops, total, err := s.repo.ForServerAndTimeRange(ctx, srv.ID, tr, page)
	if err != nil {
		return paging.Page[Population]{}, err
	}
	if len(pops) == 0 {
		return paging.Page[Population]{}, apperror.NewNotFound("no populations found for time range %s for server identifier %s",
			tr, serverIdentifier)
	}
	return paging.NewPage(pops, total, page), nil
}

// Search compiles the request against the population schema and returns one
// page of matching snapshots.
func (s *Service) Search(ctx context.Context, req search.Request, page paging.Request) (paging.Page[Population], error) {
	pred, err := search.Compile(req, Schema())
	if err != nil {
		return paging.Page[Population]{}, err
	}
	order, err := Schema().SortColumn(page.Sort)
	if err != nil {
		return paging.Page[Population]{}, err
	}
	page = page.Normalize()

	db := s.repo.db.WithContext(ctx)
	var total int64
	if err := pred.Apply(db.Model(&Population{})).Count(&total).Error; err != nil {
		return paging.Page[Population]{}, fmt.Errorf("failed to count population search: %w", err)
	}

	q := pred.Apply(db.Model(&Population{}))
	if order != "" {
		q = q.Order(order)
	} else {
		q = q.Order("id")
	}

	var pops []Population
	if err := q.Offset(page.Offset()).Limit(page.Size).Find(&pops).Error; err != nil {
		return paging.Page[Population]{}, fmt.Errorf("failed to search populations: %w", err)
	}
	if len(pops) == 0 {
		return paging.Page[Population]{}, apperror.NewNotFound("no populations found for search request")
	}
	return paging.NewPage(pops, total, page), nil
}

// SaveAll appends a batch of snapshots atomically.
func (s *Service) SaveAll(ctx context.Context, pops []Population) error {
	return s.repo.SaveAll(ctx, pops)
}
