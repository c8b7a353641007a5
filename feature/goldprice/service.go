package goldprice

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"goldwatch/core/apperror"
	"goldwatch/core/cache"
	"goldwatch/core/paging"
	"goldwatch/core/search"
	"goldwatch/core/timerange"
	"goldwatch/feature/server"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// resolveConcurrency bounds the fan-out when resolving batch identifier
// lists, so a large request cannot flood the database with lookups.
const resolveConcurrency = 8

// Service is the query surface over gold price snapshots.
type Service struct {
	repo    *Repository
	servers *server.Service
	logger  *zap.Logger
	lists   *cache.Loader[[]GoldPrice]
}

// NewService creates a new gold price service.
func NewService(repo *Repository, servers *server.Service, logger *zap.Logger, lists *cache.Loader[[]GoldPrice]) *Service {
	return &Service{repo: repo, servers: servers, logger: logger, lists: lists}
}

// Schema is the searchable field whitelist for gold price snapshots.
func Schema() search.Schema {
	return search.Schema{
		"serverId":  {Column: "server_id", Type: search.FieldNumber},
		"price":     {Column: "price", Type: search.FieldNumber},
		"updatedAt": {Column: "updated_at", Type: search.FieldTime},
	}
}

// GetRecentForServer returns the current gold price of one server.
func (s *Service) GetRecentForServer(ctx context.Context, serverIdentifier string) (*GoldPrice, error) {
	if strings.TrimSpace(serverIdentifier) == "" {
		return nil, apperror.NewValidation("server identifier cannot be null or empty")
	}
	srv, err := s.servers.Get(ctx, serverIdentifier)
	if err != nil {
		return nil, err
	}
	return s.repo.RecentForServer(ctx, srv.ID)
}

// GetAllRecent returns the current gold price of every server.
func (s *Service) GetAllRecent(ctx context.Context) ([]GoldPrice, error) {
	return s.lists.Get("goldprice:recent:all", func() ([]GoldPrice, error) {
		prices, err := s.repo.RecentForAll(ctx)
		if err != nil {
			return nil, err
		}
		if len(prices) == 0 {
			return nil, apperror.NewNotFound("no gold prices found")
		}
		return prices, nil
	})
}

// GetRecentForRegion returns the current gold price of every server in the
// region, subregions included.
func (s *Service) GetRecentForRegion(ctx context.Context, regionName string) ([]GoldPrice, error) {
	region, err := server.ParseRegion(regionName)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("goldprice:recent:region:%s", region)
	return s.lists.Get(key, func() ([]GoldPrice, error) {
		prices, err := s.repo.RecentForRegions(ctx, region.Members())
		if err != nil {
			return nil, err
		}
		if len(prices) == 0 {
			return nil, apperror.NewNotFound("no gold prices found for region %s", regionName)
		}
		return prices, nil
	})
}

// GetRecentForFaction returns the current gold price of every server of the
// faction.
func (s *Service) GetRecentForFaction(ctx context.Context, factionName string) ([]GoldPrice, error) {
	faction, err := server.ParseFaction(factionName)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("goldprice:recent:faction:%s", faction)
	return s.lists.Get(key, func() ([]GoldPrice, error) {
		prices, err := s.repo.RecentForFaction(ctx, faction)
		if err != nil {
			return nil, err
		}
		if len(prices) == 0 {
			return nil, apperror.NewNotFound("no gold prices found for faction %s", factionName)
		}
		return prices, nil
	})
}

// GetRecentForServerList returns the current gold price of each identified
// server. Identifiers resolve with bounded parallelism; a single failed
// identifier fails the batch.
func (s *Service) GetRecentForServerList(ctx context.Context, serverIdentifiers []string) ([]GoldPrice, error) {
	if len(serverIdentifiers) == 0 {
		return nil, apperror.NewValidation("server list cannot be empty")
	}

	serverIDs, err := s.resolveServerIDs(ctx, serverIdentifiers)
	if err != nil {
		return nil, err
	}

	prices, err := s.repo.RecentForServerList(ctx, serverIDs)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, apperror.NewNotFound("no gold prices found for server list")
	}
	return prices, nil
}

// GetForServerAndTimeRange returns every snapshot of one server inside the
// window, newest first.
func (s *Service) GetForServerAndTimeRange(ctx context.Context, serverIdentifier string,
	tr timerange.TimeRange, page paging.Request) (paging.Page[GoldPrice], error) {
	if strings.TrimSpace(serverIdentifier) == "" {
		return paging.Page[GoldPrice]{}, apperror.NewValidation("server identifier cannot be null or empty")
	}
	page = page.Normalize()

	srv, err := s.servers.Get(ctx, serverIdentifier)
	if err != nil {
		return paging.Page[GoldPrice]{}, err
	}
	prices, total, err := s.repo.ForServerAndTimeRange(ctx, srv.ID, tr, page)
	if err != nil {
		return paging.Page[GoldPrice]{}, err
	}
	if len(prices) == 0 {
		return paging.Page[GoldPrice]{}, apperror.NewNotFound("no gold prices found for time range %s for server identifier %s",
			tr, serverIdentifier)
	}
	return paging.NewPage(prices, total, page), nil
}

// GetForTimeRange returns every snapshot of every server inside the window.
func (s *Service) GetForTimeRange(ctx context.Context, tr timerange.TimeRange, page paging.Request) (paging.Page[GoldPrice], error) {
	page = page.Normalize()
	prices, total, err := s.repo.ForTimeRange(ctx, tr, page)
	if err != nil {
		return paging.Page[GoldPrice]{}, err
	}
	if len(prices) == 0 {
		return paging.Page[GoldPrice]{}, apperror.NewNotFound("no gold prices found for time range %s", tr)
	}
	return paging.NewPage(prices, total, page), nil
}

// Search compiles the request against the gold price schema and returns one
// page of matching snapshots.
func (s *Service) Search(ctx context.Context, req search.Request, page paging.Request) (paging.Page[GoldPrice], error) {
	pred, err := search.Compile(req, Schema())
	if err != nil {
		return paging.Page[GoldPrice]{}, err
	}
	order, err := Schema().SortColumn(page.Sort)
	if err != nil {
		return paging.Page[GoldPrice]{}, err
	}
	page = page.Normalize()

	db := s.repo.db.WithContext(ctx)
	var total int64
	if err := pred.Apply(db.Model(&GoldPrice{})).Count(&total).Error; err != nil {
		return paging.Page[GoldPrice]{}, fmt.Errorf("failed to count gold price search: %w", err)
	}

	q := pred.Apply(db.Model(&GoldPrice{}))
	if order != "" {
		q = q.Order(order)
	} else {
		q = q.Order("id")
	}

	var prices []GoldPrice
	if err := q.Offset(page.Offset()).Limit(page.Size).Find(&prices).Error; err != nil {
		return paging.Page[GoldPrice]{}, fmt.Errorf("failed to search gold prices: %w", err)
	}
	if len(prices) == 0 {
		return paging.Page[GoldPrice]{}, apperror.NewNotFound("no gold prices found for search request")
	}
	return paging.NewPage(prices, total, page), nil
}

// SaveAll appends a batch of snapshots atomically.
func (s *Service) SaveAll(ctx context.Context, prices []GoldPrice) error {
	return s.repo.SaveAll(ctx, prices)
}

// resolveServerIDs resolves server identifiers with bounded parallelism.
// All lookups must succeed; the first failure cancels the rest and becomes
// the batch's failure.
func (s *Service) resolveServerIDs(ctx context.Context, identifiers []string) ([]int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)

	ids := make([]int, len(identifiers))
	for i, identifier := range identifiers {
		g.Go(func() error {
			srv, err := s.servers.Get(ctx, identifier)
			if err != nil {
				return err
			}
			ids[i] = srv.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Dedupe while keeping output deterministic for the IN query.
	seen := make(map[int]struct{}, len(ids))
	unique := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Ints(unique)
	return unique, nil
}
