package itemprice

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
	"goldwatch/feature/item"
	"goldwatch/feature/server"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// resolveConcurrency bounds the fan-out when resolving batch identifier
// lists, so a large request cannot flood the database with lookups.
const resolveConcurrency = 8

// Service is the query surface over item price snapshots.
type Service struct {
	repo    *Repository
	servers *server.Service
	items   *item.Service
	logger  *zap.Logger
	lists   *cache.Loader[[]ItemPrice]
	pages   *cache.Loader[paging.Page[ItemPrice]]
}

// NewService creates a new item price service. The loaders sit in front of
// read paths only; backing them with NoopCache disables caching without
// changing results.
func NewService(repo *Repository, servers *server.Service, items *item.Service, logger *zap.Logger,
	lists *cache.Loader[[]ItemPrice], pages *cache.Loader[paging.Page[ItemPrice]]) *Service {
	return &Service{
		repo:    repo,
		servers: servers,
		items:   items,
		logger:  logger,
		lists:   lists,
		pages:   pages,
	}
}

// Schema is the searchable field whitelist for item price snapshots.
func Schema() search.Schema {
	return search.Schema{
		"itemId":          {Column: "item_id", Type: search.FieldNumber},
		"serverId":        {Column: "server_id", Type: search.FieldNumber},
		"minBuyout":       {Column: "min_buyout", Type: search.FieldNumber},
		"historicalValue": {Column: "historical_value", Type: search.FieldNumber},
		"marketValue":     {Column: "market_value", Type: search.FieldNumber},
		"quantity":        {Column: "quantity", Type: search.FieldNumber},
		"numAuctions":     {Column: "num_auctions", Type: search.FieldNumber},
		"updatedAt":       {Column: "updated_at", Type: search.FieldTime},
	}
}

// GetRecentForServer returns the server's most recent snapshot per item, one
// page at a time.
func (s *Service) GetRecentForServer(ctx context.Context, serverIdentifier string, page paging.Request) (paging.Page[ItemPrice], error) {
	if strings.TrimSpace(serverIdentifier) == "" {
		return paging.Page[ItemPrice]{}, apperror.NewValidation("server identifier cannot be null or empty")
	}
	page = page.Normalize()

	key := fmt.Sprintf("itemprice:recent:server:%s:p%d:s%d", strings.ToLower(serverIdentifier), page.Page, page.Size)
	return s.pages.Get(key, func() (paging.Page[ItemPrice], error) {
		srv, err := s.servers.Get(ctx, serverIdentifier)
		if err != nil {
			return paging.Page[ItemPrice]{}, err
		}
		prices, total, err := s.repo.RecentForServer(ctx, srv.ID, page)
		if err != nil {
			return paging.Page[ItemPrice]{}, err
		}
		if len(prices) == 0 {
			return paging.Page[ItemPrice]{}, apperror.NewNotFound("no recent item prices found for server identifier %s", serverIdentifier)
		}
		return paging.NewPage(prices, total, page), nil
	})
}

// GetRecentForServerAndItem returns the most recent snapshot for one
// (server, item) pair.
func (s *Service) GetRecentForServerAndItem(ctx context.Context, serverIdentifier, itemIdentifier string) ([]ItemPrice, error) {
	if err := requireIdentifiers(serverIdentifier, itemIdentifier); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("itemprice:recent:server:%s:item:%s", strings.ToLower(serverIdentifier), strings.ToLower(itemIdentifier))
	return s.lists.Get(key, func() ([]ItemPrice, error) {
		srv, err := s.servers.Get(ctx, serverIdentifier)
		if err != nil {
			return nil, err
		}
		it, err := s.items.Get(ctx, itemIdentifier)
		if err != nil {
			return nil, err
		}
		prices, err := s.repo.RecentForServerAndItem(ctx, srv.ID, it.ID)
		if err != nil {
			return nil, err
		}
		if len(prices) == 0 {
			return nil, apperror.NewNotFound("no item prices found for server identifier %s and item identifier %s",
				serverIdentifier, itemIdentifier)
		}
		return prices, nil
	})
}

// GetRecentForRegionAndItem returns one snapshot per server in the region:
// each server's most recent for the item.
func (s *Service) GetRecentForRegionAndItem(ctx context.Context, regionName, itemIdentifier string) ([]ItemPrice, error) {
	if err := requireIdentifiers(regionName, itemIdentifier); err != nil {
		return nil, err
	}
	region, err := server.ParseRegion(regionName)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("itemprice:recent:region:%s:item:%s", region, strings.ToLower(itemIdentifier))
	return s.lists.Get(key, func() ([]ItemPrice, error) {
		it, err := s.items.Get(ctx, itemIdentifier)
		if err != nil {
			return nil, err
		}
		prices, err := s.repo.RecentForRegionAndItem(ctx, region.Members(), it.ID)
		if err != nil {
			return nil, err
		}
		if len(prices) == 0 {
			return nil, apperror.NewNotFound("no item prices found for region %s and item identifier %s", regionName, itemIdentifier)
		}
		return prices, nil
	})
}

// GetRecentForFactionAndItem returns one snapshot per server of the faction:
// each server's most recent for the item.
func (s *Service) GetRecentForFactionAndItem(ctx context.Context, factionName, itemIdentifier string) ([]ItemPrice, error) {
	if err := requireIdentifiers(factionName, itemIdentifier); err != nil {
		return nil, err
	}
	faction, err := server.ParseFaction(factionName)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("itemprice:recent:faction:%s:item:%s", faction, strings.ToLower(itemIdentifier))
	return s.lists.Get(key, func() ([]ItemPrice, error) {
		it, err := s.items.Get(ctx, itemIdentifier)
		if err != nil {
			return nil, err
		}
		prices, err := s.repo.RecentForFactionAndItem(ctx, faction, it.ID)
		if err != nil {
			return nil, err
		}
		if len(prices) == 0 {
			return nil, apperror.NewNotFound("no item prices found for faction %s and item identifier %s", factionName, itemIdentifier)
		}
		return prices, nil
	})
}

// GetRecentForItemListAndServers is the batch form: most recent snapshot per
// (server, item) group across the requested lists. An empty server list
// resolves across all servers.
func (s *Service) GetRecentForItemListAndServers(ctx context.Context, req Request, page paging.Request) (paging.Page[ItemPrice], error) {
	if len(req.ItemList) == 0 {
		return paging.Page[ItemPrice]{}, apperror.NewValidation("item list cannot be empty")
	}
	page = page.Normalize()

	key := fmt.Sprintf("itemprice:recent:items:%s:servers:%s:p%d:s%d",
		canonicalList(req.ItemList), canonicalList(req.ServerList), page.Page, page.Size)
	return s.pages.Get(key, func() (paging.Page[ItemPrice], error) {
		itemIDs, err := s.resolveItemIDs(ctx, req.ItemList)
		if err != nil {
			return paging.Page[ItemPrice]{}, err
		}
		var serverIDs []int
		if len(req.ServerList) > 0 {
			serverIDs, err = s.resolveServerIDs(ctx, req.ServerList)
			if err != nil {
				return paging.Page[ItemPrice]{}, err
			}
		}

		prices, total, err := s.repo.RecentForItemList(ctx, itemIDs, serverIDs, page)
		if err != nil {
			return paging.Page[ItemPrice]{}, err
		}
		if len(prices) == 0 {
			return paging.Page[ItemPrice]{}, apperror.NewNotFound("no recent prices found for item list")
		}
		return paging.NewPage(prices, total, page), nil
	})
}

// GetForServerAndTimeRange returns all snapshots of one (server, item) pair
// inside the window, newest first, without deduplication.
func (s *Service) GetForServerAndTimeRange(ctx context.Context, serverIdentifier, itemIdentifier string,
	tr timerange.TimeRange, page paging.Request) (paging.Page[ItemPrice], error) {
	if err := requireIdentifiers(serverIdentifier, itemIdentifier); err != nil {
		return paging.Page[ItemPrice]{}, err
	}
	page = page.Normalize()

	srv, err := s.servers.Get(ctx, serverIdentifier)
	if err != nil {
		return paging.Page[ItemPrice]{}, err
	}
	it, err := s.items.Get(ctx, itemIdentifier)
	if err != nil {
		return paging.Page[ItemPrice]{}, err
	}

	prices, total, err := s.repo.ForServerAndTimeRange(ctx, srv.ID, it.ID, tr, page)
	if err != nil {
		return paging.Page[ItemPrice]{}, err
	}
	if len(prices) == 0 {
		return paging.Page[ItemPrice]{}, apperror.NewNotFound("no item prices found for time range %s for server identifier %s and item identifier %s",
			tr, serverIdentifier, itemIdentifier)
	}
	return paging.NewPage(prices, total, page), nil
}

// Search compiles the request against the item price schema and returns one
// page of matching snapshots.
func (s *Service) Search(ctx context.Context, req search.Request, page paging.Request) (paging.Page[ItemPrice], error) {
	pred, err := search.Compile(req, Schema())
	if err != nil {
		return paging.Page[ItemPrice]{}, err
	}
	order, err := Schema().SortColumn(page.Sort)
	if err != nil {
		return paging.Page[ItemPrice]{}, err
	}
	page = page.Normalize()

	db := s.repo.db.WithContext(ctx)
	var total int64
	if err := pred.Apply(db.Model(&ItemPrice{})).Count(&total).Error; err != nil {
		return paging.Page[ItemPrice]{}, fmt.Errorf("failed to count item price search: %w", err)
	}

	q := pred.Apply(db.Model(&ItemPrice{}))
	if order != "" {
		q = q.Order(order)
	} else {
		q = q.Order("id")
	}

	var prices []ItemPrice
	if err := q.Offset(page.Offset()).Limit(page.Size).Find(&prices).Error; err != nil {
		return paging.Page[ItemPrice]{}, fmt.Errorf("failed to search item prices: %w", err)
	}
	if len(prices) == 0 {
		return paging.Page[ItemPrice]{}, apperror.NewNotFound("no item prices found for search request")
	}
	return paging.NewPage(prices, total, page), nil
}

// SaveAll appends a batch of snapshots atomically.
func (s *Service) SaveAll(ctx context.Context, prices []ItemPrice) error {
	return s.repo.SaveAll(ctx, prices)
}

// resolveServerIDs resolves server identifiers with bounded parallelism.
// All lookups must succeed; the first failure cancels the rest and becomes
// the batch's failure.
func (s *Service) resolveServerIDs(ctx context.Context, identifiers []string) ([]int, error) {
	return resolveIDs(ctx, identifiers, func(ctx context.Context, identifier string) (int, error) {
		srv, err := s.servers.Get(ctx, identifier)
		if err != nil {
			return 0, err
		}
		return srv.ID, nil
	})
}

// resolveItemIDs resolves item identifiers with bounded parallelism.
func (s *Service) resolveItemIDs(ctx context.Context, identifiers []string) ([]int, error) {
	return resolveIDs(ctx, identifiers, func(ctx context.Context, identifier string) (int, error) {
		it, err := s.items.Get(ctx, identifier)
		if err != nil {
			return 0, err
		}
		return it.ID, nil
	})
}

func resolveIDs(ctx context.Context, identifiers []string, lookup func(context.Context, string) (int, error)) ([]int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)

	ids := make([]int, len(identifiers))
	for i, identifier := range identifiers {
		g.Go(func() error {
			id, err := lookup(ctx, identifier)
			if err != nil {
				return err
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Dedupe while keeping output deterministic for cache keys and queries.
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

func requireIdentifiers(first, second string) error {
	if strings.TrimSpace(first) == "" || strings.TrimSpace(second) == "" {
		return apperror.NewValidation("identifier cannot be null or empty")
	}
	return nil
}

func canonicalList(values []string) string {
	lowered := make([]string, len(values))
	for i, v := range values {
		lowered[i] = strings.ToLower(v)
	}
	sort.Strings(lowered)
	return strings.Join(lowered, ",")
}
