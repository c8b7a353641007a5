package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"goldwatch/core/apperror"
	"goldwatch/core/cache"
	"goldwatch/core/paging"
	"goldwatch/core/search"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service answers catalog queries about game servers.
type Service struct {
	db      *gorm.DB
	logger  *zap.Logger
	catalog *cache.Loader[[]Server]
}

// NewService creates a new server service. The cache backs the full-catalog
// read used by batch paths and the feed updater.
func NewService(db *gorm.DB, logger *zap.Logger, catalog *cache.Loader[[]Server]) *Service {
	return &Service{db: db, logger: logger, catalog: catalog}
}

// Schema is the searchable field whitelist for servers.
func Schema() search.Schema {
	return search.Schema{
		"id":      {Column: "id", Type: search.FieldNumber},
		"name":    {Column: "name", Type: search.FieldString},
		"faction": {Column: "faction", Type: search.FieldEnum, Parse: enumToken(ParseFaction)},
		"region":  {Column: "region", Type: search.FieldEnum, Parse: enumToken(ParseRegion)},
		"gameVersion": {Column: "game_version", Type: search.FieldEnum,
			Parse: enumToken(ParseGameVersion)},
	}
}

// enumToken adapts a typed enum parser to the schema's string contract.
func enumToken[E ~string](parse func(string) (E, error)) func(string) (string, error) {
	return func(s string) (string, error) {
		v, err := parse(s)
		if err != nil {
			return "", err
		}
		return string(v), nil
	}
}

// GetByID returns the server with the given canonical id.
func (s *Service) GetByID(ctx context.Context, id int) (*Server, error) {
	var srv Server
	err := s.db.WithContext(ctx).First(&srv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFound("no server found for id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load server %d: %w", id, err)
	}
	return &srv, nil
}

// Get resolves a user-supplied identifier: either a bare numeric id or a
// composite "<name>-<faction>" string.
func (s *Service) Get(ctx context.Context, identifier string) (*Server, error) {
	if id, err := strconv.Atoi(identifier); err == nil {
		return s.GetByID(ctx, id)
	}

	ident, err := ResolveIdentifier(identifier, DisplayDelimiter)
	if err != nil {
		return nil, err
	}

	var srv Server
	err = s.db.WithContext(ctx).
		Where("LOWER(name) = ? AND faction = ?", ident.Name, ident.Faction).
		First(&srv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFound("no server found with name %q", ident.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load server %q: %w", identifier, err)
	}
	return &srv, nil
}

// GetAll returns the full canonical catalog, cached behind the loader.
func (s *Service) GetAll(ctx context.Context) ([]Server, error) {
	return s.catalog.Get("servers:all", func() ([]Server, error) {
		var servers []Server
		if err := s.db.WithContext(ctx).Order("id").Find(&servers).Error; err != nil {
			return nil, fmt.Errorf("failed to load server catalog: %w", err)
		}
		return servers, nil
	})
}

// GetAllForRegion returns every server in the region, subregions included.
func (s *Service) GetAllForRegion(ctx context.Context, regionName string) ([]Server, error) {
	region, err := ParseRegion(regionName)
	if err != nil {
		return nil, err
	}

	var servers []Server
	err = s.db.WithContext(ctx).
		Where("region IN ?", region.Members()).
		Order("id").
		Find(&servers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load servers for region %s: %w", region, err)
	}
	if len(servers) == 0 {
		return nil, apperror.NewNotFound("no servers found for region %s", region)
	}
	return servers, nil
}

// List returns one catalog page.
func (s *Service) List(ctx context.Context, page paging.Request) (paging.Page[Server], error) {
	page = page.Normalize()

	var total int64
	if err := s.db.WithContext(ctx).Model(&Server{}).Count(&total).Error; err != nil {
		return paging.Page[Server]{}, fmt.Errorf("failed to count servers: %w", err)
	}

	var servers []Server
	err := s.db.WithContext(ctx).
		Order("id").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&servers).Error
	if err != nil {
		return paging.Page[Server]{}, fmt.Errorf("failed to list servers: %w", err)
	}
	return paging.NewPage(servers, total, page), nil
}

// Search compiles the request against the server schema and returns one page
// of matches.
func (s *Service) Search(ctx context.Context, req search.Request, page paging.Request) (paging.Page[Server], error) {
	pred, err := search.Compile(req, Schema())
	if err != nil {
		return paging.Page[Server]{}, err
	}
	order, err := Schema().SortColumn(page.Sort)
	if err != nil {
		return paging.Page[Server]{}, err
	}
	page = page.Normalize()

	var total int64
	if err := pred.Apply(s.db.WithContext(ctx).Model(&Server{})).Count(&total).Error; err != nil {
		return paging.Page[Server]{}, fmt.Errorf("failed to count server search: %w", err)
	}

	q := pred.Apply(s.db.WithContext(ctx).Model(&Server{}))
	if order != "" {
		q = q.Order(order)
	} else {
		q = q.Order("id")
	}

	var servers []Server
	if err := q.Offset(page.Offset()).Limit(page.Size).Find(&servers).Error; err != nil {
		return paging.Page[Server]{}, fmt.Errorf("failed to search servers: %w", err)
	}
	if len(servers) == 0 {
		return paging.Page[Server]{}, apperror.NewNotFound("no servers found for search request")
	}
	return paging.NewPage(servers, total, page), nil
}
