package item

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"goldwatch/core/apperror"
	"goldwatch/core/paging"
	"goldwatch/core/search"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service answers catalog queries about items.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new item service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Schema is the searchable field whitelist for items.
func Schema() search.Schema {
	return search.Schema{
		"id":   {Column: "id", Type: search.FieldNumber},
		"name": {Column: "name", Type: search.FieldString},
		"slug": {Column: "slug", Type: search.FieldString},
		"type": {Column: "type", Type: search.FieldString},
		"quality": {Column: "quality", Type: search.FieldEnum, Parse: func(s string) (string, error) {
			q, err := ParseQuality(s)
			if err != nil {
				return "", err
			}
			return string(q), nil
		}},
	}
}

// Get resolves an item identifier: a bare numeric id or an item name,
// normalized to its slug.
func (s *Service) Get(ctx context.Context, identifier string) (*Item, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, apperror.NewValidation("item identifier cannot be null or empty")
	}

	var it Item
	var err error
	if id, convErr := strconv.Atoi(identifier); convErr == nil {
		err = s.db.WithContext(ctx).First(&it, id).Error
	} else {
		err = s.db.WithContext(ctx).Where("slug = ?", Slugify(identifier)).First(&it).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFound("no item found for identifier %q", identifier)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item %q: %w", identifier, err)
	}
	return &it, nil
}

// List returns one catalog page.
func (s *Service) List(ctx context.Context, page paging.Request) (paging.Page[Item], error) {
	page = page.Normalize()

	var total int64
	if err := s.db.WithContext(ctx).Model(&Item{}).Count(&total).Error; err != nil {
		return paging.Page[Item]{}, fmt.Errorf("failed to count items: %w", err)
	}

	var items []Item
	err := s.db.WithContext(ctx).
		Order("id").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&items).Error
	if err != nil {
		return paging.Page[Item]{}, fmt.Errorf("failed to list items: %w", err)
	}
	return paging.NewPage(items, total, page), nil
}

// Search compiles the request against the item schema and returns one page of
// matches.
func (s *Service) Search(ctx context.Context, req search.Request, page paging.Request) (paging.Page[Item], error) {
	pred, err := search.Compile(req, Schema())
	if err != nil {
		return paging.Page[Item]{}, err
	}
	order, err := Schema().SortColumn(page.Sort)
	if err != nil {
		return paging.Page[Item]{}, err
	}
	page = page.Normalize()

	var total int64
	if err := pred.Apply(s.db.WithContext(ctx).Model(&Item{})).Count(&total).Error; err != nil {
		return paging.Page[Item]{}, fmt.Errorf("failed to count item search: %w", err)
	}

	q := pred.Apply(s.db.WithContext(ctx).Model(&Item{}))
	if order != "" {
		q = q.Order(order)
	} else {
		q = q.Order("id")
	}

	var items []Item
	if err := q.Offset(page.Offset()).Limit(page.Size).Find(&items).Error; err != nil {
		return paging.Page[Item]{}, fmt.Errorf("failed to search items: %w", err)
	}
	if len(items) == 0 {
		return paging.Page[Item]{}, apperror.NewNotFound("no items found for search request")
	}
	return paging.NewPage(items, total, page), nil
}
