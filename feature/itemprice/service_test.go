package itemprice

import (
	"context"
	"testing"
	"time"

	"goldwatch/core/apperror"
	"goldwatch/core/cache"
	"goldwatch/core/database"
	"goldwatch/core/paging"
	"goldwatch/core/search"
	"goldwatch/core/timerange"
	"goldwatch/feature/item"
	"goldwatch/feature/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&server.Server{}, &item.Item{}, &ItemPrice{}))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	logg := zap.NewNop()
	catalog := cache.NewLoader[[]server.Server](cache.NoopCache[string, []server.Server]{}, 0)
	servers := server.NewService(db, logg, catalog)
	items := item.NewService(db, logg)
	lists := cache.NewLoader[[]ItemPrice](cache.NoopCache[string, []ItemPrice]{}, 0)
	pages := cache.NewLoader[paging.Page[ItemPrice]](cache.NoopCache[string, paging.Page[ItemPrice]]{}, 0)
	return NewService(NewRepository(db), servers, items, logg, lists, pages)
}

func at(h int) time.Time {
	return time.Date(2023, 6, 1, h, 0, 0, 0, time.UTC)
}

func seedWorld(t *testing.T, db *gorm.DB) {
	t.Helper()
	servers := []server.Server{
		{ID: 1, Name: "Everlook", Faction: server.FactionAlliance, Region: server.RegionDE, GameVersion: server.VersionClassic},
		{ID: 2, Name: "Everlook", Faction: server.FactionHorde, Region: server.RegionDE, GameVersion: server.VersionClassic},
		{ID: 3, Name: "Grobbulus US", Faction: server.FactionHorde, Region: server.RegionUS, GameVersion: server.VersionSeasonal},
	}
	require.NoError(t, db.Create(&servers).Error)

	items := []item.Item{
		{ID: 100, Name: "Black Lotus", Slug: "black-lotus", Quality: item.QualityRare, Type: "HERB"},
		{ID: 101, Name: "Elementium Ore", Slug: "elementium-ore", Quality: item.QualityEpic, Type: "ORE"},
	}
	require.NoError(t, db.Create(&items).Error)

	prices := []ItemPrice{
		{ServerID: 1, ItemID: 100, MinBuyout: 10, MarketValue: 11, UpdatedAt: at(1)},
		{ServerID: 1, ItemID: 100, MinBuyout: 12, MarketValue: 13, UpdatedAt: at(2)},
		{ServerID: 1, ItemID: 101, MinBuyout: 50, MarketValue: 55, UpdatedAt: at(1)},
		{ServerID: 2, ItemID: 100, MinBuyout: 20, MarketValue: 21, UpdatedAt: at(1)},
		{ServerID: 3, ItemID: 100, MinBuyout: 30, MarketValue: 31, UpdatedAt: at(2)},
	}
	require.NoError(t, db.Create(&prices).Error)
}

func TestGetRecentForServerGroupsPerItem(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	svc := newTestService(t, db)

	page, err := svc.GetRecentForServer(context.Background(), "Everlook-Alliance", paging.Request{})
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	assert.EqualValues(t, 2, page.TotalGroups)

	byItem := map[int]ItemPrice{}
	for _, p := range page.Content {
		byItem[p.ItemID] = p
	}
	// Only the newest snapshot per item survives deduplication.
	assert.EqualValues(t, 12, byItem[100].MinBuyout)
	assert.EqualValues(t, 50, byItem[101].MinBuyout)
}

func TestGetRecentForServerTieBreaksOnID(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	prices := []ItemPrice{
		{ServerID: 3, ItemID: 101, MinBuyout: 1, UpdatedAt: at(5)},
		{ServerID: 3, ItemID: 101, MinBuyout: 2, UpdatedAt: at(5)},
	}
	require.NoError(t, db.Create(&prices).Error)
	svc := newTestService(t, db)

	for i := 0; i < 3; i++ {
		result, err := svc.GetRecentForServerAndItem(context.Background(), "3", "elementium-ore")
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.EqualValues(t, 2, result[0].MinBuyout)
	}
}

func TestGetRecentForServerAndItem(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	svc := newTestService(t, db)

	result, err := svc.GetRecentForServerAndItem(context.Background(), "Everlook-Horde", "black-lotus")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.EqualValues(t, 20, result[0].MinBuyout)

	_, err = svc.GetRecentForServerAndItem(context.Background(), "Everlook-Horde", "elementium-ore")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetRecentForRegionAndItem(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	svc := newTestService(t, db)

	// EU rolls up DE, so both Everlook sides match.
	result, err := svc.GetRecentForRegionAndItem(context.Background(), "eu", "black-lotus")
	require.NoError(t, err)
	assert.Len(t, result, 2)

	result, err = svc.GetRecentForRegionAndItem(context.Background(), "us", "black-lotus")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 3, result[0].ServerID)
}

func TestGetRecentForFactionAndItem(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	svc := newTestService(t, db)

	result, err := svc.GetRecentForFactionAndItem(context.Background(), "horde", "black-lotus")
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestGetRecentForItemList(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	svc := newTestService(t, db)

	// Across all servers: one row per (server, item) group.
	page, err := svc.GetRecentForItemListAndServers(context.Background(),
		Request{ItemList: []string{"black-lotus"}}, paging.Request{})
	require.NoError(t, err)
	assert.Len(t, page.Content, 3)
	assert.EqualValues(t, 3, page.TotalGroups)

	// Restricted to one server.
	page, err = svc.GetRecentForItemListAndServers(context.Background(),
		Request{ItemList: []string{"black-lotus", "elementium-ore"}, ServerList: []string{"Everlook-Alliance"}},
		paging.Request{})
	require.NoError(t, err)
	assert.Len(t, page.Content, 2)
}

func TestGetRecentForItemListValidation(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	svc := newTestService(t, db)

	_, err := svc.GetRecentForItemListAndServers(context.Background(), Request{}, paging.Request{})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	// One unknown item fails the batch.
	_, err = svc.GetRecentForItemListAndServers(context.Background(),
		Request{ItemList: []string{"black-lotus", "unobtainium"}}, paging.Request{})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetForServerAndTimeRange(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	svc := newTestService(t, db)

	tr, err := timerange.New(at(0), at(3))
	require.NoError(t, err)

	// Windowed queries keep every row, newest first.
	page, err := svc.GetForServerAndTimeRange(context.Background(), "Everlook-Alliance", "black-lotus", tr, paging.Request{})
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	assert.EqualValues(t, 2, page.TotalGroups)
	assert.EqualValues(t, 12, page.Content[0].MinBuyout)
	assert.EqualValues(t, 10, page.Content[1].MinBuyout)
}

func TestGetForServerAndTimeRangeEmptyWindow(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	svc := newTestService(t, db)

	tr, err := timerange.New(at(10), at(20))
	require.NoError(t, err)

	_, err = svc.GetForServerAndTimeRange(context.Background(), "Everlook-Alliance", "black-lotus", tr, paging.Request{})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSearchItemPrices(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	svc := newTestService(t, db)

	req := search.Request{
		GlobalOperator: search.And,
		Criteria: []search.Criterion{
			{Field: "itemId", Operator: search.OpEqual, Value: "100"},
			{Field: "minBuyout", Operator: search.OpGreaterOrEqual, Value: "20"},
		},
	}
	page, err := svc.Search(context.Background(), req, paging.Request{Sort: "minBuyout,desc"})
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	assert.EqualValues(t, 30, page.Content[0].MinBuyout)
	assert.EqualValues(t, 20, page.Content[1].MinBuyout)
}

func TestSaveAllRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	seedWorld(t, db)
	svc := newTestService(t, db)

	batch := []ItemPrice{
		{ServerID: 2, ItemID: 101, MinBuyout: 70, MarketValue: 77, UpdatedAt: at(4)},
	}
	require.NoError(t, svc.SaveAll(context.Background(), batch))

	result, err := svc.GetRecentForServerAndItem(context.Background(), "Everlook-Horde", "elementium-ore")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.EqualValues(t, 70, result[0].MinBuyout)

	err = svc.SaveAll(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}
