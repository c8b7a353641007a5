package population

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
	require.NoError(t, db.AutoMigrate(&server.Server{}, &Population{}))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	logg := zap.NewNop()
	catalog := cache.NewLoader[[]server.Server](cache.NoopCache[string, []server.Server]{}, 0)
	servers := server.NewService(db, logg, catalog)
	lists := cache.NewLoader[[]Population](cache.NoopCache[string, []Population]{}, 0)
	return NewService(NewRepository(db), servers, logg, lists)
}

func at(h int) time.Time {
	return time.Date(2023, 6, 1, h, 0, 0, 0, time.UTC)
}

func seedPopulations(t *testing.T, db *gorm.DB) {
	t.Helper()
	servers := []server.Server{
		{ID: 1, Name: "Everlook", Faction: server.FactionAlliance, Region: server.RegionDE, GameVersion: server.VersionClassic},
		{ID: 2, Name: "Everlook", Faction: server.FactionHorde, Region: server.RegionDE, GameVersion: server.VersionClassic},
		{ID: 3, Name: "Grobbulus US", Faction: server.FactionHorde, Region: server.RegionUS, GameVersion: server.VersionSeasonal},
	}
	require.NoError(t, db.Create(&servers).Error)

	pops := []Population{
		{ServerID: 1, Value: 1000, UpdatedAt: at(1)},
		{ServerID: 1, Value: 1200, UpdatedAt: at(2)},
		{ServerID: 2, Value: 3000, UpdatedAt: at(1)},
		{ServerID: 3, Value: 500, UpdatedAt: at(2)},
	}
	require.NoError(t, db.Create(&pops).Error)
}

func TestGetRecentForServerPicksNewest(t *testing.T) {
	db := setupTestDB(t)
	seedPopulations(t, db)
	svc := newTestService(t, db)

	pop, err := svc.GetRecentForServer(context.Background(), "Everlook-Alliance")
	require.NoError(t, err)
	assert.Equal(t, 1200, pop.Value)
}

func TestGetRecentForServerValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.GetRecentForServer(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestGetAllRecent(t *testing.T) {
	db := setupTestDB(t)
	seedPopulations(t, db)
	svc := newTestService(t, db)

	pops, err := svc.GetAllRecent(context.Background())
	require.NoError(t, err)
	require.Len(t, pops, 3)
	assert.Equal(t, 1200, pops[0].Value)
}

func TestGetRecentForRegionAndFaction(t *testing.T) {
	db := setupTestDB(t)
	seedPopulations(t, db)
	svc := newTestService(t, db)

	pops, err := svc.GetRecentForRegion(context.Background(), "eu")
	require.NoError(t, err)
	assert.Len(t, pops, 2)

	pops, err = svc.GetRecentForFaction(context.Background(), "horde")
	require.NoError(t, err)
	assert.Len(t, pops, 2)
}

func TestGetTotalForNameSumsFactions(t *testing.T) {
	db := setupTestDB(t)
	seedPopulations(t, db)
	svc := newTestService(t, db)

	total, err := svc.GetTotalForName(context.Background(), "Everlook")
	require.NoError(t, err)
	assert.Equal(t, "everlook", total.Name)
	// Only each side's newest snapshot contributes.
	assert.Equal(t, 1200, total.AlliancePopulation)
	assert.Equal(t, 3000, total.HordePopulation)
	assert.Equal(t, 4200, total.CombinedPopulation)
}

func TestGetTotalForNameSingleFaction(t *testing.T) {
	db := setupTestDB(t)
	seedPopulations(t, db)
	svc := newTestService(t, db)

	total, err := svc.GetTotalForName(context.Background(), "grobbulus us")
	require.NoError(t, err)
	assert.Equal(t, 0, total.AlliancePopulation)
	assert.Equal(t, 500, total.HordePopulation)
	assert.Equal(t, 500, total.CombinedPopulation)
}

func TestGetTotalForNameUnknown(t *testing.T) {
	db := setupTestDB(t)
	seedPopulations(t, db)
	svc := newTestService(t, db)

	_, err := svc.GetTotalForName(context.Background(), "atlantis")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.GetTotalForName(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestGetForServerAndTimeRange(t *testing.T) {
	db := setupTestDB(t)
	seedPopulations(t, db)
	svc := newTestService(t, db)

	tr, err := timerange.New(at(0), at(3))
	require.NoError(t, err)

	page, err := svc.GetForServerAndTimeRange(context.Background(), "Everlook-Alliance", tr, paging.Request{})
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	assert.Equal(t, 1200, page.Content[0].Value)
	assert.Equal(t, 1000, page.Content[1].Value)
}

func TestSearchPopulations(t *testing.T) {
	db := setupTestDB(t)
	seedPopulations(t, db)
	svc := newTestService(t, db)

	req := search.Request{Criteria: []search.Criterion{
		{Field: "value", Operator: search.OpGreaterThan, Value: "900"},
	}}
	page, err := svc.Search(context.Background(), req, paging.Request{Sort: "value,desc"})
	require.NoError(t, err)
	require.Len(t, page.Content, 3)
	assert.Equal(t, 3000, page.Content[0].Value)
}

func TestSaveAllRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	seedPopulations(t, db)
	svc := newTestService(t, db)

	require.NoError(t, svc.SaveAll(context.Background(), []Population{
		{ServerID: 3, Value: 800, UpdatedAt: at(5)},
	}))

	pop, err := svc.GetRecentForServer(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, 800, pop.Value)

	err = svc.SaveAll(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}
