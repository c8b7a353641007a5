package server

import (
	"context"
	"testing"
	"time"

	"goldwatch/core/apperror"
	"goldwatch/core/cache"
	"goldwatch/core/database"
	"goldwatch/core/paging"
	"goldwatch/core/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Server{}))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	catalog := cache.NewLoader[[]Server](cache.NewTTLCache[string, []Server](), time.Minute)
	return NewService(db, zap.NewNop(), catalog)
}

func seedServers(t *testing.T, db *gorm.DB) {
	t.Helper()
	servers := []Server{
		{ID: 1, Name: "Everlook", Faction: FactionAlliance, Region: RegionDE, GameVersion: VersionClassic},
		{ID: 2, Name: "Everlook", Faction: FactionHorde, Region: RegionDE, GameVersion: VersionClassic},
		{ID: 3, Name: "Grobbulus US", Faction: FactionHorde, Region: RegionUS, GameVersion: VersionSeasonal},
		{ID: 4, Name: "Firemaw", Faction: FactionAlliance, Region: RegionEU, GameVersion: VersionWrath},
	}
	require.NoError(t, db.Create(&servers).Error)
}

func TestGetByNumericIdentifier(t *testing.T) {
	db := setupTestDB(t)
	seedServers(t, db)
	svc := newTestService(t, db)

	srv, err := svc.Get(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "Grobbulus US", srv.Name)
}

func TestGetByCompositeIdentifier(t *testing.T) {
	db := setupTestDB(t)
	seedServers(t, db)
	svc := newTestService(t, db)

	srv, err := svc.Get(context.Background(), "Everlook-Horde")
	require.NoError(t, err)
	assert.Equal(t, 2, srv.ID)
	assert.Equal(t, FactionHorde, srv.Faction)

	// Three-token identifiers rejoin the name with a space.
	srv, err = svc.Get(context.Background(), "Grobbulus-US-Horde")
	require.NoError(t, err)
	assert.Equal(t, 3, srv.ID)
}

func TestGetUnknownServer(t *testing.T) {
	db := setupTestDB(t)
	seedServers(t, db)
	svc := newTestService(t, db)

	_, err := svc.Get(context.Background(), "Atlantis-Horde")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.GetByID(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetMalformedIdentifier(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Get(context.Background(), "everlook")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestGetAllForRegionIncludesSubregions(t *testing.T) {
	db := setupTestDB(t)
	seedServers(t, db)
	svc := newTestService(t, db)

	// EU covers DE, so Everlook (DE) and Firemaw (EU) are all returned.
	servers, err := svc.GetAllForRegion(context.Background(), "eu")
	require.NoError(t, err)
	assert.Len(t, servers, 3)

	servers, err = svc.GetAllForRegion(context.Background(), "us")
	require.NoError(t, err)
	assert.Len(t, servers, 1)
	assert.Equal(t, "Grobbulus US", servers[0].Name)
}

func TestGetAllForRegionUnknown(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.GetAllForRegion(context.Background(), "atlantis")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestList(t *testing.T) {
	db := setupTestDB(t)
	seedServers(t, db)
	svc := newTestService(t, db)

	page, err := svc.List(context.Background(), paging.Request{Page: 0, Size: 2})
	require.NoError(t, err)
	assert.Len(t, page.Content, 2)
	assert.EqualValues(t, 4, page.TotalGroups)
}

func TestSearchServers(t *testing.T) {
	db := setupTestDB(t)
	seedServers(t, db)
	svc := newTestService(t, db)

	req := search.Request{
		GlobalOperator: search.And,
		Criteria: []search.Criterion{
			{Field: "name", Operator: search.OpLike, Value: "ever"},
			{Field: "faction", Operator: search.OpEqual, Value: "horde"},
		},
	}
	page, err := svc.Search(context.Background(), req, paging.Request{})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, 2, page.Content[0].ID)
}

func TestSearchServersRejectsUnknownField(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	req := search.Request{Criteria: []search.Criterion{
		{Field: "password", Operator: search.OpEqual, Value: "x"},
	}}
	_, err := svc.Search(context.Background(), req, paging.Request{})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestSearchServersNoMatches(t *testing.T) {
	db := setupTestDB(t)
	seedServers(t, db)
	svc := newTestService(t, db)

	req := search.Request{Criteria: []search.Criterion{
		{Field: "name", Operator: search.OpEqual, Value: "Atlantis"},
	}}
	_, err := svc.Search(context.Background(), req, paging.Request{})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetAllIsCached(t *testing.T) {
	db := setupTestDB(t)
	seedServers(t, db)
	svc := newTestService(t, db)

	first, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 4)

	// A row added after the first load is invisible until the TTL expires.
	require.NoError(t, db.Create(&Server{ID: 5, Name: "Gehennas", Faction: FactionHorde,
		Region: RegionEU, GameVersion: VersionClassic}).Error)

	second, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 4)
}
