package item

import (
	"context"
	"testing"

	"goldwatch/core/apperror"
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
	require.NoError(t, db.AutoMigrate(&Item{}))
	return db
}

func seedItems(t *testing.T, db *gorm.DB) {
	t.Helper()
	items := []Item{
		{ID: 1, Name: "Black Lotus", Slug: "black-lotus", Quality: QualityRare, Type: "HERB"},
		{ID: 2, Name: "Gurubashi Coin", Slug: "gurubashi-coin", Quality: QualityCommon, Type: "MISC"},
		{ID: 3, Name: "Sulfuras's Hand", Slug: "sulfurass-hand", Quality: QualityLegendary, Type: "WEAPON"},
	}
	require.NoError(t, db.Create(&items).Error)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "black-lotus", Slugify("Black Lotus"))
	assert.Equal(t, "sulfurass-hand", Slugify("Sulfuras's Hand"))
	assert.Equal(t, "coin", Slugify("  Coin "))
}

func TestGetByID(t *testing.T) {
	db := setupTestDB(t)
	seedItems(t, db)
	svc := NewService(db, zap.NewNop())

	it, err := svc.Get(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "Gurubashi Coin", it.Name)
}

func TestGetByName(t *testing.T) {
	db := setupTestDB(t)
	seedItems(t, db)
	svc := NewService(db, zap.NewNop())

	// Names resolve through slug normalization.
	it, err := svc.Get(context.Background(), "Black Lotus")
	require.NoError(t, err)
	assert.Equal(t, 1, it.ID)

	it, err = svc.Get(context.Background(), "Sulfuras's Hand")
	require.NoError(t, err)
	assert.Equal(t, 3, it.ID)
}

func TestGetUnknownItem(t *testing.T) {
	db := setupTestDB(t)
	seedItems(t, db)
	svc := NewService(db, zap.NewNop())

	_, err := svc.Get(context.Background(), "Unobtainium")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Get(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestListItems(t *testing.T) {
	db := setupTestDB(t)
	seedItems(t, db)
	svc := NewService(db, zap.NewNop())

	page, err := svc.List(context.Background(), paging.Request{Size: 2})
	require.NoError(t, err)
	assert.Len(t, page.Content, 2)
	assert.EqualValues(t, 3, page.TotalGroups)
}

func TestSearchItems(t *testing.T) {
	db := setupTestDB(t)
	seedItems(t, db)
	svc := NewService(db, zap.NewNop())

	req := search.Request{Criteria: []search.Criterion{
		{Field: "quality", Operator: search.OpIn, Values: []string{"rare", "legendary"}},
	}}
	page, err := svc.Search(context.Background(), req, paging.Request{Sort: "id,asc"})
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	assert.Equal(t, 1, page.Content[0].ID)
	assert.Equal(t, 3, page.Content[1].ID)

	req = search.Request{Criteria: []search.Criterion{
		{Field: "quality", Operator: search.OpEqual, Value: "shiny"},
	}}
	_, err = svc.Search(context.Background(), req, paging.Request{})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}
