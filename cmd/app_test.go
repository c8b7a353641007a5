package cmd

import (
	"testing"

	"goldwatch/core/config"
	"goldwatch/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, migrate(db))
	return db
}

func testConfig(feedEnabled bool) *config.Config {
	return &config.Config{
		Feed: config.FeedConfig{
			URL:             "http://localhost:0",
			IntervalMinutes: 60,
			TimeoutSeconds:  5,
			Enabled:         feedEnabled,
		},
		Cache: config.CacheConfig{TTLSeconds: 60, Enabled: true},
	}
}

func TestBuildApplicationWiresAllServices(t *testing.T) {
	db := setupTestDB(t)

	app := buildApplication(testConfig(true), db, zap.NewNop())
	assert.NotNil(t, app.servers)
	assert.NotNil(t, app.items)
	assert.NotNil(t, app.itemPrices)
	assert.NotNil(t, app.goldPrices)
	assert.NotNil(t, app.populations)
	assert.NotNil(t, app.updater)
}

func TestBuildApplicationSkipsUpdaterWhenFeedDisabled(t *testing.T) {
	db := setupTestDB(t)

	app := buildApplication(testConfig(false), db, zap.NewNop())
	assert.Nil(t, app.updater)
}

func TestBuildUpdaterIgnoresDisabledFeed(t *testing.T) {
	db := setupTestDB(t)

	// The one-shot command wires an updater even when the background loop
	// is off.
	updater := buildUpdater(testConfig(false), db, zap.NewNop())
	assert.NotNil(t, updater)
}
