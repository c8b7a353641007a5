package goldprice

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestApp(t *testing.T, db *gorm.DB, updater *Updater) *fiber.App {
	t.Helper()
	app := fiber.New()
	handler := NewHandler(newTestGoldService(t, db), updater, zap.NewNop())
	handler.RegisterRoutes(app)
	return app
}

func TestHandleUpdateReturnsOKAfterCompletedRun(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)

	feed := feedServer(t, `{"payload":{"results":[
		{"server_name":"everlook-alliance","price":1},
		{"server_name":"grobbulus-us-horde","price":2}
	]}}`)
	app := setupTestApp(t, db, newTestUpdater(t, db, feed.URL))

	req := httptest.NewRequest("POST", "/gold-prices/update", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "updated", body["status"])

	// The run has already persisted by the time the response arrives.
	var count int64
	require.NoError(t, db.Model(&GoldPrice{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestHandleUpdateConflictsWhileRunning(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)

	feed := feedServer(t, `{"payload":{"results":[]}}`)
	updater := newTestUpdater(t, db, feed.URL)
	updater.running.Store(true)
	app := setupTestApp(t, db, updater)

	req := httptest.NewRequest("POST", "/gold-prices/update", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestHandleUpdateRejectedWhenFeedDisabled(t *testing.T) {
	db := setupTestDB(t)
	app := setupTestApp(t, db, nil)

	req := httptest.NewRequest("POST", "/gold-prices/update", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
