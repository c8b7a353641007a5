package itemprice

import (
	"time"

	"goldwatch/core/apperror"
	"goldwatch/core/logger"
	"goldwatch/core/paging"
	"goldwatch/core/search"
	"goldwatch/core/timerange"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for item price snapshots.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the item price routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/item-prices")
	group.Post("/search", h.HandleSearch)
	group.Post("/recent", h.HandleRecentForItemList)
	group.Get("/servers/:serverIdentifier/recent", h.HandleRecentForServer)
	group.Get("/servers/:serverIdentifier/items/:itemIdentifier/recent", h.HandleRecentForServerAndItem)
	group.Get("/servers/:serverIdentifier/items/:itemIdentifier", h.HandleForTimeRange)
	group.Get("/regions/:region/items/:itemIdentifier/recent", h.HandleRecentForRegion)
	group.Get("/factions/:faction/items/:itemIdentifier/recent", h.HandleRecentForFaction)
}

// HandleRecentForServer returns the server's most recent snapshot per item.
// @Summary Recent item prices for server
// @Tags item-prices
// @Produce json
// @Param serverIdentifier path string true "Server id or name-faction identifier"
// @Success 200 {object} paging.Page[ItemPrice]
// @Router /item-prices/servers/{serverIdentifier}/recent [get]
func (h *Handler) HandleRecentForServer(c *fiber.Ctx) error {
	page := paging.Request{Page: c.QueryInt("page"), Size: c.QueryInt("size")}
	result, err := h.service.GetRecentForServer(c.Context(), c.Params("serverIdentifier"), page)
	if err != nil {
		return h.fail(c, err, "recent item prices for server failed")
	}
	return c.JSON(result)
}

// HandleRecentForServerAndItem returns the most recent snapshot for one
// server and item.
// @Summary Recent item price for server and item
// @Tags item-prices
// @Produce json
// @Param serverIdentifier path string true "Server identifier"
// @Param itemIdentifier path string true "Item id or name"
// @Success 200 {array} ItemPrice
// @Router /item-prices/servers/{serverIdentifier}/items/{itemIdentifier}/recent [get]
func (h *Handler) HandleRecentForServerAndItem(c *fiber.Ctx) error {
	prices, err := h.service.GetRecentForServerAndItem(c.Context(), c.Params("serverIdentifier"), c.Params("itemIdentifier"))
	if err != nil {
		return h.fail(c, err, "recent item price for server and item failed")
	}
	return c.JSON(prices)
}

// HandleRecentForRegion returns each server's most recent snapshot in a region.
// @Summary Recent item prices for region
// @Tags item-prices
// @Produce json
// @Param region path string true "Region name"
// @Param itemIdentifier path string true "Item id or name"
// @Success 200 {array} ItemPrice
// @Router /item-prices/regions/{region}/items/{itemIdentifier}/recent [get]
func (h *Handler) HandleRecentForRegion(c *fiber.Ctx) error {
	prices, err := h.service.GetRecentForRegionAndItem(c.Context(), c.Params("region"), c.Params("itemIdentifier"))
	if err != nil {
		return h.fail(c, err, "recent item prices for region failed")
	}
	return c.JSON(prices)
}

// HandleRecentForFaction returns each faction server's most recent snapshot.
// @Summary Recent item prices for faction
// @Tags item-prices
// @Produce json
// @Param faction path string true "Faction name"
// @Param itemIdentifier path string true "Item id or name"
// @Success 200 {array} ItemPrice
// @Router /item-prices/factions/{faction}/items/{itemIdentifier}/recent [get]
func (h *Handler) HandleRecentForFaction(c *fiber.Ctx) error {
	prices, err := h.service.GetRecentForFactionAndItem(c.Context(), c.Params("faction"), c.Params("itemIdentifier"))
	if err != nil {
		return h.fail(c, err, "recent item prices for faction failed")
	}
	return c.JSON(prices)
}

// HandleRecentForItemList is the batch form over item and server lists.
// @Summary Recent item prices for item list
// @Tags item-prices
// @Accept json
// @Produce json
// @Param request body Request true "Item and server lists"
// @Success 200 {object} paging.Page[ItemPrice]
// @Router /item-prices/recent [post]
func (h *Handler) HandleRecentForItemList(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed item price request"})
	}
	page := paging.Request{Page: c.QueryInt("page"), Size: c.QueryInt("size")}
	result, err := h.service.GetRecentForItemListAndServers(c.Context(), req, page)
	if err != nil {
		return h.fail(c, err, "recent item prices for item list failed")
	}
	return c.JSON(result)
}

// HandleForTimeRange returns all snapshots in a time window, newest first.
// Accepts either start/end timestamps or a "days" shorthand.
// @Summary Item prices for time range
// @Tags item-prices
// @Produce json
// @Param serverIdentifier path string true "Server identifier"
// @Param itemIdentifier path string true "Item id or name"
// @Param days query int false "Window covering the last N days"
// @Success 200 {object} paging.Page[ItemPrice]
// @Router /item-prices/servers/{serverIdentifier}/items/{itemIdentifier} [get]
func (h *Handler) HandleForTimeRange(c *fiber.Ctx) error {
	tr, err := parseTimeRange(c)
	if err != nil {
		return h.fail(c, err, "invalid time range")
	}
	page := paging.Request{Page: c.QueryInt("page"), Size: c.QueryInt("size")}
	result, err := h.service.GetForServerAndTimeRange(c.Context(), c.Params("serverIdentifier"), c.Params("itemIdentifier"), tr, page)
	if err != nil {
		return h.fail(c, err, "item prices for time range failed")
	}
	return c.JSON(result)
}

// HandleSearch runs a declarative search over snapshots.
// @Summary Search item prices
// @Tags item-prices
// @Accept json
// @Produce json
// @Param request body search.Request true "Search request"
// @Success 200 {object} paging.Page[ItemPrice]
// @Router /item-prices/search [post]
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	var req search.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed search request"})
	}
	page := paging.Request{Page: c.QueryInt("page"), Size: c.QueryInt("size"), Sort: c.Query("sort")}
	result, err := h.service.Search(c.Context(), req, page)
	if err != nil {
		return h.fail(c, err, "item price search failed")
	}
	return c.JSON(result)
}

func parseTimeRange(c *fiber.Ctx) (timerange.TimeRange, error) {
	if days := c.QueryInt("days"); days > 0 {
		return timerange.LastDays(days)
	}
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		return timerange.TimeRange{}, apperror.NewValidation("invalid start timestamp %q", c.Query("start"))
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		return timerange.TimeRange{}, apperror.NewValidation("invalid end timestamp %q", c.Query("end"))
	}
	return timerange.New(start, end)
}

func (h *Handler) fail(c *fiber.Ctx, err error, msg string) error {
	l := logger.WithRayID(h.logger, c)
	l.Error(msg, zap.Error(err))
	return c.Status(apperror.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
}
