package goldprice

import (
	"errors"
	"strings"
	"time"

	"goldwatch/core/apperror"
	"goldwatch/core/logger"
	"goldwatch/core/paging"
	"goldwatch/core/search"
	"goldwatch/core/timerange"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for gold price snapshots.
type Handler struct {
	service *Service
	updater *Updater
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler. The updater may be nil when the feed
// is disabled; the update endpoint then reports a validation failure.
func NewHandler(service *Service, updater *Updater, logger *zap.Logger) *Handler {
	return &Handler{service: service, updater: updater, logger: logger}
}

// RegisterRoutes registers the gold price routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/gold-prices")
	group.Post("/search", h.HandleSearch)
	group.Post("/update", h.HandleUpdate)
	group.Post("/servers/recent", h.HandleRecentForServerList)
	group.Get("/recent", h.HandleAllRecent)
	group.Get("/", h.HandleForTimeRange)
	group.Get("/regions/:region/recent", h.HandleRecentForRegion)
	group.Get("/factions/:faction/recent", h.HandleRecentForFaction)
	group.Get("/servers/:serverIdentifier/recent", h.HandleRecentForServer)
	group.Get("/servers/:serverIdentifier", h.HandleForServerAndTimeRange)
}

// HandleRecentForServer returns the server's current gold price.
// @Summary Recent gold price for server
// @Tags gold-prices
// @Produce json
// @Param serverIdentifier path string true "Server id or name-faction identifier"
// @Success 200 {object} GoldPrice
// @Router /gold-prices/servers/{serverIdentifier}/recent [get]
func (h *Handler) HandleRecentForServer(c *fiber.Ctx) error {
	price, err := h.service.GetRecentForServer(c.Context(), c.Params("serverIdentifier"))
	if err != nil {
		return h.fail(c, err, "recent gold price for server failed")
	}
	return c.JSON(price)
}

// HandleAllRecent returns every server's current gold price.
// @Summary Recent gold prices for all servers
// @Tags gold-prices
// @Produce json
// @Success 200 {array} GoldPrice
// @Router /gold-prices/recent [get]
func (h *Handler) HandleAllRecent(c *fiber.Ctx) error {
	prices, err := h.service.GetAllRecent(c.Context())
	if err != nil {
		return h.fail(c, err, "recent gold prices failed")
	}
	return c.JSON(prices)
}

// HandleRecentForRegion returns the current gold price of every server in a
// region.
// @Summary Recent gold prices for region
// @Tags gold-prices
// @Produce json
// @Param region path string true "Region name"
// @Success 200 {array} GoldPrice
// @Router /gold-prices/regions/{region}/recent [get]
func (h *Handler) HandleRecentForRegion(c *fiber.Ctx) error {
	prices, err := h.service.GetRecentForRegion(c.Context(), c.Params("region"))
	if err != nil {
		return h.fail(c, err, "recent gold prices for region failed")
	}
	return c.JSON(prices)
}

// HandleRecentForFaction returns the current gold price of every server of a
// faction.
// @Summary Recent gold prices for faction
// @Tags gold-prices
// @Produce json
// @Param faction path string true "Faction name"
// @Success 200 {array} GoldPrice
// @Router /gold-prices/factions/{faction}/recent [get]
func (h *Handler) HandleRecentForFaction(c *fiber.Ctx) error {
	prices, err := h.service.GetRecentForFaction(c.Context(), c.Params("faction"))
	if err != nil {
		return h.fail(c, err, "recent gold prices for faction failed")
	}
	return c.JSON(prices)
}

// HandleRecentForServerList is the batch form over a server identifier list.
// @Summary Recent gold prices for server list
// @Tags gold-prices
// @Accept json
// @Produce json
// @Param request body []string true "Server identifiers"
// @Success 200 {array} GoldPrice
// @Router /gold-prices/servers/recent [post]
func (h *Handler) HandleRecentForServerList(c *fiber.Ctx) error {
	var identifiers []string
	if err := c.BodyParser(&identifiers); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed server list"})
	}
	prices, err := h.service.GetRecentForServerList(c.Context(), identifiers)
	if err != nil {
		return h.fail(c, err, "recent gold prices for server list failed")
	}
	return c.JSON(prices)
}

// HandleForServerAndTimeRange returns one server's snapshots in a window,
// newest first. Accepts either start/end timestamps or a "days" shorthand.
// @Summary Gold prices for server and time range
// @Tags gold-prices
// @Produce json
// @Param serverIdentifier path string true "Server identifier"
// @Param days query int false "Window covering the last N days"
// @Success 200 {object} paging.Page[GoldPrice]
// @Router /gold-prices/servers/{serverIdentifier} [get]
func (h *Handler) HandleForServerAndTimeRange(c *fiber.Ctx) error {
	tr, err := parseTimeRange(c)
	if err != nil {
		return h.fail(c, err, "invalid time range")
	}
	page := paging.Request{Page: c.QueryInt("page"), Size: c.QueryInt("size")}
	result, err := h.service.GetForServerAndTimeRange(c.Context(), c.Params("serverIdentifier"), tr, page)
	if err != nil {
		return h.fail(c, err, "gold prices for time range failed")
	}
	return c.JSON(result)
}

// HandleForTimeRange returns every server's snapshots in a window.
// @Summary Gold prices for time range
// @Tags gold-prices
// @Produce json
// @Param days query int false "Window covering the last N days"
// @Success 200 {object} paging.Page[GoldPrice]
// @Router /gold-prices/ [get]
func (h *Handler) HandleForTimeRange(c *fiber.Ctx) error {
	tr, err := parseTimeRange(c)
	if err != nil {
		return h.fail(c, err, "invalid time range")
	}
	page := paging.Request{Page: c.QueryInt("page"), Size: c.QueryInt("size")}
	result, err := h.service.GetForTimeRange(c.Context(), tr, page)
	if err != nil {
		return h.fail(c, err, "gold prices for time range failed")
	}
	return c.JSON(result)
}

// HandleSearch runs a declarative search over snapshots.
// @Summary Search gold prices
// @Tags gold-prices
// @Accept json
// @Produce json
// @Param request body search.Request true "Search request"
// @Success 200 {object} paging.Page[GoldPrice]
// @Router /gold-prices/search [post]
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	var req search.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed search request"})
	}
	page := paging.Request{Page: c.QueryInt("page"), Size: c.QueryInt("size"), Sort: c.Query("sort")}
	result, err := h.service.Search(c.Context(), req, page)
	if err != nil {
		return h.fail(c, err, "gold price search failed")
	}
	return c.JSON(result)
}

// HandleUpdate runs a feed reconciliation synchronously and reports its
// outcome.
// @Summary Trigger gold price update
// @Tags gold-prices
// @Produce json
// @Success 200 {object} fiber.Map
// @Router /gold-prices/update [post]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	if h.updater == nil {
		return h.fail(c, apperror.NewValidation("gold price feed is disabled"), "gold price update rejected")
	}
	if err := h.updater.RunOnce(c.Context()); err != nil {
		if errors.Is(err, ErrUpdateInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return h.fail(c, err, "gold price update failed")
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

func parseTimeRange(c *fiber.Ctx) (timerange.TimeRange, error) {
	if days := c.QueryInt("days"); days > 0 {
		return timerange.LastDays(days)
	}
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(c.Query("start")))
	if err != nil {
		return timerange.TimeRange{}, apperror.NewValidation("invalid start timestamp %q", c.Query("start"))
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(c.Query("end")))
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
