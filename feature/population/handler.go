package population

import (
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

// Handler handles HTTP requests for population snapshots.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the population routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/populations")
	group.Post("/search", h.HandleSearch)
	group.Get("/recent", h.HandleAllRecent)
	group.Get("/regions/:region/recent", h.HandleRecentForRegion)
	group.Get("/factions/:faction/recent", h.HandleRecentForFaction)
	group.Get("/totals/:name", h.HandleTotalForName)
	group.Get("/servers/:serverIdentifier/recent", h.HandleRecentForServer)
	group.Get("/servers/:serverIdentifier", h.HandleForServerAndTimeRange)
}

// HandleRecentForServer returns the server's current population.
// @Summary Recent population for server
// @Tags populations
// @Produce json
// @Param serverIdentifier path string true "Server id or name-faction identifier"
// @Success 200 {object} Population
// @Router /populations/servers/{serverIdentifier}/recent [get]
func (h *Handler) HandleRecentForServer(c *fiber.Ctx) error {
	pop, err := h.service.GetRecentForServer(c.Context(), c.Params("serverIdentifier"))
	if err != nil {
		return h.fail(c, err, "recent population for server failed")
	}
	return c.JSON(pop)
}

// HandleAllRecent returns every server's current population.
// @Summary Recent populations for all servers
// @Tags populations
// @Produce json
// @Success 200 {array} Population
// @Router /populations/recent [get]
func (h *Handler) HandleAllRecent(c *fiber.Ctx) error {
	pops, err := h.service.GetAllRecent(c.Context())
	if err != nil {
		return h.fail(c, err, "recent populations failed")
	}
	return c.JSON(pops)
}

// HandleRecentForRegion returns the current population of every server in a
// region.
// @Summary Recent populations for region
// @Tags populations
// @Produce json
// @Param region path string true "Region name"
// @Success 200 {array} Population
// @Router /populations/regions/{region}/recent [get]
func (h *Handler) HandleRecentForRegion(c *fiber.Ctx) error {
	pops, err := h.service.GetRecentForRegion(c.Context(), c.Params("region"))
	if err != nil {
		return h.fail(c, err, "recent populations for region failed")
	}
	return c.JSON(pops)
}

// HandleRecentForFaction returns the current population of every server of a
// faction.
// @Summary Recent populations for faction
// @Tags populations
// @Produce json
// @Param faction path string true "Faction name"
// @Success 200 {array} Population
// @Router /populations/factions/{faction}/recent [get]
func (h *Handler) HandleRecentForFaction(c *fiber.Ctx) error {
	pops, err := h.service.GetRecentForFaction(c.Context(), c.Params("faction"))
	if err != nil {
		return h.fail(c, err, "recent populations for faction failed")
	}
	return c.JSON(pops)
}

// HandleTotalForName returns the realm's combined population across factions.
// @Summary Total population for realm name
// @Tags populations
// @Produce json
// @Param name path string true "Realm name"
// @Success 200 {object} TotalPop
// @Router /populations/totals/{name} [get]
func (h *Handler) HandleTotalForName(c *fiber.Ctx) error {
	total, err := h.service.GetTotalForName(c.Context(), c.Params("name"))
	if err != nil {
		return h.fail(c, err, "total population failed")
	}
	return c.JSON(total)
}

// HandleForServerAndTimeRange returns one server's snapshots in a window,
// newest first. Accepts either start/end timestamps or a "days" shorthand.
// @Summary Populations for server and time range
// @Tags populations
// @Produce json
// @Param serverIdentifier path string true "Server identifier"
// @Param days query int false "Window covering the last N days"
// @Success 200 {object} paging.Page[Population]
// @Router /populations/servers/{serverIdentifier} [get]
func (h *Handler) HandleForServerAndTimeRange(c *fiber.Ctx) error {
	tr, err := parseTimeRange(c)
	if err != nil {
		return h.fail(c, err, "invalid time range")
	}
	page := paging.Request{Page: c.QueryInt("page"), Size: c.QueryInt("size")}
	result, err := h.service.GetForServerAndTimeRange(c.Context(), c.Params("serverIdentifier"), tr, page)
	if err != nil {
		return h.fail(c, err, "populations for time range failed")
	}
	return c.JSON(result)
}

// HandleSearch runs a declarative search over snapshots.
// @Summary Search populations
// @Tags populations
// @Accept json
// @Produce json
// @Param request body search.Request true "Search request"
// @Success 200 {object} paging.Page[Population]
// @Router /populations/search [post]
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	var req search.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed search request"})
	}
	page := paging.Request{Page: c.QueryInt("page"), Size: c.QueryInt("size"), Sort: c.Query("sort")}
	result, err := h.service.Search(c.Context(), req, page)
	if err != nil {
		return h.fail(c, err, "population search failed")
	}
	return c.JSON(result)
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
