package server

import (
	"goldwatch/core/apperror"
	"goldwatch/core/logger"
	"goldwatch/core/paging"
	"goldwatch/core/search"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the server catalog.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the server routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/servers")
	group.Get("/", h.HandleList)
	group.Post("/search", h.HandleSearch)
	group.Get("/region/:region", h.HandleRegion)
	group.Get("/:identifier", h.HandleGet)
}

// HandleList returns one page of the server catalog.
// @Summary List servers
// @Tags servers
// @Produce json
// @Param page query int false "Page index"
// @Param size query int false "Page size"
// @Success 200 {object} paging.Page[Server]
// @Router /servers [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	page := paging.Request{Page: c.QueryInt("page"), Size: c.QueryInt("size"), Sort: c.Query("sort")}
	result, err := h.service.List(c.Context(), page)
	if err != nil {
		return h.fail(c, err, "server list failed")
	}
	return c.JSON(result)
}

// HandleGet returns one server by id or composite identifier.
// @Summary Get server
// @Tags servers
// @Produce json
// @Param identifier path string true "Server id or name-faction identifier"
// @Success 200 {object} Server
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /servers/{identifier} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	srv, err := h.service.Get(c.Context(), c.Params("identifier"))
	if err != nil {
		return h.fail(c, err, "server lookup failed")
	}
	return c.JSON(srv)
}

// HandleRegion returns every server in a region.
// @Summary List servers for region
// @Tags servers
// @Produce json
// @Param region path string true "Region name"
// @Success 200 {array} Server
// @Router /servers/region/{region} [get]
func (h *Handler) HandleRegion(c *fiber.Ctx) error {
	servers, err := h.service.GetAllForRegion(c.Context(), c.Params("region"))
	if err != nil {
		return h.fail(c, err, "server region lookup failed")
	}
	return c.JSON(servers)
}

// HandleSearch runs a declarative search over the catalog.
// @Summary Search servers
// @Tags servers
// @Accept json
// @Produce json
// @Param request body search.Request true "Search request"
// @Success 200 {object} paging.Page[Server]
// @Router /servers/search [post]
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	var req search.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed search request"})
	}
	page := paging.Request{Page: c.QueryInt("page"), Size: c.QueryInt("size"), Sort: c.Query("sort")}
	result, err := h.service.Search(c.Context(), req, page)
	if err != nil {
		return h.fail(c, err, "server search failed")
	}
	return c.JSON(result)
}

func (h *Handler) fail(c *fiber.Ctx, err error, msg string) error {
	l := logger.WithRayID(h.logger, c)
	l.Error(msg, zap.Error(err))
	return c.Status(apperror.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
}
