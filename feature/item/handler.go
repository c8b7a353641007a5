package item

import (
	"goldwatch/core/apperror"
	"goldwatch/core/logger"
	"goldwatch/core/paging"
	"goldwatch/core/search"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the item catalog.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the item routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/items")
	group.Get("/", h.HandleList)
	group.Post("/search", h.HandleSearch)
	group.Get("/:identifier", h.HandleGet)
}

// HandleList returns one page of the item catalog.
// @Summary List items
// @Tags items
// @Produce json
// @Success 200 {object} paging.Page[Item]
// @Router /items [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	page := paging.Request{Page: c.QueryInt("page"), Size: c.QueryInt("size"), Sort: c.Query("sort")}
	result, err := h.service.List(c.Context(), page)
	if err != nil {
		return h.fail(c, err, "item list failed")
	}
	return c.JSON(result)
}

// HandleGet returns one item by id or name.
// @Summary Get item
// @Tags items
// @Produce json
// @Param identifier path string true "Item id or name"
// @Success 200 {object} Item
// @Failure 404 {object} map[string]string
// @Router /items/{identifier} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	it, err := h.service.Get(c.Context(), c.Params("identifier"))
	if err != nil {
		return h.fail(c, err, "item lookup failed")
	}
	return c.JSON(it)
}

// HandleSearch runs a declarative search over the item catalog.
// @Summary Search items
// @Tags items
// @Accept json
// @Produce json
// @Param request body search.Request true "Search request"
// @Success 200 {object} paging.Page[Item]
// @Router /items/search [post]
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	var req search.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed search request"})
	}
	page := paging.Request{Page: c.QueryInt("page"), Size: c.QueryInt("size"), Sort: c.Query("sort")}
	result, err := h.service.Search(c.Context(), req, page)
	if err != nil {
		return h.fail(c, err, "item search failed")
	}
	return c.JSON(result)
}

func (h *Handler) fail(c *fiber.Ctx, err error, msg string) error {
	l := logger.WithRayID(h.logger, c)
	l.Error(msg, zap.Error(err))
	return c.Status(apperror.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
}
