package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/core/internal/application/services"
	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/logger"
)

// DiscountResponse is a discount with its derived expired flag
type DiscountResponse struct {
	entities.Discount
	Expired bool `json:"expired"`
}

func newDiscountResponse(d entities.Discount, now time.Time) DiscountResponse {
	return DiscountResponse{Discount: d, Expired: d.IsExpired(now)}
}

// DiscountHandler serves partner offers
type DiscountHandler struct {
	discountService *services.DiscountService
	logger          *logger.Logger
}

// NewDiscountHandler creates a new discount handler
func NewDiscountHandler(discountService *services.DiscountService, logger *logger.Logger) *DiscountHandler {
	return &DiscountHandler{
		discountService: discountService,
		logger:          logger,
	}
}

// ListDiscounts godoc
// @Summary List discounts
// @Description One view: all, active, or a category name, soonest-expiring first
// @Tags discounts
// @Produce json
// @Param filter query string false "all, active or a category"
// @Success 200 {object} ListResponse[DiscountResponse]
// @Router /discounts [get]
func (h *DiscountHandler) ListDiscounts(c echo.Context) error {
	filter := c.QueryParam("filter")
	if filter == "" {
		filter = c.QueryParam("category")
	}

	discounts, err := h.discountService.ListDiscounts(c.Request().Context(), filter)
	if err != nil {
		return failure(h.logger, err, "Failed to load discounts", "filter", filter)
	}

	now := h.discountService.Now()
	out := make([]DiscountResponse, 0, len(discounts))
	for _, d := range discounts {
		out = append(out, newDiscountResponse(d, now))
	}

	return c.JSON(http.StatusOK, newListResponse(out))
}

// Categories godoc
// @Summary Discount category tabs
// @Description Total and active counts plus each category with its count
// @Tags discounts
// @Produce json
// @Success 200 {object} ports.DiscountSummary
// @Router /discounts/categories [get]
func (h *DiscountHandler) Categories(c echo.Context) error {
	summary, err := h.discountService.Summary(c.Request().Context())
	if err != nil {
		return failure(h.logger, err, "Failed to load discounts")
	}
	return c.JSON(http.StatusOK, summary)
}

// GetDiscount godoc
// @Summary Get discount by ID
// @Tags discounts
// @Produce json
// @Param id path int true "Discount ID"
// @Success 200 {object} DiscountResponse
// @Failure 404 {object} ErrorResponse
// @Router /discounts/{id} [get]
func (h *DiscountHandler) GetDiscount(c echo.Context) error {
	id, err := parseID(c, entities.ErrDiscountNotFound)
	if err != nil {
		return failure(h.logger, err, "Failed to load discount", "discount_id", c.Param("id"))
	}

	discount, err := h.discountService.GetDiscount(c.Request().Context(), id)
	if err != nil {
		return failure(h.logger, err, "Failed to load discount", "discount_id", id)
	}

	return c.JSON(http.StatusOK, newDiscountResponse(discount, h.discountService.Now()))
}
