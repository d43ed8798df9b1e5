package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

// IdentityContextKey is where the identity middleware stores the caller
const IdentityContextKey = "identity"

// IdentityHandler serves the signed-in user
type IdentityHandler struct {
	logger *logger.Logger
}

// NewIdentityHandler creates a new identity handler
func NewIdentityHandler(logger *logger.Logger) *IdentityHandler {
	return &IdentityHandler{logger: logger}
}

// Me godoc
// @Summary Current identity
// @Description Returns the identity carried by the bearer token
// @Tags identity
// @Produce json
// @Success 200 {object} ports.Identity
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /me [get]
func (h *IdentityHandler) Me(c echo.Context) error {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, ErrorResponse{Message: "Not signed in"})
	}
	return c.JSON(http.StatusOK, identity)
}

// IdentityFromContext returns the caller set by the identity middleware
func IdentityFromContext(c echo.Context) (ports.Identity, bool) {
	identity, ok := c.Get(IdentityContextKey).(ports.Identity)
	return identity, ok
}

// Utility functions and helper types

// parseID coerces the :id path segment. Text that is not an integer names
// no record, so it resolves to notFound rather than a bad request.
func parseID(c echo.Context, notFound error) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return 0, notFound
	}
	return id, nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Message: "Invalid request format"})
	}

	if err := c.Validate(req); err != nil {
		var verr *entities.ValidationError
		if errors.As(err, &verr) {
			return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{
				Message: "Please fix the errors before submitting",
				Fields:  verr.Fields,
			})
		}
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	}
	return nil
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, entities.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, entities.ErrContactNotFound):
		return "Contact not found"
	case errors.Is(err, entities.ErrDiscountNotFound):
		return "Discount not found"
	}
	return "Not found"
}

// failure logs a service error and maps it onto a status code. Field-level
// rejections from the records store come back as 422; boundary validation
// never reaches here.
func failure(log *logger.Logger, err error, message string, keysAndValues ...interface{}) error {
	fields := append([]interface{}{"error", err}, keysAndValues...)

	var verr *entities.ValidationError
	switch {
	case errors.Is(err, entities.ErrNotFound):
		log.Debugw(message, fields...)
		return echo.NewHTTPError(http.StatusNotFound, ErrorResponse{Message: notFoundMessage(err)})
	case errors.As(err, &verr):
		log.Warnw(message, fields...)
		return echo.NewHTTPError(http.StatusUnprocessableEntity, ErrorResponse{Message: message, Fields: verr.Fields})
	case errors.Is(err, entities.ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		log.Errorw(message, fields...)
		return echo.NewHTTPError(http.StatusServiceUnavailable, ErrorResponse{Message: message})
	}

	log.Errorw(message, fields...)
	return echo.NewHTTPError(http.StatusInternalServerError, ErrorResponse{Message: message}).SetInternal(err)
}

// Request/Response types

type ErrorResponse struct {
	Message string                `json:"message"`
	Fields  []entities.FieldError `json:"fields,omitempty"`
}

// ListResponse wraps a collection with its size and an optional notice
type ListResponse[T any] struct {
	Data   []T           `json:"data"`
	Total  int           `json:"total"`
	Notice *ports.Notice `json:"notice,omitempty"`
}

// MutationResponse carries the affected record and the notice to show
type MutationResponse[T any] struct {
	Data   T            `json:"data"`
	Notice ports.Notice `json:"notice"`
}

func newListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Data: items, Total: len(items)}
}
