package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/core/internal/application/services"
	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

// ContactHandler handles the team directory
type ContactHandler struct {
	contactService *services.ContactService
	logger         *logger.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *services.ContactService, logger *logger.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// ListContacts godoc
// @Summary List or search contacts
// @Description A non-blank q matches name, email, role or department
// @Tags contacts
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {object} ListResponse[entities.Contact]
// @Router /contacts [get]
func (h *ContactHandler) ListContacts(c echo.Context) error {
	query := c.QueryParam("q")

	contacts, err := h.contactService.ListContacts(c.Request().Context(), query)
	if err != nil {
		return failure(h.logger, err, "Failed to load contacts")
	}

	resp := newListResponse(contacts)
	if strings.TrimSpace(query) != "" {
		notice := ports.ContactSearchNotice(resp.Total)
		resp.Notice = &notice
	}

	return c.JSON(http.StatusOK, resp)
}

// GetContact godoc
// @Summary Get contact by ID
// @Tags contacts
// @Produce json
// @Param id path int true "Contact ID"
// @Success 200 {object} entities.Contact
// @Failure 404 {object} ErrorResponse
// @Router /contacts/{id} [get]
func (h *ContactHandler) GetContact(c echo.Context) error {
	id, err := parseID(c, entities.ErrContactNotFound)
	if err != nil {
		return failure(h.logger, err, "Failed to load contact", "contact_id", c.Param("id"))
	}

	contact, err := h.contactService.GetContact(c.Request().Context(), id)
	if err != nil {
		return failure(h.logger, err, "Failed to load contact", "contact_id", id)
	}

	return c.JSON(http.StatusOK, contact)
}

// CreateContact godoc
// @Summary Add a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Param request body ports.CreateContactRequest true "Contact data"
// @Success 201 {object} MutationResponse[entities.Contact]
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /contacts [post]
func (h *ContactHandler) CreateContact(c echo.Context) error {
	var req ports.CreateContactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	contact, err := h.contactService.CreateContact(c.Request().Context(), req)
	if err != nil {
		return failure(h.logger, err, "Failed to save contact")
	}

	return c.JSON(http.StatusCreated, MutationResponse[entities.Contact]{
		Data:   contact,
		Notice: ports.NewNotice(ports.NoticeSuccess, "Contact created successfully!"),
	})
}

// UpdateContact godoc
// @Summary Update a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Param id path int true "Contact ID"
// @Param request body ports.UpdateContactRequest true "Contact data"
// @Success 200 {object} MutationResponse[entities.Contact]
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /contacts/{id} [put]
func (h *ContactHandler) UpdateContact(c echo.Context) error {
	id, err := parseID(c, entities.ErrContactNotFound)
	if err != nil {
		return failure(h.logger, err, "Failed to save contact", "contact_id", c.Param("id"))
	}

	var req ports.UpdateContactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	contact, err := h.contactService.UpdateContact(c.Request().Context(), id, req)
	if err != nil {
		return failure(h.logger, err, "Failed to save contact", "contact_id", id)
	}

	return c.JSON(http.StatusOK, MutationResponse[entities.Contact]{
		Data:   contact,
		Notice: ports.NewNotice(ports.NoticeSuccess, "Contact updated successfully!"),
	})
}

// DeleteContact godoc
// @Summary Delete a contact
// @Tags contacts
// @Produce json
// @Param id path int true "Contact ID"
// @Success 200 {object} MutationResponse[entities.Contact]
// @Failure 404 {object} ErrorResponse
// @Router /contacts/{id} [delete]
func (h *ContactHandler) DeleteContact(c echo.Context) error {
	id, err := parseID(c, entities.ErrContactNotFound)
	if err != nil {
		return failure(h.logger, err, "Failed to delete contact", "contact_id", c.Param("id"))
	}

	contact, err := h.contactService.DeleteContact(c.Request().Context(), id)
	if err != nil {
		return failure(h.logger, err, "Failed to delete contact", "contact_id", id)
	}

	return c.JSON(http.StatusOK, MutationResponse[entities.Contact]{
		Data:   contact,
		Notice: ports.NewNotice(ports.NoticeSuccess, "Contact deleted successfully"),
	})
}
