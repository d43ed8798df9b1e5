package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

// ContactService handles the team directory
type ContactService struct {
	contactRepo ports.ContactRepository
	observer    ports.OperationObserver
	logger      *logger.Logger
}

// NewContactService creates a new contact service. observer may be nil.
func NewContactService(contactRepo ports.ContactRepository, observer ports.OperationObserver, logger *logger.Logger) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		observer:    observer,
		logger:      logger,
	}
}

func (s *ContactService) observe(op string, err error) {
	if s.observer != nil {
		s.observer.ObserveOperation("contact", op, err)
	}
}

// ListContacts returns every contact, or those matching query when it is not blank
func (s *ContactService) ListContacts(ctx context.Context, query string) ([]entities.Contact, error) {
	var (
		contacts []entities.Contact
		err      error
	)
	if strings.TrimSpace(query) == "" {
		contacts, err = s.contactRepo.GetAll(ctx)
		s.observe("get_all", err)
	} else {
		contacts, err = s.contactRepo.Search(ctx, strings.TrimSpace(query))
		s.observe("search", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// GetContact retrieves a contact by ID
func (s *ContactService) GetContact(ctx context.Context, id int) (entities.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	s.observe("get", err)
	if err != nil {
		return entities.Contact{}, fmt.Errorf("failed to get contact %d: %w", id, err)
	}
	return contact, nil
}

// CreateContact adds a contact from a validated request
func (s *ContactService) CreateContact(ctx context.Context, req ports.CreateContactRequest) (entities.Contact, error) {
	contact, err := s.contactRepo.Create(ctx, entities.ContactDraft{
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Role:       strings.TrimSpace(req.Role),
		Department: req.Department,
	})
	s.observe("create", err)
	if err != nil {
		return entities.Contact{}, fmt.Errorf("failed to create contact: %w", err)
	}

	s.logger.Infow("Contact created successfully", "contact_id", contact.ID, "name", contact.Name)

	return contact, nil
}

// UpdateContact replaces a contact's fields, keeping its ID
func (s *ContactService) UpdateContact(ctx context.Context, id int, req ports.UpdateContactRequest) (entities.Contact, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	phone := strings.TrimSpace(req.Phone)
	role := strings.TrimSpace(req.Role)

	contact, err := s.contactRepo.Update(ctx, id, entities.ContactPatch{
		ID:         req.ID,
		Name:       &name,
		Email:      &email,
		Phone:      &phone,
		Role:       &role,
		Department: &req.Department,
	})
	s.observe("update", err)
	if err != nil {
		return entities.Contact{}, fmt.Errorf("failed to update contact %d: %w", id, err)
	}

	s.logger.Infow("Contact updated successfully", "contact_id", contact.ID)

	return contact, nil
}

// DeleteContact removes a contact and returns the removed record
func (s *ContactService) DeleteContact(ctx context.Context, id int) (entities.Contact, error) {
	contact, err := s.contactRepo.Delete(ctx, id)
	s.observe("delete", err)
	if err != nil {
		return entities.Contact{}, fmt.Errorf("failed to delete contact %d: %w", id, err)
	}

	s.logger.Infow("Contact deleted successfully", "contact_id", id)

	return contact, nil
}
