package memory

import (
	"context"
	"sync"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/ports"
)

var _ ports.ContactRepository = (*ContactRepository)(nil)

// ContactRepository implements ports.ContactRepository over a slice
type ContactRepository struct {
	mu       sync.Mutex
	contacts []entities.Contact
	opts     options

	// lastID is the highest id ever held, deleted records included
	lastID int
}

// NewContactRepository creates a contact store seeded with a copy of seed
func NewContactRepository(seed []entities.Contact, opts ...Option) *ContactRepository {
	contacts := make([]entities.Contact, len(seed))
	copy(contacts, seed)
	r := &ContactRepository{contacts: contacts, opts: buildOptions(opts)}
	for _, c := range contacts {
		r.lastID = max(r.lastID, c.ID)
	}
	return r
}

func (r *ContactRepository) indexOf(id int) int {
	for i := range r.contacts {
		if r.contacts[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *ContactRepository) snapshot(keep func(entities.Contact) bool) []entities.Contact {
	out := []entities.Contact{}
	for _, c := range r.contacts {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// GetAll returns every contact in insertion order
func (r *ContactRepository) GetAll(ctx context.Context) ([]entities.Contact, error) {
	if err := r.opts.latency.wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshot(func(entities.Contact) bool { return true }), nil
}

// GetByID retrieves a contact by ID
func (r *ContactRepository) GetByID(ctx context.Context, id int) (entities.Contact, error) {
	if err := r.opts.latency.wait(ctx); err != nil {
		return entities.Contact{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return entities.Contact{}, entities.ErrContactNotFound
	}
	return r.contacts[i], nil
}

// Create appends a new contact with the next free ID
func (r *ContactRepository) Create(ctx context.Context, draft entities.ContactDraft) (entities.Contact, error) {
	if err := r.opts.latency.wait(ctx); err != nil {
		return entities.Contact{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	contact := entities.NewContact(r.lastID, draft, r.opts.now().UTC())
	r.contacts = append(r.contacts, contact)
	return contact, nil
}

// Update merges patch over the stored contact
func (r *ContactRepository) Update(ctx context.Context, id int, patch entities.ContactPatch) (entities.Contact, error) {
	if err := r.opts.latency.wait(ctx); err != nil {
		return entities.Contact{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return entities.Contact{}, entities.ErrContactNotFound
	}
	r.contacts[i] = patch.Apply(r.contacts[i])
	return r.contacts[i], nil
}

// Delete removes a contact and returns it
func (r *ContactRepository) Delete(ctx context.Context, id int) (entities.Contact, error) {
	if err := r.opts.latency.wait(ctx); err != nil {
		return entities.Contact{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return entities.Contact{}, entities.ErrContactNotFound
	}
	removed := r.contacts[i]
	r.contacts = append(r.contacts[:i], r.contacts[i+1:]...)
	return removed, nil
}

// Search matches query against name, email, role and department
func (r *ContactRepository) Search(ctx context.Context, query string) ([]entities.Contact, error) {
	if err := r.opts.latency.wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshot(func(c entities.Contact) bool { return c.Matches(query) }), nil
}
