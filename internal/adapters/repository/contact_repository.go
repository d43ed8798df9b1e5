package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/database"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

var _ ports.ContactRepository = (*ContactRepository)(nil)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContactRepository implements ports.ContactRepository against the SQL records store
type ContactRepository struct {
	db     *database.DB
	logger *logger.Logger
	now    func() time.Time
	opts   options
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *database.DB, log *logger.Logger, opts ...Option) *ContactRepository {
	return &ContactRepository{
		db:     db,
		logger: log.WithComponent("contact_repository"),
		now:    time.Now,
		opts:   buildOptions(opts),
	}
}

func (r *ContactRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]entities.Contact, error) {
	var rows []contactRow
	if err := r.db.DB.SelectContext(ctx, &rows, r.db.DB.Rebind(query), args...); err != nil {
		r.opts.degradedRead(r.logger, "contact", op, err)
		return []entities.Contact{}, nil
	}

	contacts := make([]entities.Contact, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, contactFromStorage(row))
	}
	return contacts, nil
}

// GetAll returns every contact ordered by ID
func (r *ContactRepository) GetAll(ctx context.Context) ([]entities.Contact, error) {
	return r.list(ctx, "get_all", `SELECT `+contactColumns+` FROM contacts ORDER BY id`)
}

// GetByID retrieves a contact by ID
func (r *ContactRepository) GetByID(ctx context.Context, id int) (entities.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ?`

	var row contactRow
	if err := r.db.DB.GetContext(ctx, &row, r.db.DB.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.Contact{}, entities.ErrContactNotFound
		}
		return entities.Contact{}, classify("get contact", err)
	}

	return contactFromStorage(row), nil
}

// Create inserts a new contact and returns it with its assigned ID
func (r *ContactRepository) Create(ctx context.Context, draft entities.ContactDraft) (entities.Contact, error) {
	contact := entities.NewContact(0, draft, r.now().UTC())

	query := `
		INSERT INTO contacts (name, email, phone, role, department, added_at)
		VALUES (:name, :email, :phone, :role, :department, :added_at)
		RETURNING id`

	stmt, err := r.db.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return entities.Contact{}, classify("create contact", err)
	}
	defer stmt.Close()

	if err := stmt.GetContext(ctx, &contact.ID, contactToStorage(contact)); err != nil {
		return entities.Contact{}, classify("create contact", err)
	}

	return contact, nil
}

// Update merges patch over the stored contact inside a transaction
func (r *ContactRepository) Update(ctx context.Context, id int, patch entities.ContactPatch) (entities.Contact, error) {
	var updated entities.Contact

	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var row contactRow
		query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ?`
		if err := tx.GetContext(ctx, &row, tx.Rebind(query), id); err != nil {
			return err
		}

		updated = patch.Apply(contactFromStorage(row))

		_, err := tx.NamedExecContext(ctx, `
			UPDATE contacts
			SET name = :name, email = :email, phone = :phone, role = :role, department = :department
			WHERE id = :id`, contactToStorage(updated))
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.Contact{}, entities.ErrContactNotFound
		}
		return entities.Contact{}, classify("update contact", err)
	}

	return updated, nil
}

// Delete removes a contact and returns the removed record
func (r *ContactRepository) Delete(ctx context.Context, id int) (entities.Contact, error) {
	query := `DELETE FROM contacts WHERE id = ? RETURNING ` + contactColumns

	var row contactRow
	if err := r.db.DB.GetContext(ctx, &row, r.db.DB.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.Contact{}, entities.ErrContactNotFound
		}
		return entities.Contact{}, classify("delete contact", err)
	}

	return contactFromStorage(row), nil
}

// Search returns contacts whose name, email, role or department contain
// query, ignoring case, most recently added first
func (r *ContactRepository) Search(ctx context.Context, query string) ([]entities.Contact, error) {
	if strings.TrimSpace(query) == "" {
		return r.GetAll(ctx)
	}

	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	return r.list(ctx, "search", `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE LOWER(name) LIKE ? ESCAPE '\'
			OR LOWER(email) LIKE ? ESCAPE '\'
			OR LOWER(role) LIKE ? ESCAPE '\'
			OR LOWER(department) LIKE ? ESCAPE '\'
		ORDER BY added_at DESC, id DESC`,
		pattern, pattern, pattern, pattern)
}
