package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/taskflow/core/internal/adapters/repository/fixtures"
	"github.com/taskflow/core/internal/infrastructure/database"
	"github.com/taskflow/core/internal/infrastructure/logger"
)

// Seeder replaces the SQL records store contents with a fixture set
type Seeder struct {
	db     *database.DB
	logger *logger.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(db *database.DB, log *logger.Logger) *Seeder {
	return &Seeder{db: db, logger: log.WithComponent("seeder")}
}

// Seed deletes every task, contact and discount and inserts set in one
// transaction. Identifiers are kept as given.
func (s *Seeder) Seed(ctx context.Context, set *fixtures.Set) error {
	err := s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{"tasks", "contacts", "discounts"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		for _, t := range set.Tasks {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO tasks (`+taskColumns+`)
				VALUES (:id, :title, :description, :due_date, :priority, :status, :tags, :created_at)`,
				taskToStorage(t)); err != nil {
				return fmt.Errorf("insert task %d: %w", t.ID, err)
			}
		}

		for _, c := range set.Contacts {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO contacts (`+contactColumns+`)
				VALUES (:id, :name, :email, :phone, :role, :department, :added_at)`,
				contactToStorage(c)); err != nil {
				return fmt.Errorf("insert contact %d: %w", c.ID, err)
			}
		}

		for _, d := range set.Discounts {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO discounts (`+discountColumns+`)
				VALUES (:id, :title, :description, :code, :discount, :expiry_date, :category, :url)`,
				discountToStorage(d)); err != nil {
				return fmt.Errorf("insert discount %d: %w", d.ID, err)
			}
		}

		if s.db.IsPostgres() {
			return resetSequences(ctx, tx)
		}
		return nil
	})
	if err != nil {
		return classify("seed", err)
	}

	s.logger.Infow("Records store seeded",
		"tasks", len(set.Tasks),
		"contacts", len(set.Contacts),
		"discounts", len(set.Discounts),
	)
	return nil
}

// resetSequences moves each serial past the highest seeded ID
func resetSequences(ctx context.Context, tx *sqlx.Tx) error {
	for _, table := range []string{"tasks", "contacts", "discounts"} {
		query := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)`,
			table)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}
	return nil
}
