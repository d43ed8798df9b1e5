package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/database"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

var _ ports.DiscountRepository = (*DiscountRepository)(nil)

// DiscountRepository implements ports.DiscountRepository against the SQL records store
type DiscountRepository struct {
	db     *database.DB
	logger *logger.Logger
	now    func() time.Time
	opts   options
}

// NewDiscountRepository creates a new discount repository
func NewDiscountRepository(db *database.DB, log *logger.Logger, opts ...Option) *DiscountRepository {
	return &DiscountRepository{
		db:     db,
		logger: log.WithComponent("discount_repository"),
		now:    time.Now,
		opts:   buildOptions(opts),
	}
}

func (r *DiscountRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]entities.Discount, error) {
	var rows []discountRow
	if err := r.db.DB.SelectContext(ctx, &rows, r.db.DB.Rebind(query), args...); err != nil {
		r.opts.degradedRead(r.logger, "discount", op, err)
		return []entities.Discount{}, nil
	}

	discounts := make([]entities.Discount, 0, len(rows))
	for _, row := range rows {
		discounts = append(discounts, discountFromStorage(row))
	}
	return discounts, nil
}

// GetAll returns every discount, soonest-expiring first
func (r *DiscountRepository) GetAll(ctx context.Context) ([]entities.Discount, error) {
	return r.list(ctx, "get_all", `SELECT `+discountColumns+` FROM discounts ORDER BY expiry_date, id`)
}

// GetByID retrieves a discount by ID
func (r *DiscountRepository) GetByID(ctx context.Context, id int) (entities.Discount, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE id = ?`

	var row discountRow
	if err := r.db.DB.GetContext(ctx, &row, r.db.DB.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.Discount{}, entities.ErrDiscountNotFound
		}
		return entities.Discount{}, classify("get discount", err)
	}

	return discountFromStorage(row), nil
}

// GetByCategory returns discounts in category, ignoring case
func (r *DiscountRepository) GetByCategory(ctx context.Context, category string) ([]entities.Discount, error) {
	return r.list(ctx, "get_by_category",
		`SELECT `+discountColumns+` FROM discounts WHERE LOWER(category) = LOWER(?) ORDER BY expiry_date, id`,
		category)
}

// GetActive returns discounts whose expiry date is after today
func (r *DiscountRepository) GetActive(ctx context.Context) ([]entities.Discount, error) {
	today := entities.DateOf(r.now())
	return r.list(ctx, "get_active",
		`SELECT `+discountColumns+` FROM discounts WHERE expiry_date > ? ORDER BY expiry_date, id`,
		dbDate{today})
}
