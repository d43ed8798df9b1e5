package memory

import (
	"context"
	"sync"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/ports"
)

var _ ports.DiscountRepository = (*DiscountRepository)(nil)

// DiscountRepository implements ports.DiscountRepository over a slice kept
// in expiry order
type DiscountRepository struct {
	mu        sync.RWMutex
	discounts []entities.Discount
	opts      options
}

// NewDiscountRepository creates a discount store seeded with a copy of seed
func NewDiscountRepository(seed []entities.Discount, opts ...Option) *DiscountRepository {
	discounts := make([]entities.Discount, len(seed))
	copy(discounts, seed)
	entities.SortByExpiry(discounts)
	return &DiscountRepository{discounts: discounts, opts: buildOptions(opts)}
}

func (r *DiscountRepository) filter(ctx context.Context, keep func(entities.Discount) bool) ([]entities.Discount, error) {
	if err := r.opts.latency.wait(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []entities.Discount{}
	for _, d := range r.discounts {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

// GetAll returns every discount, soonest-expiring first
func (r *DiscountRepository) GetAll(ctx context.Context) ([]entities.Discount, error) {
	return r.filter(ctx, func(entities.Discount) bool { return true })
}

// GetByID retrieves a discount by ID
func (r *DiscountRepository) GetByID(ctx context.Context, id int) (entities.Discount, error) {
	if err := r.opts.latency.wait(ctx); err != nil {
		return entities.Discount{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.discounts {
		if d.ID == id {
			return d, nil
		}
	}
	return entities.Discount{}, entities.ErrDiscountNotFound
}

// GetByCategory returns discounts whose category matches, ignoring case
func (r *DiscountRepository) GetByCategory(ctx context.Context, category string) ([]entities.Discount, error) {
	return r.filter(ctx, func(d entities.Discount) bool { return d.InCategory(category) })
}

// GetActive returns discounts expiring strictly after now
func (r *DiscountRepository) GetActive(ctx context.Context) ([]entities.Discount, error) {
	now := r.opts.now()
	return r.filter(ctx, func(d entities.Discount) bool { return !d.IsExpired(now) })
}
