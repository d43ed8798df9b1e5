// Package cached decorates read-mostly repositories with a cache.
package cached

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

const (
	discountKeyPrefix = "taskflow:discounts:"
	discountAllKey    = discountKeyPrefix + "all"
)

var _ ports.DiscountRepository = (*DiscountRepository)(nil)

// DiscountRepository serves discount reads from a cache, falling through to
// the wrapped repository on a miss or a cache fault. Category and active
// views are derived from the cached full list.
type DiscountRepository struct {
	next   ports.DiscountRepository
	cache  ports.CacheRepository
	ttl    time.Duration
	logger *logger.Logger
	now    func() time.Time
}

// NewDiscountRepository wraps next with cache
func NewDiscountRepository(next ports.DiscountRepository, cache ports.CacheRepository, ttl time.Duration, log *logger.Logger) *DiscountRepository {
	return &DiscountRepository{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithComponent("discount_cache"),
		now:    time.Now,
	}
}

func discountKey(id int) string {
	return fmt.Sprintf("%sid:%d", discountKeyPrefix, id)
}

func (r *DiscountRepository) lookup(ctx context.Context, key string, dest interface{}) bool {
	err := r.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, ports.ErrCacheMiss) {
		r.logger.Warnw("Cache read failed", "key", key, "error", err)
	}
	return false
}

func (r *DiscountRepository) store(ctx context.Context, key string, value interface{}) {
	if err := r.cache.Set(ctx, key, value, r.ttl); err != nil {
		r.logger.Warnw("Cache write failed", "key", key, "error", err)
	}
}

// GetAll returns every discount, soonest-expiring first
func (r *DiscountRepository) GetAll(ctx context.Context) ([]entities.Discount, error) {
	var discounts []entities.Discount
	if r.lookup(ctx, discountAllKey, &discounts) {
		return discounts, nil
	}

	discounts, err := r.next.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	// An empty list may be a degraded read; never pin it in the cache.
	if len(discounts) > 0 {
		r.store(ctx, discountAllKey, discounts)
	}
	return discounts, nil
}

// GetByID retrieves a discount by ID
func (r *DiscountRepository) GetByID(ctx context.Context, id int) (entities.Discount, error) {
	var discount entities.Discount
	if r.lookup(ctx, discountKey(id), &discount) {
		return discount, nil
	}

	discount, err := r.next.GetByID(ctx, id)
	if err != nil {
		return entities.Discount{}, err
	}
	r.store(ctx, discountKey(id), discount)
	return discount, nil
}

// GetByCategory filters the cached list by category, ignoring case
func (r *DiscountRepository) GetByCategory(ctx context.Context, category string) ([]entities.Discount, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []entities.Discount{}
	for _, d := range all {
		if d.InCategory(category) {
			out = append(out, d)
		}
	}
	return out, nil
}

// GetActive filters the cached list to offers that have not expired
func (r *DiscountRepository) GetActive(ctx context.Context) ([]entities.Discount, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	now := r.now()
	out := []entities.Discount{}
	for _, d := range all {
		if !d.IsExpired(now) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Flush drops every cached discount
func (r *DiscountRepository) Flush(ctx context.Context) error {
	return FlushDiscounts(ctx, r.cache)
}

// FlushDiscounts drops every cached discount from cache
func FlushDiscounts(ctx context.Context, cache ports.CacheRepository) error {
	if err := cache.DeletePattern(ctx, discountKeyPrefix+"*"); err != nil {
		return fmt.Errorf("flush discount cache: %w", err)
	}
	return nil
}
