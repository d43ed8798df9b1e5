package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

// DiscountService handles partner offers
type DiscountService struct {
	discountRepo ports.DiscountRepository
	observer     ports.OperationObserver
	logger       *logger.Logger
	now          func() time.Time
}

// NewDiscountService creates a new discount service. observer may be nil.
func NewDiscountService(discountRepo ports.DiscountRepository, observer ports.OperationObserver, logger *logger.Logger) *DiscountService {
	return &DiscountService{
		discountRepo: discountRepo,
		observer:     observer,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *DiscountService) observe(op string, err error) {
	if s.observer != nil {
		s.observer.ObserveOperation("discount", op, err)
	}
}

// Now returns the service clock, used for the expired flag
func (s *DiscountService) Now() time.Time {
	return s.now()
}

// ListDiscounts returns one discount view: all, active, or a category name.
// Results are soonest-expiring first.
func (s *DiscountService) ListDiscounts(ctx context.Context, filter string) ([]entities.Discount, error) {
	var (
		discounts []entities.Discount
		err       error
	)

	switch f := strings.TrimSpace(filter); strings.ToLower(f) {
	case "", ports.DiscountFilterAll:
		discounts, err = s.discountRepo.GetAll(ctx)
		s.observe("get_all", err)
	case ports.DiscountFilterActive:
		discounts, err = s.discountRepo.GetActive(ctx)
		s.observe("get_active", err)
	default:
		discounts, err = s.discountRepo.GetByCategory(ctx, f)
		s.observe("get_by_category", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list discounts: %w", err)
	}

	entities.SortByExpiry(discounts)
	return discounts, nil
}

// GetDiscount retrieves a discount by ID
func (s *DiscountService) GetDiscount(ctx context.Context, id int) (entities.Discount, error) {
	discount, err := s.discountRepo.GetByID(ctx, id)
	s.observe("get", err)
	if err != nil {
		return entities.Discount{}, fmt.Errorf("failed to get discount %d: %w", id, err)
	}
	return discount, nil
}

// Summary counts all and active discounts and lists categories in the
// order they first appear, soonest-expiring first.
func (s *DiscountService) Summary(ctx context.Context) (ports.DiscountSummary, error) {
	discounts, err := s.discountRepo.GetAll(ctx)
	s.observe("get_all", err)
	if err != nil {
		return ports.DiscountSummary{}, fmt.Errorf("failed to summarise discounts: %w", err)
	}
	entities.SortByExpiry(discounts)

	now := s.now()
	summary := ports.DiscountSummary{Total: len(discounts), Categories: []ports.CategorySummary{}}
	index := map[string]int{}
	for _, d := range discounts {
		if !d.IsExpired(now) {
			summary.Active++
		}
		key := strings.ToLower(d.Category)
		i, ok := index[key]
		if !ok {
			i = len(summary.Categories)
			index[key] = i
			summary.Categories = append(summary.Categories, ports.CategorySummary{Name: d.Category})
		}
		summary.Categories[i].Count++
	}
	return summary, nil
}
