package ports

import (
	"context"
	"errors"
	"time"

	"github.com/taskflow/core/internal/domain/entities"
)

// TaskRepository defines the interface for task data operations.
// Every method returns copies; callers never hold live stored values.
type TaskRepository interface {
	GetAll(ctx context.Context) ([]entities.Task, error)
	GetByID(ctx context.Context, id int) (entities.Task, error)
	Create(ctx context.Context, draft entities.TaskDraft) (entities.Task, error)
	Update(ctx context.Context, id int, patch entities.TaskPatch) (entities.Task, error)
	Delete(ctx context.Context, id int) (entities.Task, error)
	GetByStatus(ctx context.Context, status entities.TaskStatus) ([]entities.Task, error)
	ToggleStatus(ctx context.Context, id int) (entities.Task, error)
}

// ContactRepository defines the interface for contact data operations
type ContactRepository interface {
	GetAll(ctx context.Context) ([]entities.Contact, error)
	GetByID(ctx context.Context, id int) (entities.Contact, error)
	Create(ctx context.Context, draft entities.ContactDraft) (entities.Contact, error)
	Update(ctx context.Context, id int, patch entities.ContactPatch) (entities.Contact, error)
	Delete(ctx context.Context, id int) (entities.Contact, error)
	Search(ctx context.Context, query string) ([]entities.Contact, error)
}

// DiscountRepository defines the read-only interface for discount data
type DiscountRepository interface {
	GetAll(ctx context.Context) ([]entities.Discount, error)
	GetByID(ctx context.Context, id int) (entities.Discount, error)
	GetByCategory(ctx context.Context, category string) ([]entities.Discount, error)
	GetActive(ctx context.Context) ([]entities.Discount, error)
}

// ErrCacheMiss is returned by CacheRepository.Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
}

// Pinger is implemented by backing services that can report readiness
type Pinger interface {
	Ping(ctx context.Context) error
}
