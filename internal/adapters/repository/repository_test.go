package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/taskflow/core/internal/adapters/repository/fixtures"
	"github.com/taskflow/core/internal/adapters/repository/repotest"
	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/config"
	"github.com/taskflow/core/internal/infrastructure/database"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "records.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.MigrateUp(db))
	return db
}

func seeded(t *testing.T, set *fixtures.Set) *database.DB {
	t.Helper()
	db := newTestDB(t)
	require.NoError(t, NewSeeder(db, logger.NewNop()).Seed(context.Background(), set))
	return db
}

func TestTaskRepository(t *testing.T) {
	repotest.RunTaskRepository(t, func(t *testing.T, seed []entities.Task) ports.TaskRepository {
		return NewTaskRepository(seeded(t, &fixtures.Set{Tasks: seed}), logger.NewNop())
	})
}

func TestContactRepository(t *testing.T) {
	repotest.RunContactRepository(t, func(t *testing.T, seed []entities.Contact) ports.ContactRepository {
		return NewContactRepository(seeded(t, &fixtures.Set{Contacts: seed}), logger.NewNop())
	})
}

func TestDiscountRepository(t *testing.T) {
	repotest.RunDiscountRepository(t, func(t *testing.T, seed []entities.Discount) ports.DiscountRepository {
		return NewDiscountRepository(seeded(t, &fixtures.Set{Discounts: seed}), logger.NewNop())
	})
}

func TestSearchOrdersByMostRecentlyAdded(t *testing.T) {
	repo := NewContactRepository(seeded(t, &fixtures.Set{Contacts: repotest.Contacts()}), logger.NewNop())

	found, err := repo.Search(context.Background(), "example")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, 2, found[0].ID)
	assert.Equal(t, 1, found[1].ID)
}

func TestSearchEscapesWildcards(t *testing.T) {
	repo := NewContactRepository(seeded(t, &fixtures.Set{Contacts: repotest.Contacts()}), logger.NewNop())

	for _, q := range []string{"%", "_", `\`} {
		found, err := repo.Search(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, found, "query %q", q)
	}
}

func TestWriteRejectionsBecomeValidationErrors(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tasks := NewTaskRepository(db, logger.NewNop())
	_, err := tasks.Create(ctx, entities.TaskDraft{Title: "  ", DueDate: entities.NewDate(2025, 1, 1)})
	require.Error(t, err)

	var ve *entities.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.True(t, errors.Is(err, entities.ErrValidation))
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "title", ve.Fields[0].Field)

	created, err := tasks.Create(ctx, entities.TaskDraft{Title: "ok", DueDate: entities.NewDate(2025, 1, 1)})
	require.NoError(t, err)
	bad := entities.Priority("urgent")
	_, err = tasks.Update(ctx, created.ID, entities.TaskPatch{Priority: &bad})
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, "priority", ve.Fields[0].Field)

	stored, err := tasks.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.PriorityMedium, stored.Priority, "rejected update leaves the row unchanged")

	contacts := NewContactRepository(db, logger.NewNop())
	_, err = contacts.Create(ctx, entities.ContactDraft{Name: "Nobody", Email: "not-an-email"})
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, "email", ve.Fields[0].Field)
}

type degradedReads struct {
	ops []string
}

func (d *degradedReads) ObserveDegradedRead(entity, operation string, err error) {
	d.ops = append(d.ops, entity+"."+operation)
}

func TestListReadsDegradeWhenStoreIsDown(t *testing.T) {
	db := newTestDB(t)
	core, logs := observer.New(zap.WarnLevel)
	log := logger.FromZap(zap.New(core))
	reads := &degradedReads{}

	tasks := NewTaskRepository(db, log, WithDegradedReadObserver(reads))
	contacts := NewContactRepository(db, log, WithDegradedReadObserver(reads))
	discounts := NewDiscountRepository(db, log, WithDegradedReadObserver(reads))
	require.NoError(t, db.Close())

	ctx := context.Background()

	all, err := tasks.GetAll(ctx)
	assert.NoError(t, err)
	assert.Empty(t, all)

	byStatus, err := tasks.GetByStatus(ctx, entities.TaskStatusActive)
	assert.NoError(t, err)
	assert.Empty(t, byStatus)

	found, err := contacts.Search(ctx, "ada")
	assert.NoError(t, err)
	assert.Empty(t, found)

	active, err := discounts.GetActive(ctx)
	assert.NoError(t, err)
	assert.Empty(t, active)

	assert.Equal(t, 4, logs.Len())
	assert.Equal(t, []string{"task.get_all", "task.get_by_status", "contact.search", "discount.get_active"}, reads.ops)

	// Point reads and writes propagate.
	_, err = tasks.GetByID(ctx, 1)
	assert.True(t, errors.Is(err, entities.ErrTransport), "got %v", err)

	_, err = tasks.Create(ctx, entities.TaskDraft{Title: "x", DueDate: entities.NewDate(2025, 1, 1)})
	assert.True(t, errors.Is(err, entities.ErrTransport), "got %v", err)

	_, err = contacts.Delete(ctx, 1)
	assert.True(t, errors.Is(err, entities.ErrTransport), "got %v", err)
}

func TestCreateUsesRepositoryClock(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t), logger.NewNop())
	fixed := time.Date(2025, 2, 3, 4, 5, 6, 789000000, time.UTC)
	repo.now = func() time.Time { return fixed }

	task, err := repo.Create(context.Background(), entities.TaskDraft{Title: "clock", DueDate: entities.NewDate(2025, 3, 1)})
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, stored.CreatedAt.Equal(fixed), "got %s", stored.CreatedAt)
	assert.Nil(t, stored.Tags)
}

func TestSeedDefaultFixtures(t *testing.T) {
	set, err := fixtures.Default()
	require.NoError(t, err)
	db := seeded(t, set)
	ctx := context.Background()

	tasks, err := NewTaskRepository(db, logger.NewNop()).GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, len(set.Tasks))

	discounts, err := NewDiscountRepository(db, logger.NewNop()).GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, discounts, len(set.Discounts))
	for i := 1; i < len(discounts); i++ {
		assert.False(t, discounts[i].ExpiryDate.Before(discounts[i-1].ExpiryDate.Time))
	}

	// Seeding again replaces rather than appends.
	require.NoError(t, NewSeeder(db, logger.NewNop()).Seed(ctx, &fixtures.Set{Tasks: set.Tasks[:1]}))
	tasks, err = NewTaskRepository(db, logger.NewNop()).GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}
