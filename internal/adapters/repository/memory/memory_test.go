package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/core/internal/adapters/repository/repotest"
	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/ports"
)

func TestTaskRepository(t *testing.T) {
	repotest.RunTaskRepository(t, func(t *testing.T, seed []entities.Task) ports.TaskRepository {
		return NewTaskRepository(seed)
	})
}

func TestContactRepository(t *testing.T) {
	repotest.RunContactRepository(t, func(t *testing.T, seed []entities.Contact) ports.ContactRepository {
		return NewContactRepository(seed)
	})
}

func TestDiscountRepository(t *testing.T) {
	repotest.RunDiscountRepository(t, func(t *testing.T, seed []entities.Discount) ports.DiscountRepository {
		return NewDiscountRepository(seed)
	})
}

func TestSeedIsCopied(t *testing.T) {
	seed := repotest.Tasks()
	repo := NewTaskRepository(seed)

	seed[0].Title = "changed"
	seed[0].Tags[0] = "changed"

	task, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, []string{"finance"}, task.Tags)
}

func TestStoresAreIndependent(t *testing.T) {
	ctx := context.Background()
	a := NewContactRepository(repotest.Contacts())
	b := NewContactRepository(repotest.Contacts())

	_, err := a.Delete(ctx, 1)
	require.NoError(t, err)

	_, err = b.GetByID(ctx, 1)
	assert.NoError(t, err)
}

func TestInsertionOrderIsKept(t *testing.T) {
	ctx := context.Background()
	seed := []entities.Task{
		{ID: 7, Title: "seven", Status: entities.TaskStatusActive},
		{ID: 3, Title: "three", Status: entities.TaskStatusActive},
	}
	repo := NewTaskRepository(seed)
	created, err := repo.Create(ctx, entities.TaskDraft{Title: "new"})
	require.NoError(t, err)
	assert.Equal(t, 8, created.ID)
	assert.Equal(t, entities.PriorityMedium, created.Priority)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "seven", all[0].Title)
	assert.Equal(t, "three", all[1].Title)
	assert.Equal(t, "new", all[2].Title)
}

func TestClockOption(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return fixed }

	contacts := NewContactRepository(nil, WithClock(clock))
	c, err := contacts.Create(context.Background(), entities.ContactDraft{Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, fixed, c.AddedAt)

	// An offer expiring exactly now is no longer active.
	discounts := NewDiscountRepository(repotest.Discounts(), WithClock(clock))
	active, err := discounts.GetActive(context.Background())
	require.NoError(t, err)
	for _, d := range active {
		assert.NotEqual(t, 1, d.ID)
	}
}

func TestLatencyHonorsContext(t *testing.T) {
	repo := NewTaskRepository(repotest.Tasks(), WithLatency(Latency{Min: time.Second, Max: time.Second}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := repo.Create(ctx, entities.TaskDraft{Title: "late"})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	all, err := NewTaskRepository(nil).GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLatencyRange(t *testing.T) {
	l := Latency{Min: 5 * time.Millisecond, Max: 15 * time.Millisecond}
	start := time.Now()
	require.NoError(t, l.wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)

	assert.NoError(t, Latency{}.wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Latency{}.wait(ctx), context.Canceled)
}

func TestConcurrentCreatesGetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(nil)

	const n = 50
	ids := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task, err := repo.Create(ctx, entities.TaskDraft{Title: "t"})
			if err == nil {
				ids <- task.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestDeletedNewestIDIsRetired(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(nil)
	draft := entities.TaskDraft{Title: "t", DueDate: entities.NewDate(2025, 1, 1), Priority: entities.PriorityMedium}

	a, err := repo.Create(ctx, draft)
	require.NoError(t, err)
	b, err := repo.Create(ctx, draft)
	require.NoError(t, err)
	_, err = repo.Delete(ctx, b.ID)
	require.NoError(t, err)

	c, err := repo.Create(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, []int{a.ID, b.ID, c.ID})
}
