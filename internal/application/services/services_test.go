package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/core/internal/adapters/repository/memory"
	"github.com/taskflow/core/internal/adapters/repository/repotest"
	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

type observation struct {
	entity    string
	operation string
	err       error
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (o *recordingObserver) ObserveOperation(entity, operation string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{entity, operation, err})
}

func (o *recordingObserver) last() observation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.seen[len(o.seen)-1]
}

var fixedNow = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

func newTaskService(t *testing.T) (*TaskService, *recordingObserver) {
	t.Helper()
	obs := &recordingObserver{}
	svc := NewTaskService(memory.NewTaskRepository(repotest.Tasks()), obs, logger.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, obs
}

func taskIDs(tasks []entities.Task) []int {
	ids := make([]int, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestListTasksViews(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter ports.TaskListFilter
		want   []int
	}{
		{"default view sorts by priority", ports.TaskListFilter{}, []int{1, 5, 2}},
		{"all", ports.TaskListFilter{View: ports.TaskViewAll}, []int{1, 5, 2}},
		{"active", ports.TaskListFilter{View: ports.TaskViewActive}, []int{1, 5}},
		{"completed", ports.TaskListFilter{View: ports.TaskViewCompleted}, []int{2}},
		{"search title", ports.TaskListFilter{Search: "REPORT"}, []int{1}},
		{"search description", ports.TaskListFilter{Search: "backend"}, []int{5}},
		{"search within view", ports.TaskListFilter{View: ports.TaskViewCompleted, Search: "report"}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := svc.ListTasks(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, taskIDs(tasks))
		})
	}
}

func TestListTasksRejectsUnknownView(t *testing.T) {
	svc, _ := newTaskService(t)

	_, err := svc.ListTasks(context.Background(), ports.TaskListFilter{View: "archived"})
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestTaskStats(t *testing.T) {
	svc, _ := newTaskService(t)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	// Task 5 is due 2024-03-15 and still active.
	assert.Equal(t, ports.TaskStats{All: 3, Active: 2, Completed: 1, Overdue: 1}, stats)
}

func TestCreateTaskDefaultsPriority(t *testing.T) {
	svc, obs := newTaskService(t)

	task, err := svc.CreateTask(context.Background(), ports.CreateTaskRequest{
		Title:   "  Plan offsite  ",
		DueDate: "2024-06-01",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, task.ID)
	assert.Equal(t, "Plan offsite", task.Title)
	assert.Equal(t, entities.PriorityMedium, task.Priority)
	assert.Equal(t, entities.TaskStatusActive, task.Status)
	assert.Equal(t, entities.NewDate(2024, 6, 1), task.DueDate)
	assert.Equal(t, observation{"task", "create", nil}, obs.last())
}

func TestCreateTaskRejectsBadDate(t *testing.T) {
	svc, _ := newTaskService(t)

	_, err := svc.CreateTask(context.Background(), ports.CreateTaskRequest{Title: "x", DueDate: "soon"})
	var verr *entities.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dueDate", verr.Fields[0].Field)
}

func TestUpdateTaskKeepsUnsetFields(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()
	spoofed := 99

	task, err := svc.UpdateTask(ctx, 1, ports.UpdateTaskRequest{
		ID:      &spoofed,
		Title:   "Write annual report",
		DueDate: "2024-04-02",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, task.ID)
	assert.Equal(t, "Write annual report", task.Title)
	assert.Equal(t, entities.PriorityHigh, task.Priority)
	assert.Equal(t, entities.TaskStatusActive, task.Status)
	assert.Equal(t, []string{"finance"}, task.Tags)

	task, err = svc.UpdateTask(ctx, 1, ports.UpdateTaskRequest{
		Title:   "Write annual report",
		DueDate: "2024-04-02",
		Status:  "completed",
		Tags:    []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusCompleted, task.Status)
	assert.Empty(t, task.Tags)
}

func TestUpdateMissingTask(t *testing.T) {
	svc, obs := newTaskService(t)

	_, err := svc.UpdateTask(context.Background(), 42, ports.UpdateTaskRequest{Title: "x", DueDate: "2024-01-01"})
	assert.ErrorIs(t, err, entities.ErrNotFound)
	assert.ErrorIs(t, obs.last().err, entities.ErrNotFound)
}

func TestToggleTaskNotices(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()

	task, notice, err := svc.ToggleTask(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusCompleted, task.Status)
	assert.Equal(t, ports.NewNotice(ports.NoticeSuccess, "Task completed! Great job!"), notice)

	task, notice, err = svc.ToggleTask(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusActive, task.Status)
	assert.Equal(t, ports.NewNotice(ports.NoticeInfo, "Task marked as active"), notice)

	_, notice, err = svc.ToggleTask(ctx, 42)
	assert.ErrorIs(t, err, entities.ErrNotFound)
	assert.Equal(t, ports.NoticeError, notice.Level)
}

func TestDeleteTask(t *testing.T) {
	svc, _ := newTaskService(t)
	ctx := context.Background()

	removed, err := svc.DeleteTask(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Book venue", removed.Title)

	_, err = svc.GetTask(ctx, 2)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestNilObserverIsAllowed(t *testing.T) {
	svc := NewTaskService(memory.NewTaskRepository(repotest.Tasks()), nil, logger.NewNop())

	_, err := svc.GetTask(context.Background(), 1)
	assert.NoError(t, err)
}

func TestContactService(t *testing.T) {
	obs := &recordingObserver{}
	svc := NewContactService(memory.NewContactRepository(repotest.Contacts()), obs, logger.NewNop())
	ctx := context.Background()

	all, err := svc.ListContacts(ctx, "   ")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "get_all", obs.last().operation)

	found, err := svc.ListContacts(ctx, "product")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Grace Hopper", found[0].Name)
	assert.Equal(t, "search", obs.last().operation)

	created, err := svc.CreateContact(ctx, ports.CreateContactRequest{
		Name:       " Linus ",
		Email:      "linus@example.com",
		Phone:      "555-0102",
		Role:       "Maintainer",
		Department: "Engineering",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, created.ID)
	assert.Equal(t, "Linus", created.Name)

	updated, err := svc.UpdateContact(ctx, created.ID, ports.UpdateContactRequest{
		Name:       "Linus T",
		Email:      "linus@example.com",
		Phone:      "555-0102",
		Role:       "Maintainer",
		Department: "Operations",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Operations", updated.Department)
	assert.Equal(t, created.AddedAt, updated.AddedAt)

	_, err = svc.DeleteContact(ctx, created.ID)
	require.NoError(t, err)
	_, err = svc.GetContact(ctx, created.ID)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

type failingDiscounts struct{ ports.DiscountRepository }

func (failingDiscounts) GetAll(context.Context) ([]entities.Discount, error) {
	return nil, errors.New("connection refused")
}

func TestDiscountService(t *testing.T) {
	svc := NewDiscountService(memory.NewDiscountRepository(repotest.Discounts()), nil, logger.NewNop())
	svc.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	ids := func(ds []entities.Discount) []int {
		out := make([]int, 0, len(ds))
		for _, d := range ds {
			out = append(out, d.ID)
		}
		return out
	}

	all, err := svc.ListDiscounts(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 4, 3}, ids(all))

	all, err = svc.ListDiscounts(ctx, "All")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 4, 3}, ids(all))

	software, err := svc.ListDiscounts(ctx, "software")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, ids(software))

	none, err := svc.ListDiscounts(ctx, "Travel")
	require.NoError(t, err)
	assert.Empty(t, none)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	// 2024-03-20: only the 2024-01-01 offer has lapsed.
	assert.Equal(t, 3, summary.Active)
	assert.Equal(t, []ports.CategorySummary{
		{Name: "Software", Count: 1},
		{Name: "Furniture", Count: 1},
		{Name: "Training", Count: 1},
		{Name: "Office", Count: 1},
	}, summary.Categories)

	_, err = svc.GetDiscount(ctx, 99)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestDiscountSummaryPropagatesErrors(t *testing.T) {
	svc := NewDiscountService(failingDiscounts{}, nil, logger.NewNop())

	_, err := svc.Summary(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}
