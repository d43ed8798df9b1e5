// Package repotest holds the behaviour every records store must share. Each
// store implementation runs these suites from its own tests.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/ports"
)

type (
	TaskFactory     func(t *testing.T, seed []entities.Task) ports.TaskRepository
	ContactFactory  func(t *testing.T, seed []entities.Contact) ports.ContactRepository
	DiscountFactory func(t *testing.T, seed []entities.Discount) ports.DiscountRepository
)

var seededAt = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// Tasks is a small seed set with ascending identifiers
func Tasks() []entities.Task {
	return []entities.Task{
		{ID: 1, Title: "Write report", Description: "Quarterly numbers", DueDate: entities.NewDate(2024, 4, 1), Priority: entities.PriorityHigh, Status: entities.TaskStatusActive, Tags: []string{"finance"}, CreatedAt: seededAt},
		{ID: 2, Title: "Book venue", DueDate: entities.NewDate(2024, 5, 10), Priority: entities.PriorityLow, Status: entities.TaskStatusCompleted, CreatedAt: seededAt.Add(time.Hour)},
		{ID: 5, Title: "Review PRs", Description: "Backend queue", DueDate: entities.NewDate(2024, 3, 15), Priority: entities.PriorityMedium, Status: entities.TaskStatusActive, CreatedAt: seededAt.Add(2 * time.Hour)},
	}
}

// Contacts is a small seed set with ascending identifiers and addedAt
func Contacts() []entities.Contact {
	return []entities.Contact{
		{ID: 1, Name: "Ada Lovelace", Email: "ada@example.com", Phone: "555-0100", Role: "Engineer", Department: "Engineering", AddedAt: seededAt},
		{ID: 2, Name: "Grace Hopper", Email: "grace@example.com", Phone: "555-0101", Role: "Product Lead", Department: "Product", AddedAt: seededAt.Add(time.Hour)},
	}
}

// Discounts is a seed set deliberately out of expiry order
func Discounts() []entities.Discount {
	return []entities.Discount{
		{ID: 1, Title: "Desk chairs", Code: "SIT20", Discount: "20% off", ExpiryDate: entities.NewDate(2025, 6, 1), Category: "Furniture", URL: "https://example.com/chairs"},
		{ID: 2, Title: "IDE licence", Code: "CODE30", Discount: "30% off", ExpiryDate: entities.NewDate(2024, 1, 1), Category: "Software", URL: "https://example.com/ide"},
		{ID: 3, Title: "Printer paper", Code: "PAPER10", Discount: "10% off", ExpiryDate: entities.NewDate(2099, 12, 31), Category: "Office", URL: "https://example.com/paper"},
		{ID: 4, Title: "Cloud course", Code: "LEARN", Discount: "$50 off", ExpiryDate: entities.NewDate(2099, 1, 1), Category: "Training", URL: "https://example.com/course"},
	}
}

func taskIDs(tasks []entities.Task) []int {
	ids := make([]int, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func contactIDs(contacts []entities.Contact) []int {
	ids := make([]int, 0, len(contacts))
	for _, c := range contacts {
		ids = append(ids, c.ID)
	}
	return ids
}

func discountIDs(discounts []entities.Discount) []int {
	ids := make([]int, 0, len(discounts))
	for _, d := range discounts {
		ids = append(ids, d.ID)
	}
	return ids
}

// RunTaskRepository exercises ports.TaskRepository
func RunTaskRepository(t *testing.T, newRepo TaskFactory) {
	ctx := context.Background()

	t.Run("GetAll returns the seed", func(t *testing.T) {
		repo := newRepo(t, Tasks())
		tasks, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 5}, taskIDs(tasks))
		assert.Equal(t, []string{"finance"}, tasks[0].Tags)
		assert.Equal(t, "2024-04-01", tasks[0].DueDate.String())
		assert.Empty(t, tasks[1].Tags)
	})

	t.Run("GetByID", func(t *testing.T) {
		repo := newRepo(t, Tasks())
		task, err := repo.GetByID(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, "Review PRs", task.Title)
		assert.Equal(t, "Backend queue", task.Description)
		assert.Equal(t, entities.PriorityMedium, task.Priority)
		assert.True(t, task.CreatedAt.Equal(seededAt.Add(2*time.Hour)))

		_, err = repo.GetByID(ctx, 42)
		assert.True(t, errors.Is(err, entities.ErrNotFound))
	})

	t.Run("created ids strictly increase", func(t *testing.T) {
		repo := newRepo(t, Tasks())
		first, err := repo.Create(ctx, entities.TaskDraft{Title: "A", DueDate: entities.NewDate(2025, 1, 1), Priority: entities.PriorityLow})
		require.NoError(t, err)
		second, err := repo.Create(ctx, entities.TaskDraft{Title: "B", DueDate: entities.NewDate(2025, 1, 2), Priority: entities.PriorityLow})
		require.NoError(t, err)

		assert.Greater(t, first.ID, 5)
		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("create on an empty store starts at one", func(t *testing.T) {
		repo := newRepo(t, nil)
		task, err := repo.Create(ctx, entities.TaskDraft{Title: "First", DueDate: entities.NewDate(2025, 1, 1), Priority: entities.PriorityMedium})
		require.NoError(t, err)
		assert.Equal(t, 1, task.ID)
	})

	t.Run("create then toggle twice", func(t *testing.T) {
		repo := newRepo(t, Tasks())
		before := time.Now().Add(-time.Second)

		task, err := repo.Create(ctx, entities.TaskDraft{
			Title:    "Ship spec",
			DueDate:  entities.NewDate(2025, 1, 1),
			Priority: entities.PriorityHigh,
			Tags:     []string{"release", "docs"},
		})
		require.NoError(t, err)
		assert.Equal(t, entities.TaskStatusActive, task.Status)
		assert.Equal(t, entities.PriorityHigh, task.Priority)
		assert.Equal(t, []string{"release", "docs"}, task.Tags)
		assert.False(t, task.CreatedAt.Before(before), "createdAt is set on create")

		stored, err := repo.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ship spec", stored.Title)
		assert.Equal(t, "2025-01-01", stored.DueDate.String())

		toggled, err := repo.ToggleStatus(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.TaskStatusCompleted, toggled.Status)

		toggled, err = repo.ToggleStatus(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.TaskStatusActive, toggled.Status)
	})

	t.Run("update keeps the original id", func(t *testing.T) {
		repo := newRepo(t, Tasks())
		otherID := 999
		title := "Write final report"
		updated, err := repo.Update(ctx, 1, entities.TaskPatch{ID: &otherID, Title: &title})
		require.NoError(t, err)
		assert.Equal(t, 1, updated.ID)
		assert.Equal(t, title, updated.Title)
		assert.Equal(t, "Quarterly numbers", updated.Description, "unsupplied fields are kept")

		_, err = repo.GetByID(ctx, otherID)
		assert.True(t, errors.Is(err, entities.ErrNotFound))

		stored, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, title, stored.Title)
	})

	t.Run("update of a missing task", func(t *testing.T) {
		repo := newRepo(t, Tasks())
		title := "nope"
		_, err := repo.Update(ctx, 3, entities.TaskPatch{Title: &title})
		assert.True(t, errors.Is(err, entities.ErrTaskNotFound))
	})

	t.Run("delete then get", func(t *testing.T) {
		repo := newRepo(t, Tasks())
		removed, err := repo.Delete(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "Book venue", removed.Title)

		_, err = repo.GetByID(ctx, 2)
		assert.True(t, errors.Is(err, entities.ErrNotFound))

		_, err = repo.Delete(ctx, 2)
		assert.True(t, errors.Is(err, entities.ErrNotFound))

		tasks, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 5}, taskIDs(tasks))
	})

	t.Run("ids are not reused after delete", func(t *testing.T) {
		repo := newRepo(t, Tasks())
		created, err := repo.Create(ctx, entities.TaskDraft{Title: "X", DueDate: entities.NewDate(2025, 1, 1), Priority: entities.PriorityLow})
		require.NoError(t, err)
		_, err = repo.Delete(ctx, created.ID)
		require.NoError(t, err)

		next, err := repo.Create(ctx, entities.TaskDraft{Title: "Y", DueDate: entities.NewDate(2025, 1, 1), Priority: entities.PriorityLow})
		require.NoError(t, err)
		assert.Greater(t, next.ID, created.ID)

		// the seed's highest id is also retired once deleted
		_, err = repo.Delete(ctx, next.ID)
		require.NoError(t, err)
		_, err = repo.Delete(ctx, 5)
		require.NoError(t, err)
		last, err := repo.Create(ctx, entities.TaskDraft{Title: "Z", DueDate: entities.NewDate(2025, 1, 1), Priority: entities.PriorityLow})
		require.NoError(t, err)
		assert.Greater(t, last.ID, next.ID)
	})

	t.Run("GetByStatus", func(t *testing.T) {
		repo := newRepo(t, Tasks())
		active, err := repo.GetByStatus(ctx, entities.TaskStatusActive)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 5}, taskIDs(active))

		completed, err := repo.GetByStatus(ctx, entities.TaskStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, []int{2}, taskIDs(completed))
	})

	t.Run("toggle of a missing task", func(t *testing.T) {
		repo := newRepo(t, Tasks())
		_, err := repo.ToggleStatus(ctx, 77)
		assert.True(t, errors.Is(err, entities.ErrNotFound))
	})

	t.Run("returned values are copies", func(t *testing.T) {
		repo := newRepo(t, Tasks())
		task, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		task.Title = "mutated"
		task.Tags[0] = "mutated"

		again, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Write report", again.Title)
		assert.Equal(t, []string{"finance"}, again.Tags)
	})
}

// RunContactRepository exercises ports.ContactRepository
func RunContactRepository(t *testing.T, newRepo ContactFactory) {
	ctx := context.Background()

	t.Run("search with empty query returns everything", func(t *testing.T) {
		repo := newRepo(t, Contacts())
		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		found, err := repo.Search(ctx, "")
		require.NoError(t, err)
		assert.ElementsMatch(t, contactIDs(all), contactIDs(found))
		assert.Len(t, found, 2)
	})

	t.Run("search ignores case across fields", func(t *testing.T) {
		repo := newRepo(t, Contacts())
		tests := []struct {
			query string
			want  []int
		}{
			{"ADA", []int{1}},
			{"product", []int{2}},
			{"example.com", []int{1, 2}},
			{"engineer", []int{1}},
			{"nobody", []int{}},
		}
		for _, tt := range tests {
			found, err := repo.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, contactIDs(found), "query %q", tt.query)
		}
	})

	t.Run("create assigns the next id and addedAt", func(t *testing.T) {
		repo := newRepo(t, Contacts())
		before := time.Now().Add(-time.Second)
		c, err := repo.Create(ctx, entities.ContactDraft{Name: "Linus", Email: "linus@example.com", Phone: "555-0102", Role: "Maintainer", Department: "Engineering"})
		require.NoError(t, err)
		assert.Equal(t, 3, c.ID)
		assert.False(t, c.AddedAt.Before(before))

		stored, err := repo.GetByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "linus@example.com", stored.Email)
	})

	t.Run("ids are not reused after deleting the newest contact", func(t *testing.T) {
		repo := newRepo(t, Contacts())
		_, err := repo.Delete(ctx, 2)
		require.NoError(t, err)

		c, err := repo.Create(ctx, entities.ContactDraft{Name: "Alan", Email: "alan@example.com", Phone: "555-0103", Role: "Researcher", Department: "Engineering"})
		require.NoError(t, err)
		assert.Equal(t, 3, c.ID)

		_, err = repo.Delete(ctx, c.ID)
		require.NoError(t, err)
		again, err := repo.Create(ctx, entities.ContactDraft{Name: "Joan", Email: "joan@example.com", Phone: "555-0104", Role: "Analyst", Department: "Finance"})
		require.NoError(t, err)
		assert.Equal(t, 4, again.ID)
	})

	t.Run("update merges and keeps the id", func(t *testing.T) {
		repo := newRepo(t, Contacts())
		otherID := 50
		role := "Principal Engineer"
		c, err := repo.Update(ctx, 1, entities.ContactPatch{ID: &otherID, Role: &role})
		require.NoError(t, err)
		assert.Equal(t, 1, c.ID)
		assert.Equal(t, role, c.Role)
		assert.Equal(t, "Ada Lovelace", c.Name)

		_, err = repo.Update(ctx, 9, entities.ContactPatch{Role: &role})
		assert.True(t, errors.Is(err, entities.ErrContactNotFound))
	})

	t.Run("delete of a missing contact leaves the collection unchanged", func(t *testing.T) {
		repo := newRepo(t, Contacts())
		_, err := repo.Delete(ctx, 3)
		assert.True(t, errors.Is(err, entities.ErrNotFound))

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{1, 2}, contactIDs(all))
	})

	t.Run("delete then get", func(t *testing.T) {
		repo := newRepo(t, Contacts())
		removed, err := repo.Delete(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", removed.Name)

		_, err = repo.GetByID(ctx, 1)
		assert.True(t, errors.Is(err, entities.ErrContactNotFound))
	})
}

// RunDiscountRepository exercises ports.DiscountRepository
func RunDiscountRepository(t *testing.T, newRepo DiscountFactory) {
	ctx := context.Background()

	t.Run("GetAll is soonest-expiring first", func(t *testing.T) {
		repo := newRepo(t, Discounts())
		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1, 4, 3}, discountIDs(all))
		assert.Equal(t, "2024-01-01", all[0].ExpiryDate.String())
		assert.Equal(t, "2025-06-01", all[1].ExpiryDate.String())
	})

	t.Run("GetByID", func(t *testing.T) {
		repo := newRepo(t, Discounts())
		d, err := repo.GetByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "PAPER10", d.Code)
		assert.Equal(t, "https://example.com/paper", d.URL)

		_, err = repo.GetByID(ctx, 99)
		assert.True(t, errors.Is(err, entities.ErrDiscountNotFound))
	})

	t.Run("GetByCategory ignores case", func(t *testing.T) {
		repo := newRepo(t, Discounts())
		found, err := repo.GetByCategory(ctx, "software")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Software", found[0].Category)

		none, err := repo.GetByCategory(ctx, "Travel")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("GetActive is the unexpired subset of GetAll", func(t *testing.T) {
		repo := newRepo(t, Discounts())
		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		active, err := repo.GetActive(ctx)
		require.NoError(t, err)

		now := time.Now()
		var want []int
		for _, d := range all {
			if d.ExpiryDate.After(now) {
				want = append(want, d.ID)
			}
		}
		assert.Equal(t, want, discountIDs(active))
		assert.Equal(t, []int{4, 3}, discountIDs(active))
	})
}
