package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/core/internal/domain/entities"
)

func TestTaskMapping(t *testing.T) {
	task := entities.Task{
		ID:          3,
		Title:       "Ship",
		Description: "",
		DueDate:     entities.NewDate(2025, 1, 1),
		Priority:    entities.PriorityHigh,
		Status:      entities.TaskStatusCompleted,
		Tags:        []string{"a", " b ", ""},
		CreatedAt:   time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC),
	}

	row := taskToStorage(task)
	assert.Equal(t, "a,b", row.Tags)
	assert.Equal(t, "", row.Description)

	due, err := row.DueDate.Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", due)

	created, err := row.CreatedAt.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-12-01T08:00:00.000000Z", created)

	back := taskFromStorage(row)
	assert.Equal(t, []string{"a", "b"}, back.Tags)
	assert.Equal(t, task.DueDate, back.DueDate)
	assert.True(t, task.CreatedAt.Equal(back.CreatedAt))
}

func TestContactAndDiscountMapping(t *testing.T) {
	c := entities.Contact{ID: 1, Name: "Ada", Email: "a@b.c", AddedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, c, contactFromStorage(contactToStorage(c)))

	d := entities.Discount{ID: 2, Title: "Deal", ExpiryDate: entities.NewDate(2030, 5, 6), URL: "https://x"}
	assert.Equal(t, d, discountFromStorage(discountToStorage(d)))
}

func TestSplitTags(t *testing.T) {
	assert.Nil(t, splitTags(""))
	assert.Nil(t, splitTags("  "))
	assert.Equal(t, []string{"x", "y"}, splitTags("x, ,y"))
	assert.Equal(t, "one two", joinTags([]string{"one,two"}))
}

func TestScanStoredTimes(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{"2024-03-01", "2024-03-01"},
		{[]byte("2024-03-01T23:30:00.000000Z"), "2024-03-01"},
		{"2024-03-01 10:00:00+00:00", "2024-03-01"},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
		{nil, ""},
	}
	for _, tt := range tests {
		var d dbDate
		require.NoError(t, d.Scan(tt.in), "%v", tt.in)
		assert.Equal(t, tt.want, d.String())
	}

	var d dbDate
	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("yesterday"))
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "dueDate", fieldName("due_date"))
	assert.Equal(t, "title", fieldName("tasks.title"))
	assert.Equal(t, "email", fieldName("contacts_email_check"))
	assert.Equal(t, "unknown", fieldName("unknown"))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("op", nil))

	err := classify("create task", &pq.Error{Code: "23514", Constraint: "tasks_priority_check", Message: "violates check"})
	var ve *entities.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "priority", ve.Fields[0].Field)

	err = classify("create task", &pq.Error{Code: "23502", Column: "due_date", Message: "null value"})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "dueDate", ve.Fields[0].Field)

	err = classify("create task", &pq.Error{Code: "08006", Message: "connection failure"})
	assert.True(t, errors.Is(err, entities.ErrTransport))
	assert.False(t, errors.Is(err, entities.ErrValidation))

	err = classify("create task", fmt.Errorf("wrapped: %w", errors.New("eof")))
	assert.True(t, errors.Is(err, entities.ErrTransport))

	assert.Equal(t, "title", sqliteConstraintField("constraint failed: CHECK constraint failed: tasks_title_check (275)"))
	assert.Equal(t, "title", sqliteConstraintField("NOT NULL constraint failed: tasks.title (1299)"))
	assert.Equal(t, "", sqliteConstraintField("disk I/O error"))
}
