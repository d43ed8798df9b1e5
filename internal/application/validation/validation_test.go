package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/ports"
)

func fieldMessages(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *entities.ValidationError
	require.True(t, errors.As(err, &ve), "expected a ValidationError, got %v", err)
	out := make(map[string]string, len(ve.Fields))
	for _, f := range ve.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestValidateTaskRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name   string
		req    ports.CreateTaskRequest
		fields map[string]string
	}{
		{
			name: "valid with default priority",
			req:  ports.CreateTaskRequest{Title: "Ship", DueDate: "2025-01-01"},
		},
		{
			name:   "blank title",
			req:    ports.CreateTaskRequest{Title: "   ", DueDate: "2025-01-01"},
			fields: map[string]string{"title": "Title is required"},
		},
		{
			name:   "missing due date",
			req:    ports.CreateTaskRequest{Title: "Ship"},
			fields: map[string]string{"dueDate": "Due date is required"},
		},
		{
			name:   "malformed due date",
			req:    ports.CreateTaskRequest{Title: "Ship", DueDate: "01/02/2025"},
			fields: map[string]string{"dueDate": "Due date must be a date (YYYY-MM-DD)"},
		},
		{
			name:   "unknown priority",
			req:    ports.CreateTaskRequest{Title: "Ship", DueDate: "2025-01-01", Priority: "urgent"},
			fields: map[string]string{"priority": "Priority must be low, medium or high"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.fields, fieldMessages(t, err))
			assert.True(t, errors.Is(err, entities.ErrValidation))
		})
	}
}

func TestValidateContactRequest(t *testing.T) {
	v := New()

	valid := ports.CreateContactRequest{
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		Phone:      "+1 555 0100",
		Role:       "Engineer",
		Department: "Engineering",
	}
	assert.NoError(t, v.Validate(&valid))

	bad := valid
	bad.Email = "ada@example"
	bad.Department = "Legal"
	bad.Phone = ""
	assert.Equal(t, map[string]string{
		"email":      "Email is invalid",
		"department": "Department must be one of Engineering, Product, Design, Marketing, Sales, Operations, HR, Finance",
		"phone":      "Phone number is required",
	}, fieldMessages(t, v.Validate(&bad)))
}

func TestValidateUpdateTaskIgnoresIdentifier(t *testing.T) {
	v := New()
	id := 99
	req := ports.UpdateTaskRequest{ID: &id, Title: "Ship", DueDate: "2025-01-01", Status: "completed"}
	assert.NoError(t, v.Validate(&req))

	req.Status = "archived"
	assert.Equal(t, map[string]string{"status": "Status must be one of active, completed"}, fieldMessages(t, v.Validate(&req)))
}
