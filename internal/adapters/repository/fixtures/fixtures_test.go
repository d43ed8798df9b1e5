package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/core/internal/domain/entities"
)

func TestDefault(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	require.NotEmpty(t, set.Tasks)
	require.NotEmpty(t, set.Contacts)
	require.NotEmpty(t, set.Discounts)

	seen := map[int]bool{}
	for _, task := range set.Tasks {
		assert.Positive(t, task.ID)
		assert.False(t, seen[task.ID], "duplicate task id %d", task.ID)
		seen[task.ID] = true
		assert.NotEmpty(t, task.Title)
		assert.True(t, task.Priority.IsValid())
		assert.True(t, task.Status.IsValid())
		assert.False(t, task.DueDate.IsZero())
		assert.False(t, task.CreatedAt.IsZero())
	}

	for _, c := range set.Contacts {
		assert.True(t, entities.IsDepartment(c.Department), c.Department)
		assert.Contains(t, c.Email, "@")
	}

	for _, d := range set.Discounts {
		assert.NotEmpty(t, d.Code)
		assert.NotEmpty(t, d.URL)
		assert.False(t, d.ExpiryDate.IsZero())
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tasks:
  - Id: 10
    title: From yaml
    dueDate: 2025-02-03
    priority: low
    status: completed
    createdAt: 2025-01-01T08:00:00Z
    tags: [a, b]
`), 0o600))

	set, err := LoadFile(path)
	require.NoError(t, err)

	require.Len(t, set.Tasks, 1)
	task := set.Tasks[0]
	assert.Equal(t, 10, task.ID)
	assert.Equal(t, "2025-02-03", task.DueDate.String())
	assert.Equal(t, entities.TaskStatusCompleted, task.Status)
	assert.Equal(t, []string{"a", "b"}, task.Tags)

	defaults, err := Default()
	require.NoError(t, err)
	assert.Equal(t, defaults.Contacts, set.Contacts, "missing sections fall back to the embedded set")
}

func TestLoadFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"discounts": [{"Id": 1, "title": "Only", "code": "X", "discount": "5%", "expiryDate": "2030-01-01", "category": "Office", "url": "https://example.com"}]}`), 0o600))

	set, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, set.Discounts, 1)
	assert.Equal(t, "Only", set.Discounts[0].Title)
}

func TestLoadFileRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.toml")
	require.NoError(t, os.WriteFile(path, []byte(`x = 1`), 0o600))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	set, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, set.Tasks)
}
