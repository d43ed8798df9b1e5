package commands

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/core/internal/domain/entities"
)

// isolate keeps a stray .env or environment from leaking into a command run
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("STORE_FIXTURES", "")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("LOG_LEVEL", "info")
}

func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_BACKEND", "sql")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "taskflow.db"))
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTaskList(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Prepare quarterly report")
	assert.Contains(t, out, "Renew IDE licences")

	out, err = run(t, "", "task", "list", "--view", "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "Renew IDE licences")
	assert.NotContains(t, out, "Prepare quarterly report")

	out, err = run(t, "", "task", "list", "--search", "CHAIRS")
	require.NoError(t, err)
	assert.Contains(t, out, "Order new office chairs")
	assert.NotContains(t, out, "Renew IDE licences")
}

func TestTaskListUnknownView(t *testing.T) {
	isolate(t)

	_, err := run(t, "", "task", "list", "--view", "someday")
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestTaskAdd(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "task", "add", "--title", "Ship release", "--due", "2030-01-01", "--tags", "ops,release")
	require.NoError(t, err)
	assert.Contains(t, out, "[success] Task created successfully!")
	assert.Contains(t, out, "Id: 7")

	_, err = run(t, "", "task", "add", "--title", "  ", "--due", "tomorrow")
	var verr *entities.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestTaskDone(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "task", "done", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Task completed! Great job!")

	out, err = run(t, "", "task", "done", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Task marked as active")

	_, err = run(t, "", "task", "done", "abc")
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)

	_, err = run(t, "", "task", "done", "99")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestTaskDeleteConfirmation(t *testing.T) {
	isolate(t)

	out, err := run(t, "n\n", "task", "delete", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "[y/N]")
	assert.Contains(t, out, "Cancelled")
	assert.NotContains(t, out, "deleted")

	out, err = run(t, "y\n", "task", "delete", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "[success] Task deleted successfully")

	out, err = run(t, "", "task", "delete", "2", "--yes")
	require.NoError(t, err)
	assert.NotContains(t, out, "[y/N]")
	assert.Contains(t, out, "Task deleted successfully")
}

func TestContactCommands(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "contact", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Sarah Chen")
	assert.Contains(t, out, "Tom Becker")

	out, err = run(t, "", "contact", "search", "chen")
	require.NoError(t, err)
	assert.Contains(t, out, "[info] Found 1 contact")
	assert.NotContains(t, out, "Found 1 contacts")
	assert.Contains(t, out, "Sarah Chen")
	assert.NotContains(t, out, "Marcus Johnson")

	out, err = run(t, "", "contact", "search", "nobody-matches-this")
	require.NoError(t, err)
	assert.Contains(t, out, "[info] No contacts found")

	out, err = run(t, "", "contact", "add",
		"--name", "Nia Okafor",
		"--email", "nia@company.com",
		"--phone", "555-0101",
		"--role", "Analyst",
		"--department", "Finance",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Contact created successfully!")
	assert.Contains(t, out, "Id: 7")

	_, err = run(t, "", "contact", "add", "--name", "Nobody", "--email", "not-an-email", "--phone", "1", "--role", "x", "--department", "Legal")
	var verr *entities.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)

	out, err = run(t, "", "contact", "delete", "3", "-y")
	require.NoError(t, err)
	assert.Contains(t, out, "Contact deleted successfully")

	_, err = run(t, "", "contact", "delete", "42", "-y")
	assert.ErrorIs(t, err, entities.ErrContactNotFound)
}

func TestDiscountList(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "discount", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "active deals")
	assert.Contains(t, out, "Furniture (")
	assert.Contains(t, out, "CODE")

	out, err = run(t, "", "discount", "list", "--filter", "software")
	require.NoError(t, err)
	assert.Contains(t, out, "Software")
	for _, line := range strings.Split(out, "\n")[2:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		assert.True(t, strings.HasSuffix(strings.TrimSpace(line), "Software"), line)
	}

	out, err = run(t, "", "discount", "list", "--filter", "active")
	require.NoError(t, err)
	assert.NotContains(t, out, "(expired)")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Taskflow dev")
	assert.Contains(t, out, "Git Commit: none")
}

func TestToken(t *testing.T) {
	isolate(t)

	_, err := run(t, "", "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "cli-secret")
	out, err := run(t, "", "token", "--user-id", "u-1", "--email", "ada@example.com")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "."), 3)
}

func TestSQLBackendLifecycle(t *testing.T) {
	isolate(t)
	useSQLite(t)

	out, err := run(t, "", "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "Migration up completed successfully")

	out, err = run(t, "", "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Current migration version: 3")
	assert.Contains(t, out, "Dirty: false")

	out, err = run(t, "", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 6 tasks, 6 contacts and 8 discounts")

	out, err = run(t, "", "task", "add", "--title", "Persisted task", "--due", "2030-01-01", "--priority", "high")
	require.NoError(t, err)
	assert.Contains(t, out, "Id: 7")

	// a second process sees the row
	out, err = run(t, "", "task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Persisted task")
	assert.Contains(t, out, "Prepare quarterly report")

	out, err = run(t, "", "contact", "search", "product")
	require.NoError(t, err)
	assert.Contains(t, out, "Marcus Johnson")

	out, err = run(t, "", "migrate", "down")
	require.NoError(t, err)
	assert.Contains(t, out, "Migration down completed successfully")
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestServeListensOnConfiguredAddress(t *testing.T) {
	isolate(t)
	port := freePort(t)
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", fmt.Sprint(port))
	t.Setenv("LOG_OUTPUT", "stderr")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve"})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not shut down")
	}
}
