package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/database"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

var _ ports.TaskRepository = (*TaskRepository)(nil)

// TaskRepository implements ports.TaskRepository against the SQL records store
type TaskRepository struct {
	db     *database.DB
	logger *logger.Logger
	now    func() time.Time
	opts   options
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB, log *logger.Logger, opts ...Option) *TaskRepository {
	return &TaskRepository{
		db:     db,
		logger: log.WithComponent("task_repository"),
		now:    time.Now,
		opts:   buildOptions(opts),
	}
}

func (r *TaskRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]entities.Task, error) {
	var rows []taskRow
	if err := r.db.DB.SelectContext(ctx, &rows, r.db.DB.Rebind(query), args...); err != nil {
		r.opts.degradedRead(r.logger, "task", op, err)
		return []entities.Task{}, nil
	}

	tasks := make([]entities.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, taskFromStorage(row))
	}
	return tasks, nil
}

// GetAll returns every task ordered by ID
func (r *TaskRepository) GetAll(ctx context.Context) ([]entities.Task, error) {
	return r.list(ctx, "get_all", `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id int) (entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	var row taskRow
	err := r.db.DB.GetContext(ctx, &row, r.db.DB.Rebind(query), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.Task{}, entities.ErrTaskNotFound
		}
		return entities.Task{}, classify("get task", err)
	}

	return taskFromStorage(row), nil
}

// Create inserts a new active task and returns it with its assigned ID
func (r *TaskRepository) Create(ctx context.Context, draft entities.TaskDraft) (entities.Task, error) {
	task := entities.NewTask(0, draft, r.now().UTC())
	row := taskToStorage(task)

	query := `
		INSERT INTO tasks (title, description, due_date, priority, status, tags, created_at)
		VALUES (:title, :description, :due_date, :priority, :status, :tags, :created_at)
		RETURNING id`

	stmt, err := r.db.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return entities.Task{}, classify("create task", err)
	}
	defer stmt.Close()

	if err := stmt.GetContext(ctx, &task.ID, row); err != nil {
		return entities.Task{}, classify("create task", err)
	}

	return task, nil
}

// Update merges patch over the stored task inside a transaction
func (r *TaskRepository) Update(ctx context.Context, id int, patch entities.TaskPatch) (entities.Task, error) {
	var updated entities.Task

	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var row taskRow
		query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
		if err := tx.GetContext(ctx, &row, tx.Rebind(query), id); err != nil {
			return err
		}

		updated = patch.Apply(taskFromStorage(row))

		_, err := tx.NamedExecContext(ctx, `
			UPDATE tasks
			SET title = :title, description = :description, due_date = :due_date,
				priority = :priority, status = :status, tags = :tags
			WHERE id = :id`, taskToStorage(updated))
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.Task{}, entities.ErrTaskNotFound
		}
		return entities.Task{}, classify("update task", err)
	}

	return updated, nil
}

// Delete removes a task and returns the removed record
func (r *TaskRepository) Delete(ctx context.Context, id int) (entities.Task, error) {
	query := `DELETE FROM tasks WHERE id = ? RETURNING ` + taskColumns

	var row taskRow
	err := r.db.DB.GetContext(ctx, &row, r.db.DB.Rebind(query), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.Task{}, entities.ErrTaskNotFound
		}
		return entities.Task{}, classify("delete task", err)
	}

	return taskFromStorage(row), nil
}

// GetByStatus returns tasks with the given status ordered by ID
func (r *TaskRepository) GetByStatus(ctx context.Context, status entities.TaskStatus) ([]entities.Task, error) {
	return r.list(ctx, "get_by_status", `SELECT `+taskColumns+` FROM tasks WHERE status = ? ORDER BY id`, string(status))
}

// ToggleStatus flips a task between active and completed
func (r *TaskRepository) ToggleStatus(ctx context.Context, id int) (entities.Task, error) {
	query := fmt.Sprintf(`
		UPDATE tasks
		SET status = CASE status WHEN '%s' THEN '%s' ELSE '%s' END
		WHERE id = ?
		RETURNING %s`,
		entities.TaskStatusActive, entities.TaskStatusCompleted, entities.TaskStatusActive, taskColumns)

	var row taskRow
	err := r.db.DB.GetContext(ctx, &row, r.db.DB.Rebind(query), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.Task{}, entities.ErrTaskNotFound
		}
		return entities.Task{}, classify("toggle task", err)
	}

	return taskFromStorage(row), nil
}
