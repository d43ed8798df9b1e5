package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

// TaskService handles task-related operations
type TaskService struct {
	taskRepo ports.TaskRepository
	observer ports.OperationObserver
	logger   *logger.Logger
	now      func() time.Time
}

// NewTaskService creates a new task service. observer may be nil.
func NewTaskService(taskRepo ports.TaskRepository, observer ports.OperationObserver, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		observer: observer,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *TaskService) observe(op string, err error) {
	if s.observer != nil {
		s.observer.ObserveOperation("task", op, err)
	}
}

// Now returns the service clock, used for derived flags such as overdue
func (s *TaskService) Now() time.Time {
	return s.now()
}

// ListTasks returns the tasks in a view, narrowed by a search over title
// and description, highest priority first then soonest due.
func (s *TaskService) ListTasks(ctx context.Context, filter ports.TaskListFilter) ([]entities.Task, error) {
	var (
		tasks []entities.Task
		err   error
	)

	switch filter.View {
	case ports.TaskViewAll, "":
		tasks, err = s.taskRepo.GetAll(ctx)
		s.observe("get_all", err)
	case ports.TaskViewActive, ports.TaskViewCompleted:
		tasks, err = s.taskRepo.GetByStatus(ctx, entities.TaskStatus(filter.View))
		s.observe("get_by_status", err)
	default:
		return nil, entities.NewValidationError("status", "Status must be one of all, active, completed")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	if q := strings.ToLower(strings.TrimSpace(filter.Search)); q != "" {
		matched := tasks[:0]
		for _, t := range tasks {
			if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Description), q) {
				matched = append(matched, t)
			}
		}
		tasks = matched
	}

	entities.SortForDisplay(tasks)
	return tasks, nil
}

// Stats counts the tasks in each view
func (s *TaskService) Stats(ctx context.Context) (ports.TaskStats, error) {
	tasks, err := s.taskRepo.GetAll(ctx)
	s.observe("get_all", err)
	if err != nil {
		return ports.TaskStats{}, fmt.Errorf("failed to count tasks: %w", err)
	}

	now := s.now()
	stats := ports.TaskStats{All: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case entities.TaskStatusActive:
			stats.Active++
		case entities.TaskStatusCompleted:
			stats.Completed++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
	}
	return stats, nil
}

// GetTask retrieves a task by ID
func (s *TaskService) GetTask(ctx context.Context, id int) (entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	s.observe("get", err)
	if err != nil {
		return entities.Task{}, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return task, nil
}

// CreateTask creates a new task from a validated request
func (s *TaskService) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (entities.Task, error) {
	due, err := entities.ParseDate(req.DueDate)
	if err != nil {
		return entities.Task{}, entities.NewValidationError("dueDate", "Due date must be a date (YYYY-MM-DD)")
	}

	priority := entities.Priority(req.Priority)
	if priority == "" {
		priority = entities.PriorityMedium
	}

	task, err := s.taskRepo.Create(ctx, entities.TaskDraft{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		DueDate:     due,
		Priority:    priority,
		Tags:        req.Tags,
	})
	s.observe("create", err)
	if err != nil {
		return entities.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Infow("Task created successfully", "task_id", task.ID, "title", task.Title)

	return task, nil
}

// UpdateTask replaces a task's mutable fields. Empty priority or status
// keeps the stored value; a nil tag list keeps the stored tags.
func (s *TaskService) UpdateTask(ctx context.Context, id int, req ports.UpdateTaskRequest) (entities.Task, error) {
	due, err := entities.ParseDate(req.DueDate)
	if err != nil {
		return entities.Task{}, entities.NewValidationError("dueDate", "Due date must be a date (YYYY-MM-DD)")
	}

	title := strings.TrimSpace(req.Title)
	patch := entities.TaskPatch{
		ID:          req.ID,
		Title:       &title,
		Description: &req.Description,
		DueDate:     &due,
	}
	if req.Priority != "" {
		priority := entities.Priority(req.Priority)
		patch.Priority = &priority
	}
	if req.Status != "" {
		status := entities.TaskStatus(req.Status)
		patch.Status = &status
	}
	if req.Tags != nil {
		patch.Tags = &req.Tags
	}

	task, err := s.taskRepo.Update(ctx, id, patch)
	s.observe("update", err)
	if err != nil {
		return entities.Task{}, fmt.Errorf("failed to update task %d: %w", id, err)
	}

	s.logger.Infow("Task updated successfully", "task_id", task.ID, "title", task.Title)

	return task, nil
}

// ToggleTask flips a task between active and completed
func (s *TaskService) ToggleTask(ctx context.Context, id int) (entities.Task, ports.Notice, error) {
	task, err := s.taskRepo.ToggleStatus(ctx, id)
	s.observe("toggle_status", err)
	if err != nil {
		return entities.Task{}, ports.NewNotice(ports.NoticeError, "Failed to update task status"), fmt.Errorf("failed to toggle task %d: %w", id, err)
	}

	s.logger.Infow("Task status toggled", "task_id", task.ID, "status", task.Status)

	return task, ports.TaskToggledNotice(task), nil
}

// DeleteTask deletes a task and returns the removed record
func (s *TaskService) DeleteTask(ctx context.Context, id int) (entities.Task, error) {
	task, err := s.taskRepo.Delete(ctx, id)
	s.observe("delete", err)
	if err != nil {
		return entities.Task{}, fmt.Errorf("failed to delete task %d: %w", id, err)
	}

	s.logger.Infow("Task deleted successfully", "task_id", id)

	return task, nil
}
