package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/core/internal/application/services"
	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

// TaskResponse is a task with its derived overdue flag
type TaskResponse struct {
	entities.Task
	Overdue bool `json:"overdue"`
}

func newTaskResponse(t entities.Task, now time.Time) TaskResponse {
	return TaskResponse{Task: t, Overdue: t.IsOverdue(now)}
}

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks godoc
// @Summary List tasks
// @Description Tasks in a view (all, active, completed), optionally searched, highest priority first
// @Tags tasks
// @Produce json
// @Param view query string false "all, active or completed"
// @Param status query string false "Alias of view"
// @Param q query string false "Search over title and description"
// @Success 200 {object} ListResponse[TaskResponse]
// @Failure 400 {object} ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	view := c.QueryParam("view")
	if view == "" {
		view = c.QueryParam("status")
	}

	switch ports.TaskView(view) {
	case "", ports.TaskViewAll, ports.TaskViewActive, ports.TaskViewCompleted:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid task view",
			Fields:  []entities.FieldError{{Field: "view", Message: "View must be one of all, active, completed"}},
		})
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), ports.TaskListFilter{
		View:   ports.TaskView(view),
		Search: c.QueryParam("q"),
	})
	if err != nil {
		return failure(h.logger, err, "Failed to load tasks")
	}

	now := h.taskService.Now()
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskResponse(t, now))
	}

	return c.JSON(http.StatusOK, newListResponse(out))
}

// Stats godoc
// @Summary Task counts
// @Description Counts per view plus overdue tasks
// @Tags tasks
// @Produce json
// @Success 200 {object} ports.TaskStats
// @Router /tasks/stats [get]
func (h *TaskHandler) Stats(c echo.Context) error {
	stats, err := h.taskService.Stats(c.Request().Context())
	if err != nil {
		return failure(h.logger, err, "Failed to load tasks")
	}
	return c.JSON(http.StatusOK, stats)
}

// GetTask godoc
// @Summary Get task by ID
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} TaskResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, err := parseID(c, entities.ErrTaskNotFound)
	if err != nil {
		return failure(h.logger, err, "Failed to load task", "task_id", c.Param("id"))
	}

	task, err := h.taskService.GetTask(c.Request().Context(), id)
	if err != nil {
		return failure(h.logger, err, "Failed to load task", "task_id", id)
	}

	return c.JSON(http.StatusOK, newTaskResponse(task, h.taskService.Now()))
}

// CreateTask godoc
// @Summary Create a new task
// @Description New tasks start active; priority defaults to medium
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body ports.CreateTaskRequest true "Task data"
// @Success 201 {object} MutationResponse[TaskResponse]
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), req)
	if err != nil {
		return failure(h.logger, err, "Failed to save task")
	}

	return c.JSON(http.StatusCreated, MutationResponse[TaskResponse]{
		Data:   newTaskResponse(task, h.taskService.Now()),
		Notice: ports.NewNotice(ports.NoticeSuccess, "Task created successfully!"),
	})
}

// UpdateTask godoc
// @Summary Update a task
// @Description Replaces the task's fields; an Id in the body is ignored
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param request body ports.UpdateTaskRequest true "Task data"
// @Success 200 {object} MutationResponse[TaskResponse]
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := parseID(c, entities.ErrTaskNotFound)
	if err != nil {
		return failure(h.logger, err, "Failed to save task", "task_id", c.Param("id"))
	}

	var req ports.UpdateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), id, req)
	if err != nil {
		return failure(h.logger, err, "Failed to save task", "task_id", id)
	}

	return c.JSON(http.StatusOK, MutationResponse[TaskResponse]{
		Data:   newTaskResponse(task, h.taskService.Now()),
		Notice: ports.NewNotice(ports.NoticeSuccess, "Task updated successfully!"),
	})
}

// ToggleTask godoc
// @Summary Toggle task status
// @Description Flips a task between active and completed
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} MutationResponse[TaskResponse]
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id}/toggle [patch]
func (h *TaskHandler) ToggleTask(c echo.Context) error {
	id, err := parseID(c, entities.ErrTaskNotFound)
	if err != nil {
		return failure(h.logger, err, "Failed to update task status", "task_id", c.Param("id"))
	}

	task, notice, err := h.taskService.ToggleTask(c.Request().Context(), id)
	if err != nil {
		return failure(h.logger, err, notice.Message, "task_id", id)
	}

	return c.JSON(http.StatusOK, MutationResponse[TaskResponse]{
		Data:   newTaskResponse(task, h.taskService.Now()),
		Notice: notice,
	})
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} MutationResponse[TaskResponse]
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := parseID(c, entities.ErrTaskNotFound)
	if err != nil {
		return failure(h.logger, err, "Failed to delete task", "task_id", c.Param("id"))
	}

	task, err := h.taskService.DeleteTask(c.Request().Context(), id)
	if err != nil {
		return failure(h.logger, err, "Failed to delete task", "task_id", id)
	}

	return c.JSON(http.StatusOK, MutationResponse[TaskResponse]{
		Data:   newTaskResponse(task, h.taskService.Now()),
		Notice: ports.NewNotice(ports.NoticeSuccess, "Task deleted successfully"),
	})
}
