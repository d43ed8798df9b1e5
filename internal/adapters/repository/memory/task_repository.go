package memory

import (
	"context"
	"sync"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/ports"
)

var _ ports.TaskRepository = (*TaskRepository)(nil)

// TaskRepository implements ports.TaskRepository over a slice
type TaskRepository struct {
	mu    sync.Mutex
	tasks []entities.Task
	opts  options

	// lastID is the highest id ever held, deleted records included
	lastID int
}

// NewTaskRepository creates a task store seeded with a copy of seed
func NewTaskRepository(seed []entities.Task, opts ...Option) *TaskRepository {
	r := &TaskRepository{tasks: make([]entities.Task, 0, len(seed)), opts: buildOptions(opts)}
	for _, t := range seed {
		r.tasks = append(r.tasks, t.Clone())
		r.lastID = max(r.lastID, t.ID)
	}
	return r
}

func (r *TaskRepository) indexOf(id int) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *TaskRepository) nextID() int {
	r.lastID++
	return r.lastID
}

// GetAll returns every task in insertion order
func (r *TaskRepository) GetAll(ctx context.Context) ([]entities.Task, error) {
	if err := r.opts.latency.wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entities.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id int) (entities.Task, error) {
	if err := r.opts.latency.wait(ctx); err != nil {
		return entities.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return entities.Task{}, entities.ErrTaskNotFound
	}
	return r.tasks[i].Clone(), nil
}

// Create appends a new active task with the next free ID
func (r *TaskRepository) Create(ctx context.Context, draft entities.TaskDraft) (entities.Task, error) {
	if err := r.opts.latency.wait(ctx); err != nil {
		return entities.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task := entities.NewTask(r.nextID(), draft, r.opts.now().UTC())
	r.tasks = append(r.tasks, task)
	return task.Clone(), nil
}

// Update merges patch over the stored task
func (r *TaskRepository) Update(ctx context.Context, id int, patch entities.TaskPatch) (entities.Task, error) {
	if err := r.opts.latency.wait(ctx); err != nil {
		return entities.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return entities.Task{}, entities.ErrTaskNotFound
	}
	r.tasks[i] = patch.Apply(r.tasks[i])
	return r.tasks[i].Clone(), nil
}

// Delete removes a task and returns it
func (r *TaskRepository) Delete(ctx context.Context, id int) (entities.Task, error) {
	if err := r.opts.latency.wait(ctx); err != nil {
		return entities.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return entities.Task{}, entities.ErrTaskNotFound
	}
	removed := r.tasks[i]
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return removed, nil
}

// GetByStatus returns tasks with exactly the given status
func (r *TaskRepository) GetByStatus(ctx context.Context, status entities.TaskStatus) ([]entities.Task, error) {
	if err := r.opts.latency.wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := []entities.Task{}
	for _, t := range r.tasks {
		if t.Status == status {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

// ToggleStatus flips a task between active and completed
func (r *TaskRepository) ToggleStatus(ctx context.Context, id int) (entities.Task, error) {
	if err := r.opts.latency.wait(ctx); err != nil {
		return entities.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return entities.Task{}, entities.ErrTaskNotFound
	}
	r.tasks[i].Status = r.tasks[i].Status.Toggle()
	return r.tasks[i].Clone(), nil
}
