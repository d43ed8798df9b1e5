package ports

import (
	"fmt"

	"github.com/taskflow/core/internal/domain/entities"
)

// OperationObserver records the outcome of a repository operation
type OperationObserver interface {
	ObserveOperation(entity, operation string, err error)
}

// DegradedReadObserver records a list read that fell back to an empty
// result because the records store failed
type DegradedReadObserver interface {
	ObserveDegradedRead(entity, operation string, err error)
}

// Request/Response Types

// Task related types
type CreateTaskRequest struct {
	Title       string   `json:"title" validate:"notblank"`
	Description string   `json:"description"`
	DueDate     string   `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Priority    string   `json:"priority" validate:"omitempty,priority"`
	Tags        []string `json:"tags"`
}

// UpdateTaskRequest replaces the mutable fields of a task. A client-supplied
// Id is accepted and ignored.
type UpdateTaskRequest struct {
	ID          *int     `json:"Id"`
	Title       string   `json:"title" validate:"notblank"`
	Description string   `json:"description"`
	DueDate     string   `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Priority    string   `json:"priority" validate:"omitempty,priority"`
	Status      string   `json:"status" validate:"omitempty,oneof=active completed"`
	Tags        []string `json:"tags"`
}

// TaskView selects which tasks a list shows
type TaskView string

const (
	TaskViewAll       TaskView = "all"
	TaskViewActive    TaskView = "active"
	TaskViewCompleted TaskView = "completed"
)

type TaskListFilter struct {
	View   TaskView
	Search string
}

// TaskStats holds the per-view counts shown on the filter tabs
type TaskStats struct {
	All       int `json:"all"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

// Contact related types
type CreateContactRequest struct {
	Name       string `json:"name" validate:"notblank"`
	Email      string `json:"email" validate:"notblank,emailshape"`
	Phone      string `json:"phone" validate:"notblank"`
	Role       string `json:"role" validate:"notblank"`
	Department string `json:"department" validate:"notblank,department"`
}

type UpdateContactRequest struct {
	ID         *int   `json:"Id"`
	Name       string `json:"name" validate:"notblank"`
	Email      string `json:"email" validate:"notblank,emailshape"`
	Phone      string `json:"phone" validate:"notblank"`
	Role       string `json:"role" validate:"notblank"`
	Department string `json:"department" validate:"notblank,department"`
}

// Discount related types

// DiscountFilterAll and DiscountFilterActive are the fixed discount views;
// any other filter value names a category.
const (
	DiscountFilterAll    = "all"
	DiscountFilterActive = "active"
)

type CategorySummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type DiscountSummary struct {
	Total      int               `json:"total"`
	Active     int               `json:"active"`
	Categories []CategorySummary `json:"categories"`
}

// Identity is the signed-in user passed through to the shell
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Notices mirror the toasts the shell shows after an action
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeError   NoticeLevel = "error"
)

type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// NewNotice builds a notice
func NewNotice(level NoticeLevel, message string) Notice {
	return Notice{Level: level, Message: message}
}

// TaskToggledNotice is the notice shown after flipping a task's status
func TaskToggledNotice(task entities.Task) Notice {
	if task.Status == entities.TaskStatusCompleted {
		return NewNotice(NoticeSuccess, "Task completed! Great job!")
	}
	return NewNotice(NoticeInfo, "Task marked as active")
}

// ContactSearchNotice reports how many contacts a search matched
func ContactSearchNotice(count int) Notice {
	switch count {
	case 0:
		return NewNotice(NoticeInfo, "No contacts found")
	case 1:
		return NewNotice(NoticeInfo, "Found 1 contact")
	}
	return NewNotice(NoticeInfo, fmt.Sprintf("Found %d contacts", count))
}
