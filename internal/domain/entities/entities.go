package entities

import (
	"slices"
	"strings"
	"time"
)

// Enums and types
type TaskStatus string

const (
	TaskStatusActive    TaskStatus = "active"
	TaskStatusCompleted TaskStatus = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Departments a contact can belong to
var Departments = []string{
	"Engineering",
	"Product",
	"Design",
	"Marketing",
	"Sales",
	"Operations",
	"HR",
	"Finance",
}

// Task represents a to-do item
type Task struct {
	ID          int        `json:"Id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     Date       `json:"dueDate"`
	Priority    Priority   `json:"priority"`
	Status      TaskStatus `json:"status"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TaskDraft holds the client-supplied fields of a new task
type TaskDraft struct {
	Title       string
	Description string
	DueDate     Date
	Priority    Priority
	Tags        []string
}

// TaskPatch holds the fields to merge over an existing task. Nil fields are
// left untouched. ID is accepted from clients but never applied.
type TaskPatch struct {
	ID          *int
	Title       *string
	Description *string
	DueDate     *Date
	Priority    *Priority
	Status      *TaskStatus
	Tags        *[]string
}

// Contact represents a person in the team directory
type Contact struct {
	ID         int       `json:"Id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	AddedAt    time.Time `json:"addedAt"`
}

// ContactDraft holds the client-supplied fields of a new contact
type ContactDraft struct {
	Name       string
	Email      string
	Phone      string
	Role       string
	Department string
}

// ContactPatch holds the fields to merge over an existing contact
type ContactPatch struct {
	ID         *int
	Name       *string
	Email      *string
	Phone      *string
	Role       *string
	Department *string
}

// Discount represents a partner offer
type Discount struct {
	ID          int    `json:"Id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code"`
	Discount    string `json:"discount"`
	ExpiryDate  Date   `json:"expiryDate"`
	Category    string `json:"category"`
	URL         string `json:"url"`
}

// Business logic methods for TaskStatus
func (s TaskStatus) IsValid() bool {
	return s == TaskStatusActive || s == TaskStatusCompleted
}

// Toggle returns the opposite status
func (s TaskStatus) Toggle() TaskStatus {
	if s == TaskStatusActive {
		return TaskStatusCompleted
	}
	return TaskStatusActive
}

func (p Priority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Rank orders priorities, high first
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// IsDepartment reports whether name is one of Departments
func IsDepartment(name string) bool {
	return slices.Contains(Departments, name)
}

// Clone returns a copy that shares no memory with t
func (t Task) Clone() Task {
	if t.Tags != nil {
		t.Tags = slices.Clone(t.Tags)
	}
	return t
}

// IsOverdue checks if the task was due before today and is still open
func (t Task) IsOverdue(now time.Time) bool {
	return t.Status != TaskStatusCompleted && t.DueDate.Before(DateOf(now).Time)
}

// NewTask builds the stored form of a draft
func NewTask(id int, d TaskDraft, now time.Time) Task {
	t := Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Priority:    d.Priority,
		Status:      TaskStatusActive,
		Tags:        slices.Clone(d.Tags),
		CreatedAt:   now,
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	return t
}

// Apply merges p over t, keeping t's identifier
func (p TaskPatch) Apply(t Task) Task {
	out := t.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.DueDate != nil {
		out.DueDate = *p.DueDate
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Tags != nil {
		out.Tags = slices.Clone(*p.Tags)
	}
	out.ID = t.ID
	return out
}

// NewContact builds the stored form of a draft
func NewContact(id int, d ContactDraft, now time.Time) Contact {
	return Contact{
		ID:         id,
		Name:       d.Name,
		Email:      d.Email,
		Phone:      d.Phone,
		Role:       d.Role,
		Department: d.Department,
		AddedAt:    now,
	}
}

// Apply merges p over c, keeping c's identifier
func (p ContactPatch) Apply(c Contact) Contact {
	out := c
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	if p.Phone != nil {
		out.Phone = *p.Phone
	}
	if p.Role != nil {
		out.Role = *p.Role
	}
	if p.Department != nil {
		out.Department = *p.Department
	}
	out.ID = c.ID
	return out
}

// Matches reports whether query occurs, ignoring case, in the name, email,
// role or department. An empty query matches everything.
func (c Contact) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Email), q) ||
		strings.Contains(strings.ToLower(c.Role), q) ||
		strings.Contains(strings.ToLower(c.Department), q)
}

// IsExpired checks if the offer's expiry date is not after now
func (d Discount) IsExpired(now time.Time) bool {
	return !d.ExpiryDate.After(now)
}

// InCategory compares categories ignoring case
func (d Discount) InCategory(category string) bool {
	return strings.EqualFold(d.Category, category)
}

// SortByExpiry orders discounts soonest-expiring first, ties by identifier.
func SortByExpiry(discounts []Discount) {
	slices.SortStableFunc(discounts, func(a, b Discount) int {
		if c := a.ExpiryDate.Compare(b.ExpiryDate.Time); c != 0 {
			return c
		}
		return a.ID - b.ID
	})
}

// SortForDisplay orders tasks by priority, highest first, then by due date.
func SortForDisplay(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		if a.Priority.Rank() != b.Priority.Rank() {
			return b.Priority.Rank() - a.Priority.Rank()
		}
		return a.DueDate.Compare(b.DueDate.Time)
	})
}
