package repository

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/taskflow/core/internal/domain/entities"
)

// timestampLayout is fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

var scanLayouts = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	entities.DateLayout,
}

func parseStoredTime(v interface{}) (time.Time, error) {
	var s string
	switch x := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return x, nil
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return time.Time{}, fmt.Errorf("cannot scan %T into a time", v)
	}
	for _, layout := range scanLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised stored time %q", s)
}

// dbDate is a calendar date column
type dbDate struct{ entities.Date }

func (d *dbDate) Scan(v interface{}) error {
	t, err := parseStoredTime(v)
	if err != nil {
		return err
	}
	if t.IsZero() {
		d.Date = entities.Date{}
		return nil
	}
	d.Date = entities.DateOf(t)
	return nil
}

func (d dbDate) Value() (driver.Value, error) {
	return d.Date.Format(entities.DateLayout), nil
}

// dbTimestamp is an instant column, stored in UTC
type dbTimestamp struct{ time.Time }

func (ts *dbTimestamp) Scan(v interface{}) error {
	t, err := parseStoredTime(v)
	if err != nil {
		return err
	}
	ts.Time = t.UTC()
	return nil
}

func (ts dbTimestamp) Value() (driver.Value, error) {
	return ts.Time.UTC().Format(timestampLayout), nil
}

// taskRow is the storage form of entities.Task
type taskRow struct {
	ID          int         `db:"id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	DueDate     dbDate      `db:"due_date"`
	Priority    string      `db:"priority"`
	Status      string      `db:"status"`
	Tags        string      `db:"tags"`
	CreatedAt   dbTimestamp `db:"created_at"`
}

// contactRow is the storage form of entities.Contact
type contactRow struct {
	ID         int         `db:"id"`
	Name       string      `db:"name"`
	Email      string      `db:"email"`
	Phone      string      `db:"phone"`
	Role       string      `db:"role"`
	Department string      `db:"department"`
	AddedAt    dbTimestamp `db:"added_at"`
}

// discountRow is the storage form of entities.Discount
type discountRow struct {
	ID          int    `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Code        string `db:"code"`
	Discount    string `db:"discount"`
	ExpiryDate  dbDate `db:"expiry_date"`
	Category    string `db:"category"`
	URL         string `db:"url"`
}

const (
	taskColumns     = "id, title, description, due_date, priority, status, tags, created_at"
	contactColumns  = "id, name, email, phone, role, department, added_at"
	discountColumns = "id, title, description, code, discount, expiry_date, category, url"
)

// fieldNames maps storage columns and named constraints back to API field names
var fieldNames = map[string]string{
	"title":                 "title",
	"description":           "description",
	"due_date":              "dueDate",
	"priority":              "priority",
	"status":                "status",
	"tags":                  "tags",
	"created_at":            "createdAt",
	"name":                  "name",
	"email":                 "email",
	"phone":                 "phone",
	"role":                  "role",
	"department":            "department",
	"added_at":              "addedAt",
	"code":                  "code",
	"discount":              "discount",
	"expiry_date":           "expiryDate",
	"category":              "category",
	"url":                   "url",
	"tasks_title_check":     "title",
	"tasks_priority_check":  "priority",
	"tasks_status_check":    "status",
	"contacts_name_check":   "name",
	"contacts_email_check":  "email",
	"discounts_title_check": "title",
}

// fieldName resolves a column, "table.column" or constraint name
func fieldName(ref string) string {
	if i := strings.LastIndexByte(ref, '.'); i >= 0 {
		ref = ref[i+1:]
	}
	if f, ok := fieldNames[ref]; ok {
		return f
	}
	return ref
}

func joinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(strings.ReplaceAll(t, ",", " "))
		if t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, ",")
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func taskToStorage(t entities.Task) taskRow {
	return taskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     dbDate{t.DueDate},
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		Tags:        joinTags(t.Tags),
		CreatedAt:   dbTimestamp{t.CreatedAt},
	}
}

func taskFromStorage(r taskRow) entities.Task {
	return entities.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate.Date,
		Priority:    entities.Priority(r.Priority),
		Status:      entities.TaskStatus(r.Status),
		Tags:        splitTags(r.Tags),
		CreatedAt:   r.CreatedAt.Time,
	}
}

func contactToStorage(c entities.Contact) contactRow {
	return contactRow{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Role:       c.Role,
		Department: c.Department,
		AddedAt:    dbTimestamp{c.AddedAt},
	}
}

func contactFromStorage(r contactRow) entities.Contact {
	return entities.Contact{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Role:       r.Role,
		Department: r.Department,
		AddedAt:    r.AddedAt.Time,
	}
}

func discountToStorage(d entities.Discount) discountRow {
	return discountRow{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Code:        d.Code,
		Discount:    d.Discount,
		ExpiryDate:  dbDate{d.ExpiryDate},
		Category:    d.Category,
		URL:         d.URL,
	}
}

func discountFromStorage(r discountRow) entities.Discount {
	return entities.Discount{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Code:        r.Code,
		Discount:    r.Discount,
		ExpiryDate:  r.ExpiryDate.Date,
		Category:    r.Category,
		URL:         r.URL,
	}
}
