package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"

	"github.com/taskflow/core/internal/domain/entities"
)

const sqliteConstraint = 19

// classify turns a driver error from a write into the domain taxonomy:
// rejected values become a ValidationError, anything else is a transport
// failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "22", "23":
			ref := pqErr.Column
			if ref == "" {
				ref = pqErr.Constraint
			}
			return rejected(fieldName(ref), pqErr.Message)
		}
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code()&0xff == sqliteConstraint {
		return rejected(sqliteConstraintField(liteErr.Error()), liteErr.Error())
	}

	return fmt.Errorf("%s: %w: %w", op, entities.ErrTransport, err)
}

func rejected(field, detail string) error {
	if field == "" {
		field = "record"
	}
	return &entities.ValidationError{Fields: []entities.FieldError{{
		Field:   field,
		Message: fmt.Sprintf("%s was rejected by the records store: %s", field, detail),
	}}}
}

// sqliteConstraintField extracts the column or constraint name from messages
// such as "NOT NULL constraint failed: tasks.title" or
// "CHECK constraint failed: tasks_title_check".
func sqliteConstraintField(msg string) string {
	const marker = "constraint failed: "
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	ref := msg[i+len(marker):]
	if j := strings.IndexAny(ref, " ("); j >= 0 {
		ref = ref[:j]
	}
	return fieldName(ref)
}
