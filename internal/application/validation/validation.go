package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taskflow/core/internal/domain/entities"
)

var emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// labels are the human names used in messages, keyed by JSON field name
var labels = map[string]string{
	"title":       "Title",
	"description": "Description",
	"dueDate":     "Due date",
	"priority":    "Priority",
	"status":      "Status",
	"name":        "Name",
	"email":       "Email",
	"phone":       "Phone number",
	"role":        "Role",
	"department":  "Department",
}

// Validator checks request payloads at the API boundary
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the custom tags registered
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return entities.IsDepartment(fl.Field().String())
	})
	_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return entities.Priority(fl.Field().String()).IsValid()
	})

	return &Validator{validate: v}
}

// Validate satisfies echo.Validator. Failures come back as
// *entities.ValidationError with one entry per rejected field.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &entities.ValidationError{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	label, ok := labels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required", "notblank":
		return label + " is required"
	case "emailshape":
		return label + " is invalid"
	case "datetime":
		return label + " must be a date (YYYY-MM-DD)"
	case "priority":
		return label + " must be low, medium or high"
	case "department":
		return label + " must be one of " + strings.Join(entities.Departments, ", ")
	case "oneof":
		return label + " must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return label + " is invalid"
}
