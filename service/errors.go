package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrNotFound covers both a missing task and a task owned by someone
// else, so callers cannot tell which ids exist.
var ErrNotFound = errors.New("task not found")

// ValidationError carries a client-fixable, human-readable message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InternalError wraps an unexpected store failure. Its message is the
// underlying error's message.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

var validate = validator.New()

// Validate checks the struct tags of v and turns the first failure into
// a *ValidationError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	return &ValidationError{Message: describe(verrs[0])}
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "alphanum":
		return field + " must contain only letters and digits"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, strings.ReplaceAll(fe.Tag(), "_", " "))
	}
}
