package utils

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrorRecordNotFound = errors.New("record not found")

// NotFoundError reports a referenced resource that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrorRecordNotFound
}

// ValidationError reports a malformed or disallowed input value.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}

// PersistenceError wraps a datastore failure with the operation and table it happened on.
type PersistenceError struct {
	Op    string
	Table string
	Code  string
	Err   error
}

func (e *PersistenceError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Op, e.Table)
	if e.Code != "" {
		msg += " (sqlstate " + e.Code + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewNotFoundError(resource string, id string) error {
	return errors.WithStack(&NotFoundError{Resource: resource, ID: id})
}

func NewValidationError(field string, value string, message string) error {
	return errors.WithStack(&ValidationError{Field: field, Value: value, Message: message})
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// ErrorKind names the taxonomy bucket an error falls in, for log fields.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsNotFound(err):
		return "not_found"
	case IsValidation(err):
		return "validation"
	case IsPersistence(err):
		return "persistence"
	default:
		return "internal"
	}
}
