package errors

import (
	stdErrors "errors"
	"fmt"
)

// Resource kinds reported by NotFoundError.
const (
	ResourceAuthor  = "author"
	ResourceWork    = "work"
	ResourceEdition = "edition"
	ResourceBook    = "book"
)

// NotFoundError is returned when the catalog confirms that a resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given resource kind and ID.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFound reports whether err is a NotFoundError (even when wrapped).
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return stdErrors.As(err, &nf)
}
