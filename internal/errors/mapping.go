package errors

import (
	stdErrors "errors"
	"fmt"
)

// MappingError is returned when a catalog payload cannot be translated into a domain entity.
type MappingError struct {
	Key string
	Err error
}

func (e *MappingError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("mapping failed: %v", e.Err)
	}
	return fmt.Sprintf("mapping %s failed: %v", e.Key, e.Err)
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

// NewMappingError creates a MappingError for the record identified by key.
func NewMappingError(key string, err error) *MappingError {
	return &MappingError{Key: key, Err: err}
}

// IsMappingError reports whether err is a MappingError (even when wrapped).
func IsMappingError(err error) bool {
	var me *MappingError
	return stdErrors.As(err, &me)
}
