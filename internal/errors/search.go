package errors

import (
	stdErrors "errors"
	"fmt"
)

// SearchError wraps a failed call to the catalog search endpoint together with
// the query that triggered it.
type SearchError struct {
	Query  string
	Reason string
	Err    error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search for '%s' failed. %s: %v", e.Query, e.Reason, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// NewSearchError creates a SearchError.
func NewSearchError(query, reason string, err error) *SearchError {
	return &SearchError{Query: query, Reason: reason, Err: err}
}

// IsSearchError reports whether err is a SearchError (even when wrapped).
func IsSearchError(err error) bool {
	var se *SearchError
	return stdErrors.As(err, &se)
}
