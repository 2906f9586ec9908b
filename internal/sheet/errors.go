package sheet

import (
	"errors"
	"fmt"
)

// ErrNotFound matches any NotFoundError via errors.Is.
var ErrNotFound = errors.New("gemstone not found")

// NotFoundError reports that no record matches a reference.
type NotFoundError struct {
	Reference string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no gemstone found with reference %q", e.Reference)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConnectionError reports a failure fetching the spreadsheet export, either a
// transport error or a non-2xx response.
type ConnectionError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *ConnectionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("database connection error (status: %d)", e.StatusCode)
	}
	if e.Err != nil {
		return "database connection error: " + e.Err.Error()
	}
	return "database connection error"
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
