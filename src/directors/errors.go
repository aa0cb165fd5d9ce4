package directors

import (
	"fmt"
	"strings"
)

// The error taxonomy surfaced to callers of the field service.
//
// ValidationError is client-detectable and blocks the operation before any
// write. FetchError and PersistenceError wrap remote-store failures and
// compose code/detail/hint into the message the way the admin UI expects.
// Schema synchronizer failures are never surfaced as errors; they are
// logged at the call site and swallowed.

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

type FetchError struct {
	Op     string
	Detail string
	Hint   string
	Err    error
}

func (e *FetchError) Error() string {
	return composeStoreError("Failed to fetch "+e.Op, e.Err, e.Detail, e.Hint)
}

func (e *FetchError) Unwrap() error { return e.Err }

type PersistenceError struct {
	Op     string
	Detail string
	Hint   string
	Err    error
}

func (e *PersistenceError) Error() string {
	return composeStoreError("Failed to save "+e.Op, e.Err, e.Detail, e.Hint)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// composeStoreError builds the human-readable description from whatever
// the underlying fault carries: message, then details in parentheses, then
// the hint.
func composeStoreError(msg string, err error, detail, hint string) string {
	if err != nil {
		msg += ": " + err.Error()
	}
	if detail != "" {
		msg += fmt.Sprintf(" (%s)", detail)
	}
	if hint != "" {
		msg += " - Hint: " + hint
	}
	return msg
}

// storeHint translates well-known constraint failures into the messages
// shown to operators.
func storeHint(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return "This record already exists"
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return "Cannot delete this record as it is referenced by other data"
	case strings.Contains(msg, "attempt to write a readonly database"):
		return "You do not have permission to perform this action"
	case strings.Contains(msg, "no such table"):
		return "Run the database initialization before managing fields"
	default:
		return ""
	}
}
