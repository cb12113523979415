// Package errors provides the error types shared by the classifier, the session
// indexer and the data service clients
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	ErrInvalidTemplate = errors.New("heuristic: template must be a valid format string")
	ErrInvalidOptions  = errors.New("heuristic: invalid index options")
	ErrProjectNotFound = errors.New("heuristic: project not found")
	ErrEmptyIndex      = errors.New("heuristic: no sessions found for project")
	ErrUnknownProject  = errors.New("heuristic: no heuristic registered for project")
)

// SessionNotIndexedError is returned when a session label was never seen while
// the session index was built.
type SessionNotIndexedError struct {
	Label   string
	Project string
}

func (e *SessionNotIndexedError) Error() string {
	if e.Project == "" {
		return fmt.Sprintf("session %q not indexed", e.Label)
	}
	return fmt.Sprintf("session %q not indexed for project %s", e.Label, e.Project)
}

// NewSessionNotIndexedError creates a new lookup error
func NewSessionNotIndexedError(project, label string) *SessionNotIndexedError {
	return &SessionNotIndexedError{
		Project: project,
		Label:   label,
	}
}

// ServiceError represents a failed call to the remote data service.
// StatusCode is zero when no HTTP response was received.
type ServiceError struct {
	Op         string
	StatusCode int
	Msg        string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("data service %s failed (status: %d): %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("data service %s failed: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("data service %s failed (status: %d): %s", e.Op, e.StatusCode, e.Msg)
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a transport-level service error
func NewServiceError(op string, err error) *ServiceError {
	return &ServiceError{
		Op:  op,
		Err: err,
	}
}

// NewStatusError creates a service error from a non-success HTTP response
func NewStatusError(op string, status int, msg string) *ServiceError {
	return &ServiceError{
		Op:         op,
		StatusCode: status,
		Msg:        msg,
	}
}

// IsNotFound returns true if the service answered 404
func (e *ServiceError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized returns true if the service rejected the credentials
func (e *ServiceError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
