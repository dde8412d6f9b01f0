package apperror

import "fmt"

// AuthorizationError: caller lacks institution membership or the required
// role for the requested agent type. Never retried, no session side effects.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization failed: %s", e.Reason)
}

func NewAuthorization(reason string) error {
	return &AuthorizationError{Reason: reason}
}

// ValidationError: malformed or missing request fields.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// MissingConfigurationError: ranking requested without a resolvable intake
// limit (neither supplied on the request nor configured on the course).
type MissingConfigurationError struct {
	Key string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Key)
}

func NewMissingConfiguration(key string) error {
	return &MissingConfigurationError{Key: key}
}

// PersistenceError wraps a datastore write failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// ExecutionFailure: the dispatched execution unit returned a non-success
// result or the transport call failed. Always terminal for the session.
type ExecutionFailure struct {
	AgentType string
	Err       error
}

func (e *ExecutionFailure) Error() string {
	return fmt.Sprintf("execution failed for agent %s: %v", e.AgentType, e.Err)
}

func (e *ExecutionFailure) Unwrap() error {
	return e.Err
}

func NewExecutionFailure(agentType string, err error) error {
	return &ExecutionFailure{AgentType: agentType, Err: err}
}

// ConflictError: a stale-version write was rejected (concurrent chat
// continuation). The caller should re-read and retry.
type ConflictError struct {
	Resource string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s was modified concurrently", e.Resource)
}

func NewConflict(resource string) error {
	return &ConflictError{Resource: resource}
}

// TimeoutError: a running session exceeded its execution deadline.
type TimeoutError struct {
	Resource string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout: %s exceeded its deadline", e.Resource)
}

func NewTimeout(resource string) error {
	return &TimeoutError{Resource: resource}
}

// NotFoundError: the requested entity does not exist or is outside the
// caller's institution scope.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}
