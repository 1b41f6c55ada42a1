// Package errors provides consistent error types for the Rewind history engine.
// It defines the engine taxonomy (CommandRejected, ExecuteFailed, UndoFailed,
// RedoFailed, SerializationError) alongside two general categories: UserError
// (fixable by the user) and SystemError (environment or storage issues).
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common conditions.
var (
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNothingToRedo   = errors.New("nothing to redo")
	ErrStoreNotFound   = errors.New("store not registered")
	ErrEntityNotFound  = errors.New("entity not found")
	ErrEntityExists    = errors.New("entity already exists")
	ErrStoreImmovable  = errors.New("store does not support move")
	ErrEmptyBatch      = errors.New("batch contains no commands")
	ErrClosed          = errors.New("history context is closed")
	ErrDatabaseLocked  = errors.New("database locked by another process")
	ErrInvalidSnapshot = errors.New("invalid snapshot payload")
)

// CommandRejected indicates a command's precondition check failed.
// Nothing was executed and nothing was recorded.
type CommandRejected struct {
	Description string // the rejected command's description
	Reason      string // why the precondition failed (optional)
}

func (e *CommandRejected) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("command rejected: %s: %s", e.Description, e.Reason)
	}
	return fmt.Sprintf("command rejected: %s", e.Description)
}

// ExecuteFailed indicates a command's forward mutation threw.
// Nothing was recorded on the undo stack.
type ExecuteFailed struct {
	Description string
	Cause       error
}

func (e *ExecuteFailed) Error() string {
	return fmt.Sprintf("execute failed: %s: %v", e.Description, e.Cause)
}

func (e *ExecuteFailed) Unwrap() error {
	return e.Cause
}

// UndoFailed indicates a command's reversal threw. The entry was restored
// to the undo stack and observable state is unchanged.
type UndoFailed struct {
	Description string
	Cause       error
}

func (e *UndoFailed) Error() string {
	return fmt.Sprintf("undo failed: %s: %v", e.Description, e.Cause)
}

func (e *UndoFailed) Unwrap() error {
	return e.Cause
}

// RedoFailed indicates a command's re-execution threw. The entry was restored
// to the redo stack and observable state is unchanged.
type RedoFailed struct {
	Description string
	Cause       error
}

func (e *RedoFailed) Error() string {
	return fmt.Sprintf("redo failed: %s: %v", e.Description, e.Cause)
}

func (e *RedoFailed) Unwrap() error {
	return e.Cause
}

// SerializationError indicates a checkpoint snapshot contained a structure
// the safe serializer could not encode even after its substitutions.
type SerializationError struct {
	Path  string // dotted path to the offending value (best effort)
	Cause error
}

func (e *SerializationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("serialization error at %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("serialization error: %v", e.Cause)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// UserError represents an error that the user can fix.
// Examples: invalid input, missing required arguments, unknown entity keys.
type UserError struct {
	Message    string // What happened
	Suggestion string // How to fix it
	Field      string // The field/input that caused the error (optional)
	Value      string // The invalid value (optional)
}

func (e *UserError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s: '%s'", e.Message, e.Value)
	}
	return e.Message
}

// NewUserError creates a new UserError.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{Message: message, Suggestion: suggestion}
}

// NewUserErrorWithField creates a new UserError with field context.
func NewUserErrorWithField(field, value, message, suggestion string) *UserError {
	return &UserError{Message: message, Field: field, Value: value, Suggestion: suggestion}
}

// SystemError represents a system-level error the user cannot directly fix.
/// Examples: disk full, database corruption, lock contention.
type SystemError struct {
	Message string // What happened
	Cause   error  // The underlying error
	Op      string // The operation that failed (optional)
}

func (e *SystemError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s during %s", e.Message, e.Op)
	}
	return e.Message
}

func (e *SystemError) Unwrap() error {
	return e.Cause
}

// NewSystemError creates a new SystemError.
func NewSystemError(message string, cause error) *SystemError {
	return &SystemError{Message: message, Cause: cause}
}

// NewSystemErrorWithOp creates a new SystemError with operation context.
func NewSystemErrorWithOp(op, message string, cause error) *SystemError {
	return &SystemError{Message: message, Cause: cause, Op: op}
}

// IsRejection reports whether err is a precondition rejection.
func IsRejection(err error) bool {
	var r *CommandRejected
	return errors.As(err, &r)
}

// IsUserError reports whether err is fixable by the user.
func IsUserError(err error) bool {
	var u *UserError
	if errors.As(err, &u) {
		return true
	}
	return IsRejection(err)
}

// Is, As and Unwrap re-export the standard library helpers so callers
// importing this package do not also need the stdlib errors package.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func Unwrap(err error) error { return errors.Unwrap(err) }

// New creates a basic error. Re-exported for convenience.
func New(text string) error { return errors.New(text) }
