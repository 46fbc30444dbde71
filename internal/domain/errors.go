package domain

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a referenced entity does not exist
type NotFoundError struct {
	ID   string
	Kind string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given entity kind and id
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// InvalidStateError indicates an operation is not permitted given the
// entity's current status or state
type InvalidStateError struct {
	Current string
	Kind    string
	Op      string
	Want    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s: %s is %q, expected %q", e.Op, e.Kind, e.Current, e.Want)
}

// NewInvalidStateError creates an InvalidStateError
func NewInvalidStateError(kind, current, want, op string) *InvalidStateError {
	return &InvalidStateError{Kind: kind, Current: current, Want: want, Op: op}
}

// ValidationError indicates malformed or missing required input
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidationError creates a ValidationError with a formatted message
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// GitError indicates the git client reported a failure. The originating
// command and captured output are carried so the caller can retry correctly.
type GitError struct {
	Cmd    string
	Op     string
	Output string
}

func (e *GitError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("git %s failed (%s): %s", e.Op, e.Cmd, e.Output)
	}
	return fmt.Sprintf("git %s failed (%s)", e.Op, e.Cmd)
}

// NewGitError creates a GitError for a failed git operation
func NewGitError(op, cmd, output string) *GitError {
	return &GitError{Op: op, Cmd: cmd, Output: output}
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidState reports whether err is an InvalidStateError
func IsInvalidState(err error) bool {
	var is *InvalidStateError
	return errors.As(err, &is)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsGitFailure reports whether err is a GitError
func IsGitFailure(err error) bool {
	var g *GitError
	return errors.As(err, &g)
}
