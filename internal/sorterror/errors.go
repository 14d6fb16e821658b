// Package sorterror defines the typed errors returned across component
// boundaries.
package sorterror

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by document stores when an id or name does not resolve.
var ErrNotFound = errors.New("not found")

// CollaboratorError represents a failed call to the remote document store.
type CollaboratorError struct {
	Operation string
	Target    string
	Err       error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Target, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// NewCollaboratorError wraps err for operation on target.
func NewCollaboratorError(operation, target string, err error) *CollaboratorError {
	return &CollaboratorError{Operation: operation, Target: target, Err: err}
}

// ImportError represents a rejected manual-mapping import. The cache is left
// untouched when it is returned.
type ImportError struct {
	Source string
	Entry  int // index of the offending entry, -1 when the document itself is invalid
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	msg := fmt.Sprintf("manual mapping import from '%s' failed", e.Source)
	if e.Entry >= 0 {
		msg += fmt.Sprintf(" at entry %d", e.Entry)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// StoreError represents a failure loading or saving persisted state.
type StoreError struct {
	Operation string
	Path      string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("state %s failed for '%s': %v", e.Operation, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err for operation on path.
func NewStoreError(operation, path string, err error) *StoreError {
	return &StoreError{Operation: operation, Path: path, Err: err}
}

// ExtractionError represents a text-extraction failure. Extractors used by
// the classifier swallow it and return empty text.
type ExtractionError struct {
	Extractor string
	Reason    string
	Err       error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: text extraction failed: %s: %v", e.Extractor, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: text extraction failed: %s", e.Extractor, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
