package common

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two failure classes that abort a call. Degraded
// content and per-document extraction failures are reported as notices on the
// result instead.
var (
	ErrValidation        = errors.New("validation error")
	ErrSourceUnavailable = errors.New("source unavailable")
)

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// SourceError reports that the metric store or the document corpus could not
// be reached or read.
type SourceError struct {
	Source string // "metric store", "document corpus"
	Op     string
	Err    error
}

func NewSourceError(source, op string, err error) *SourceError {
	return &SourceError{Source: source, Op: op, Err: err}
}

func (e *SourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failed", e.Source, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsSourceUnavailable reports whether err is (or wraps) a source failure.
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}
