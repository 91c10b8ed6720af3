package model

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business failures, distinct from infrastructure
// errors. Services return them; only the HTTP layer maps them to status codes.
var (
	// ErrNotFound is returned when a document, entity or job does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a job is asked to move to a
	// state its current state does not allow.
	ErrInvalidTransition = errors.New("invalid job transition")
)

// ValidationError reports every violation found in a payload at once, so a
// caller can fix a request in one round trip.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// ConversionError means a stored file could not be turned into an
// analyzable image.
type ConversionError struct {
	MIME string
	Err  error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("convert %q: %v", e.MIME, e.Err)
	}
	return fmt.Sprintf("convert %q: unsupported content type", e.MIME)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// ParseError means the classifier answered but its output could not be
// turned into a structured result.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse classification: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// AnalysisError wraps any failure of the analysis sequence for one file.
// An underlying ConversionError or ParseError stays reachable via errors.As.
type AnalysisError struct {
	FileID string
	Err    error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analyze file %s: %v", e.FileID, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// PersistenceError wraps a failure while writing a document and its
// entities to the relational store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
