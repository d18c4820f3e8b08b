// Package errorutil maps storage, audit and validation failures onto the
// error envelope returned by the HTTP API.
package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes of the API envelope.
const (
	CodeValidation   = "VALIDATION_FAILED"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeConflict     = "CONFLICT"
	CodeIntegrity    = "INTEGRITY_ERROR"
	CodeCommit       = "COMMIT_FAILED"
	CodeInternal     = "INTERNAL_ERROR"
)

// DomainError is an error with an API code and HTTP status attached.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

// NewNotFound names the missing resource; details usually carry its key.
func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return NewDomainError(CodeNotFound, resource+" not found", http.StatusNotFound, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewConflict reports a unique or foreign key violation.
func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	de := NewDomainError(CodeInternal, "internal server error", http.StatusInternalServerError, nil)
	de.Err = err
	return de
}

// IsNotFound reports whether err means a row lookup came back empty.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

// ToDomainError classifies err. Anything unrecognized becomes an internal
// error that keeps err for logging but never exposes it to clients.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}

	var (
		domainErr    *DomainError
		integrityErr *IntegrityError
		commitErr    *CommitError
	)
	switch {
	case errors.As(err, &domainErr):
		return domainErr
	case errors.As(err, &integrityErr):
		de := NewDomainError(CodeIntegrity, "stored record is inconsistent", http.StatusInternalServerError,
			map[string]any{"model": integrityErr.Model, "object_id": integrityErr.ObjectID})
		de.Err = err
		return de
	case errors.As(err, &commitErr):
		de := NewDomainError(CodeCommit, "changes could not be committed", http.StatusInternalServerError, nil)
		de.Err = err
		return de
	case IsNotFound(err):
		de := NewDomainError(CodeNotFound, "resource not found", http.StatusNotFound, map[string]any{})
		de.Err = err
		return de
	}
	return NewInternalError(err).(*DomainError)
}
