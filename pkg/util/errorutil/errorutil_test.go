package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_PassesDomainErrorThrough(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewConflict("duplicate", nil))

	domainErr := ToDomainError(err)

	require.NotNil(t, domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)
}

func TestToDomainError_MapsNoRowsToNotFound(t *testing.T) {
	domainErr := ToDomainError(fmt.Errorf("get release: %w", pgx.ErrNoRows))

	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	assert.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
}

func TestToDomainError_AuditTaxonomy(t *testing.T) {
	integrity := ToDomainError(&IntegrityError{Model: "contact", ObjectID: 7, TypeTag: "person", Err: pgx.ErrNoRows})
	assert.Equal(t, "INTEGRITY_ERROR", integrity.Code)
	assert.Equal(t, http.StatusInternalServerError, integrity.HTTPStatus)
	assert.Equal(t, int64(7), integrity.Details["object_id"])

	commit := ToDomainError(&CommitError{Err: errors.New("serialization failure")})
	assert.Equal(t, "COMMIT_FAILED", commit.Code)
}

func TestIntegrityError_DoesNotReadAsNotFound(t *testing.T) {
	err := &IntegrityError{Model: "contact", ObjectID: 1, TypeTag: "person", Err: pgx.ErrNoRows}

	assert.True(t, errors.Is(err, pgx.ErrNoRows))
	assert.Equal(t, "INTEGRITY_ERROR", ToDomainError(err).Code)
}

func TestToDomainError_Nil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}
