package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	assert.True(t, errors.Is(ErrAlreadyRegistered, ErrAlreadyExists))
	assert.True(t, errors.Is(ErrNotRegistered, ErrNotFound))
	assert.True(t, errors.Is(ErrPermissionDenied, ErrForbidden))
	assert.True(t, errors.Is(ErrReplyTimeout, ErrTimeout))
	assert.False(t, errors.Is(ErrAlreadyRegistered, ErrForbidden))
}

func TestDomainError_WrappedCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError("artifact", "Rehost", ErrExternalService, "fetch failed", cause)

	assert.True(t, errors.Is(err, ErrExternalService))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "artifact.Rehost")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDomainError_SurvivesFmtWrap(t *testing.T) {
	wrapped := fmt.Errorf("handling submit: %w", ErrMissingAttachment)
	assert.True(t, errors.Is(wrapped, ErrInvalidInput))
}

func TestIsUserFacing(t *testing.T) {
	assert.True(t, IsUserFacing(ErrNotRegistered))
	assert.True(t, IsUserFacing(ErrMissingAttachment))
	assert.True(t, IsUserFacing(ErrUploadFailure))
	assert.False(t, IsUserFacing(errors.New("pgx: connection reset")))
}
