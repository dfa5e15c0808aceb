package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMatchesByCode(t *testing.T) {
	err := Clone(ErrCapacityExceeded, "section CS-101 is full")
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestCloneOverridesMessageOnly(t *testing.T) {
	err := Clone(ErrNotFound, "student not found")
	assert.Equal(t, "student not found", err.Message)
	assert.Equal(t, ErrNotFound.Code, err.Code)
	assert.Equal(t, ErrNotFound.Status, err.Status)
	// The shared sentinel stays untouched.
	assert.Equal(t, "resource not found", ErrNotFound.Message)

	kept := Clone(ErrConflict, "")
	assert.Equal(t, ErrConflict.Message, kept.Message)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "failed to reach database")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFromError(t *testing.T) {
	appErr := FromError(Clone(ErrValidation, ""))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrValidation.Code, appErr.Code)

	plain := FromError(fmt.Errorf("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)

	assert.Nil(t, FromError(nil))
}

func TestWrappedErrorMatchesSentinel(t *testing.T) {
	inner := Clone(ErrDuplicateEnrollment, "")
	outer := fmt.Errorf("enroll: %w", inner)
	assert.True(t, errors.Is(outer, ErrDuplicateEnrollment))
	assert.Equal(t, ErrDuplicateEnrollment.Code, FromError(outer).Code)
}
