package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneAndWrapMatchSentinel(t *testing.T) {
	cloned := Clone(ErrValidation, "unknown report section \"hourly\"")
	assert.True(t, errors.Is(cloned, ErrValidation))
	assert.False(t, errors.Is(cloned, ErrInvalidRange))
	assert.Equal(t, "validation failed", ErrValidation.Message, "sentinel is not mutated")

	cause := fmt.Errorf("dial tcp: refused")
	wrapped := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "failed to load scans")
	assert.True(t, errors.Is(wrapped, ErrInternal))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, "failed to load scans: dial tcp: refused", wrapped.Error())
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	nested := fmt.Errorf("report: %w", ErrDatasetNotLoaded)
	assert.Equal(t, http.StatusServiceUnavailable, FromError(nested).Status)

	plain := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
}
