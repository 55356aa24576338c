package errutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryCause(t *testing.T) {
	cause := errors.New("record not found")
	err := NotFound("task not found", cause, WithField("id", "missing"))

	var be BaseError
	require.ErrorAs(t, err, &be)
	require.Equal(t, StatusNotFound, be.Status())
	require.ErrorIs(t, err, cause)
	require.Len(t, be.Details, 1)
	require.Contains(t, err.Error(), "record not found")
}

func TestStatusOfWrapped(t *testing.T) {
	err := fmt.Errorf("update task: %w", ValidationFailed("hours must be positive", nil))
	require.Equal(t, StatusValidationFailed, StatusOf(err))
	require.True(t, Is(err, StatusValidationFailed))
	require.Equal(t, StatusInternal, StatusOf(errors.New("boom")))
	require.Equal(t, CoreStatus(""), StatusOf(nil))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[CoreStatus]int{
		StatusNotFound:               http.StatusNotFound,
		StatusValidationFailed:       http.StatusBadRequest,
		StatusDependencyNotSatisfied: http.StatusUnprocessableEntity,
		StatusConflict:               http.StatusConflict,
		StatusForbidden:              http.StatusForbidden,
		StatusUnknown:                http.StatusInternalServerError,
	}
	for status, want := range cases {
		require.Equal(t, want, status.HTTPStatus(), status)
	}
}
