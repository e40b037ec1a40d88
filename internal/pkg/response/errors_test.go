package response

import (
	"errors"
	"net/http"
	"testing"

	xerrors "fleetwash-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{xerrors.ErrNotFound, http.StatusNotFound},
		{xerrors.ErrUnauthorized, http.StatusUnauthorized},
		{xerrors.ErrSessionExpired, http.StatusUnauthorized},
		{xerrors.ErrForbidden, http.StatusForbidden},
		{xerrors.ErrNotAssigned, http.StatusForbidden},
		{xerrors.ErrInvalidInput, http.StatusBadRequest},
		{xerrors.ErrConflict, http.StatusConflict},
		{xerrors.ErrUpdateInFlight, http.StatusConflict},
		{xerrors.ErrInvalidTransition, http.StatusConflict},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFromError(tt.err), tt.err.Error())
	}
}

func TestStatusFromWrappedError(t *testing.T) {
	err := xerrors.Wrap(xerrors.ErrInvalidTransition, "pending -> completed")
	assert.Equal(t, http.StatusConflict, StatusFromError(err))
}
