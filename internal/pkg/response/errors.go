// internal/pkg/response/errors.go
package response

import (
	"errors"
	"net/http"

	xerrors "fleetwash-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// StatusFromError maps application sentinel errors to HTTP status codes.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, xerrors.ErrUnauthorized),
		errors.Is(err, xerrors.ErrSessionExpired),
		errors.Is(err, xerrors.ErrIdentityRequired):
		return http.StatusUnauthorized
	case errors.Is(err, xerrors.ErrForbidden),
		errors.Is(err, xerrors.ErrNotAssigned):
		return http.StatusForbidden
	case errors.Is(err, xerrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, xerrors.ErrConflict),
		errors.Is(err, xerrors.ErrUpdateInFlight),
		errors.Is(err, xerrors.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError sends an error response with the status derived from the
// error's sentinel.
func FromError(c *gin.Context, err error, message string) {
	Error(c, StatusFromError(err), message, err)
}
