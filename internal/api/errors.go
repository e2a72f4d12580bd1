package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/go-warehouse-admin/internal/authz"
	"github.com/FACorreiaa/go-warehouse-admin/internal/types"
)

// ServiceErrorResponse maps a service-layer error onto the API error
// taxonomy. Authorization denials carry their own reason code and status;
// everything else falls back to the sentinel errors.
func ServiceErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var denied *authz.Denied
	switch {
	case errors.As(err, &denied):
		ErrorResponse(w, r, denied.Decision.Reason.HTTPStatus(), string(denied.Decision.Reason))
	case errors.Is(err, types.ErrNotFound):
		ErrorResponse(w, r, http.StatusNotFound, "not_found")
	case errors.Is(err, types.ErrConflict):
		ErrorResponse(w, r, http.StatusConflict, "conflict: duplicate username or email")
	case errors.Is(err, types.ErrValidation):
		ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrUnauthenticated):
		ErrorResponse(w, r, http.StatusUnauthorized, "unauthenticated")
	default:
		logger.ErrorContext(r.Context(), "Unhandled service error", slog.Any("error", err))
		ErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}
