package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/accredify/accredify-backend/internal/http/response"
	pkgerrors "github.com/accredify/accredify-backend/internal/pkg/errors"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses so
// every handler reports validation, not-found, permission and transition
// failures the same way.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, pkgerrors.ErrPermissionDenied):
		response.RespondError(c, http.StatusForbidden, "permission_denied", err)
	case errors.Is(err, pkgerrors.ErrInvalidTransition):
		response.RespondError(c, http.StatusConflict, "invalid_transition", err)
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, err)
		return uuid.Nil, false
	}
	return id, true
}
