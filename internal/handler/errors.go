package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
	"github.com/xsidious/constructionmanagment-sub000/pkg/logger"
	"github.com/xsidious/constructionmanagment-sub000/prometheus"
)

// respondError translates a service error into its HTTP status and body
func respondError(c echo.Context, err error, msg string) error {
	log := logger.FromContext(c)

	if ve, ok := apperr.AsValidation(err); ok {
		prometheus.RecordRequestError("validation")
		log.Info(msg, zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "causes": ve.Causes})
	}

	var (
		status int
		kind   string
	)
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		status, kind = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, apperr.ErrNotMember):
		status, kind = http.StatusForbidden, "not_member"
	case errors.Is(err, apperr.ErrPermissionDenied):
		status, kind = http.StatusForbidden, "permission_denied"
	case errors.Is(err, apperr.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, apperr.ErrConflict):
		status, kind = http.StatusConflict, "conflict"
	case errors.Is(err, apperr.ErrInvalidState):
		status, kind = http.StatusUnprocessableEntity, "invalid_state"
	case errors.Is(err, apperr.ErrInvariant):
		prometheus.RecordRequestError("invariant")
		log.Error(msg, zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	default:
		prometheus.RecordRequestError("internal")
		log.Error(msg, zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	prometheus.RecordRequestError(kind)
	log.Info(msg, zap.String("kind", kind), zap.Error(err))

	body := err.Error()
	switch kind {
	case "not_member":
		body = apperr.ErrNotMember.Error()
	case "permission_denied":
		body = apperr.ErrPermissionDenied.Error()
	}
	return c.JSON(status, echo.Map{"error": body})
}

// parseID reads a positive numeric path parameter
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.NewValidationError(name, "must be a positive integer")
	}
	return uint(id), nil
}

// bind decodes and validates a request body
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.NewValidationError("body", "malformed request body")
	}
	return c.Validate(req)
}
