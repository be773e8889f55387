package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
	"github.com/xsidious/constructionmanagment-sub000/internal/authz"
	"github.com/xsidious/constructionmanagment-sub000/internal/service"
	"github.com/xsidious/constructionmanagment-sub000/pkg/logger"
	"github.com/xsidious/constructionmanagment-sub000/prometheus"
)

// RequireMembership resolves the caller's role in the :company_id route
// parameter. Callers that are not members of a live company all receive the
// same 403, whether or not the company exists.
func RequireMembership(db func() *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			companyID, err := strconv.ParseUint(c.Param("company_id"), 10, 32)
			if err != nil || companyID == 0 {
				prometheus.RecordAuthorizationDenied("not_member", "")
				return c.JSON(http.StatusForbidden, echo.Map{"error": apperr.ErrNotMember.Error()})
			}

			userID := UserID(c)
			role, err := service.NewMembershipService(db()).ResolveRole(c.Request().Context(), userID, uint(companyID))
			if errors.Is(err, apperr.ErrNotMember) {
				log.Warn("Company access denied",
					zap.Uint("user_id", userID),
					zap.Uint64("company_id", companyID))
				prometheus.RecordAuthorizationDenied("not_member", "")
				return c.JSON(http.StatusForbidden, echo.Map{"error": apperr.ErrNotMember.Error()})
			}
			if err != nil {
				log.Error("Failed to resolve company role", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
			}

			c.Set(companyIDKey, uint(companyID))
			c.Set(roleKey, role)
			setLogger(c, log.With(zap.Uint64("company_id", companyID), zap.String("role", string(role))))

			return next(c)
		}
	}
}

// RequirePermission rejects callers whose company role lacks perm
func RequirePermission(perm authz.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := Role(c)
			if err := authz.Require(role, perm); err != nil {
				logger.FromContext(c).Warn("Permission denied",
					zap.String("role", string(role)),
					zap.String("permission", string(perm)))
				prometheus.RecordAuthorizationDenied("permission", string(perm))
				return c.JSON(http.StatusForbidden, echo.Map{"error": apperr.ErrPermissionDenied.Error()})
			}
			return next(c)
		}
	}
}
