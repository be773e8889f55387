// Package middleware authenticates requests and resolves the caller's
// company role before handlers run.
package middleware

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xsidious/constructionmanagment-sub000/internal/authz"
	"github.com/xsidious/constructionmanagment-sub000/pkg/logger"
)

const (
	userIDKey    = "user_id"
	emailKey     = "email"
	companyIDKey = "company_id"
	roleKey      = "role"
	loggerKey    = "logger"
)

// setLogger replaces the request logger on the echo and request contexts
func setLogger(c echo.Context, l *zap.Logger) {
	c.Set(loggerKey, l)
	c.SetRequest(c.Request().WithContext(logger.WithLogger(c.Request().Context(), l)))
}

// UserID returns the authenticated user, or 0 outside AuthMiddleware
func UserID(c echo.Context) uint {
	id, _ := c.Get(userIDKey).(uint)
	return id
}

// Email returns the authenticated user's email
func Email(c echo.Context) string {
	email, _ := c.Get(emailKey).(string)
	return email
}

// CompanyID returns the company resolved by RequireMembership
func CompanyID(c echo.Context) uint {
	id, _ := c.Get(companyIDKey).(uint)
	return id
}

// Role returns the caller's role in the current company
func Role(c echo.Context) authz.Role {
	role, _ := c.Get(roleKey).(authz.Role)
	return role
}
