package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xsidious/constructionmanagment-sub000/internal/authz"
	"github.com/xsidious/constructionmanagment-sub000/internal/middleware"
	"github.com/xsidious/constructionmanagment-sub000/internal/service"
	"github.com/xsidious/constructionmanagment-sub000/pkg/database"
	"github.com/xsidious/constructionmanagment-sub000/pkg/logger"
	"github.com/xsidious/constructionmanagment-sub000/prometheus"
)

type addMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// ListMembers lists the members of the current company
func ListMembers(c echo.Context) error {
	members, err := service.NewMembershipService(database.GetDB()).ListMembers(c.Request().Context(), middleware.CompanyID(c))
	if err != nil {
		return respondError(c, err, "Failed to list members")
	}
	return c.JSON(http.StatusOK, echo.Map{"members": members})
}

// AddMember adds a registered user to the current company
func AddMember(c echo.Context) error {
	var req addMemberRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid member request")
	}

	companyID := middleware.CompanyID(c)
	member, err := service.NewMembershipService(database.GetDB()).AddMember(c.Request().Context(),
		companyID, middleware.Role(c), req.Email, authz.Role(req.Role))
	if err != nil {
		return respondError(c, err, "Failed to add member")
	}
	prometheus.RecordCompanyOperation("member", "create")

	logger.FromContext(c).Info("Member added",
		zap.Uint("company_id", companyID),
		zap.Uint("member_id", member.UserID),
		zap.String("role", string(member.Role)))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Member added successfully",
		"member":  member,
	})
}

// ChangeMemberRole changes a member's role
func ChangeMemberRole(c echo.Context) error {
	targetID, err := parseID(c, "user_id")
	if err != nil {
		return respondError(c, err, "Invalid member id")
	}

	var req changeRoleRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid role change")
	}

	member, err := service.NewMembershipService(database.GetDB()).ChangeRole(c.Request().Context(),
		middleware.CompanyID(c), middleware.Role(c), targetID, authz.Role(req.Role))
	if err != nil {
		return respondError(c, err, "Failed to change role")
	}
	prometheus.RecordCompanyOperation("member", "update")

	logger.FromContext(c).Info("Member role changed",
		zap.Uint("member_id", targetID),
		zap.String("role", string(member.Role)))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Member role updated successfully",
		"member":  member,
	})
}

// RemoveMember removes a member from the current company
func RemoveMember(c echo.Context) error {
	targetID, err := parseID(c, "user_id")
	if err != nil {
		return respondError(c, err, "Invalid member id")
	}

	if err := service.NewMembershipService(database.GetDB()).RemoveMember(c.Request().Context(),
		middleware.CompanyID(c), middleware.Role(c), targetID); err != nil {
		return respondError(c, err, "Failed to remove member")
	}
	prometheus.RecordCompanyOperation("member", "delete")

	logger.FromContext(c).Info("Member removed", zap.Uint("member_id", targetID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Member removed successfully"})
}
