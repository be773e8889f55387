package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
	"github.com/xsidious/constructionmanagment-sub000/internal/middleware"
	"github.com/xsidious/constructionmanagment-sub000/internal/service"
	"github.com/xsidious/constructionmanagment-sub000/pkg/broker"
	"github.com/xsidious/constructionmanagment-sub000/pkg/database"
)

type chatMessageRequest struct {
	Body string `json:"body" validate:"required"`
}

// PostMessage adds a message to a project's chat
func PostMessage(c echo.Context) error {
	projectID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid project id")
	}
	var req chatMessageRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid chat message")
	}

	msg, err := service.NewChatService(database.GetDB(), broker.Get()).Post(c.Request().Context(),
		middleware.CompanyID(c), projectID, middleware.UserID(c), req.Body)
	if err != nil {
		return respondError(c, err, "Failed to post message")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": msg})
}

// ListMessages pages through a project's chat with ?limit= and ?before=
func ListMessages(c echo.Context) error {
	projectID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid project id")
	}

	limit, before := 0, uint64(0)
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return respondError(c, apperr.NewValidationError("limit", "must be an integer"), "Invalid chat query")
		}
	}
	if raw := c.QueryParam("before"); raw != "" {
		if before, err = strconv.ParseUint(raw, 10, 32); err != nil {
			return respondError(c, apperr.NewValidationError("before", "must be a message id"), "Invalid chat query")
		}
	}

	messages, err := service.NewChatService(database.GetDB(), broker.Get()).List(c.Request().Context(),
		middleware.CompanyID(c), projectID, limit, uint(before))
	if err != nil {
		return respondError(c, err, "Failed to list messages")
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": messages})
}
