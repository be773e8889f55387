package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
	"github.com/xsidious/constructionmanagment-sub000/internal/middleware"
	"github.com/xsidious/constructionmanagment-sub000/internal/service"
	"github.com/xsidious/constructionmanagment-sub000/pkg/database"
	"github.com/xsidious/constructionmanagment-sub000/pkg/jwtutil"
	"github.com/xsidious/constructionmanagment-sub000/pkg/logger"
	"github.com/xsidious/constructionmanagment-sub000/prometheus"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=100"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register creates a user account
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req registerRequest
	if err := bind(c, &req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return respondError(c, err, "Invalid registration request")
	}

	user, err := service.NewUserService(database.GetDB()).Register(c.Request().Context(), req.Email, req.Name, req.Password)
	if err != nil {
		return respondError(c, err, "Failed to register user")
	}

	log.Info("User registered", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login exchanges credentials for a bearer token
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req loginRequest
	if err := bind(c, &req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return respondError(c, err, "Invalid login request")
	}

	user, err := service.NewUserService(database.GetDB()).Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthenticated) {
			prometheus.RecordAuthError("invalid_credentials")
		}
		return respondError(c, err, "Login failed")
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Email)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  user,
	})
}

// GetProfile returns the caller and the companies they belong to
func GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	db := database.GetDB()

	user, err := service.NewUserService(db).Get(ctx, middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Failed to load profile")
	}
	companies, err := service.NewCompanyService(db).ListForUser(ctx, user.ID)
	if err != nil {
		return respondError(c, err, "Failed to list companies")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":      user,
		"companies": companies,
	})
}
