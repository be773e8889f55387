package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
	"github.com/xsidious/constructionmanagment-sub000/internal/middleware"
	"github.com/xsidious/constructionmanagment-sub000/internal/model"
	"github.com/xsidious/constructionmanagment-sub000/internal/service"
	"github.com/xsidious/constructionmanagment-sub000/pkg/database"
	"github.com/xsidious/constructionmanagment-sub000/pkg/logger"
	"github.com/xsidious/constructionmanagment-sub000/prometheus"
)

type projectRequest struct {
	CustomerID  *uint      `json:"customer_id"`
	Name        string     `json:"name" validate:"required,max=150"`
	Description string     `json:"description" validate:"max=2000"`
	Address     string     `json:"address" validate:"max=500"`
	Status      string     `json:"status" validate:"omitempty,oneof=planning active on_hold completed cancelled"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (r projectRequest) input() service.ProjectInput {
	return service.ProjectInput{
		CustomerID:  r.CustomerID,
		Name:        r.Name,
		Description: r.Description,
		Address:     r.Address,
		Status:      model.ProjectStatus(r.Status),
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

func CreateProject(c echo.Context) error {
	var req projectRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid project request")
	}

	project, err := service.NewProjectService(database.GetDB()).Create(c.Request().Context(), middleware.CompanyID(c), req.input())
	if err != nil {
		return respondError(c, err, "Failed to create project")
	}
	prometheus.RecordCompanyOperation("project", "create")

	logger.FromContext(c).Info("Project created", zap.Uint("project_id", project.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Project created successfully",
		"project": project,
	})
}

// ListProjects lists projects, filtered by ?customer_id= when given
func ListProjects(c echo.Context) error {
	var customerID *uint
	if raw := c.QueryParam("customer_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return respondError(c, apperr.NewValidationError("customer_id", "must be a positive integer"), "Invalid project filter")
		}
		v := uint(id)
		customerID = &v
	}

	projects, err := service.NewProjectService(database.GetDB()).List(c.Request().Context(), middleware.CompanyID(c), customerID)
	if err != nil {
		return respondError(c, err, "Failed to list projects")
	}
	return c.JSON(http.StatusOK, echo.Map{"projects": projects})
}

func GetProject(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid project id")
	}
	project, err := service.NewProjectService(database.GetDB()).Get(c.Request().Context(), middleware.CompanyID(c), id)
	if err != nil {
		return respondError(c, err, "Failed to load project")
	}
	return c.JSON(http.StatusOK, echo.Map{"project": project})
}

// UpdateProject replaces the project's editable fields
func UpdateProject(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid project id")
	}
	var req projectRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid project request")
	}

	project, err := service.NewProjectService(database.GetDB()).Update(c.Request().Context(), middleware.CompanyID(c), id, req.input())
	if err != nil {
		return respondError(c, err, "Failed to update project")
	}
	prometheus.RecordCompanyOperation("project", "update")

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Project updated successfully",
		"project": project,
	})
}
