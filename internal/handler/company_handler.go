package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xsidious/constructionmanagment-sub000/internal/middleware"
	"github.com/xsidious/constructionmanagment-sub000/internal/service"
	"github.com/xsidious/constructionmanagment-sub000/pkg/database"
	"github.com/xsidious/constructionmanagment-sub000/pkg/logger"
	"github.com/xsidious/constructionmanagment-sub000/prometheus"
)

type createCompanyRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type updateCompanyRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Active      *bool   `json:"active"`
}

// CreateCompany creates a company owned by the caller
func CreateCompany(c echo.Context) error {
	log := logger.FromContext(c)

	var req createCompanyRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid company request")
	}

	userID := middleware.UserID(c)
	company, err := service.NewCompanyService(database.GetDB()).Create(c.Request().Context(), userID, service.CompanyInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err, "Failed to create company")
	}
	prometheus.RecordCompanyOperation("company", "create")

	log.Info("Company created",
		zap.Uint("company_id", company.ID),
		zap.String("name", company.Name),
		zap.Uint("owner_id", userID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Company created successfully",
		"company": company,
	})
}

// ListCompanies lists the caller's companies with their role in each
func ListCompanies(c echo.Context) error {
	companies, err := service.NewCompanyService(database.GetDB()).ListForUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Failed to list companies")
	}
	return c.JSON(http.StatusOK, echo.Map{"companies": companies})
}

// GetCompany returns the current company and the caller's role in it
func GetCompany(c echo.Context) error {
	company, err := service.NewCompanyService(database.GetDB()).Get(c.Request().Context(), middleware.CompanyID(c))
	if err != nil {
		return respondError(c, err, "Failed to load company")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"company": company,
		"role":    middleware.Role(c),
	})
}

// UpdateCompany applies a partial update to the current company
func UpdateCompany(c echo.Context) error {
	var req updateCompanyRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid company update")
	}

	company, err := service.NewCompanyService(database.GetDB()).Update(c.Request().Context(), middleware.CompanyID(c), service.CompanyUpdate{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		return respondError(c, err, "Failed to update company")
	}
	prometheus.RecordCompanyOperation("company", "update")

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Company updated successfully",
		"company": company,
	})
}

// DeleteCompany soft-deletes the current company
func DeleteCompany(c echo.Context) error {
	companyID := middleware.CompanyID(c)
	if err := service.NewCompanyService(database.GetDB()).Delete(c.Request().Context(), companyID); err != nil {
		return respondError(c, err, "Failed to delete company")
	}
	prometheus.RecordCompanyOperation("company", "delete")

	logger.FromContext(c).Info("Company deleted", zap.Uint("company_id", companyID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Company deleted successfully"})
}
