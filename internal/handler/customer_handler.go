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

type customerRequest struct {
	Name    string `json:"name" validate:"required,max=150"`
	Email   string `json:"email" validate:"omitempty,email,max=100"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
	Notes   string `json:"notes" validate:"max=2000"`
}

func (r customerRequest) input() service.CustomerInput {
	return service.CustomerInput{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
		Notes:   r.Notes,
	}
}

func CreateCustomer(c echo.Context) error {
	var req customerRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid customer request")
	}

	customer, err := service.NewCustomerService(database.GetDB()).Create(c.Request().Context(), middleware.CompanyID(c), req.input())
	if err != nil {
		return respondError(c, err, "Failed to create customer")
	}
	prometheus.RecordCompanyOperation("customer", "create")

	logger.FromContext(c).Info("Customer created", zap.Uint("customer_id", customer.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Customer created successfully",
		"customer": customer,
	})
}

func ListCustomers(c echo.Context) error {
	customers, err := service.NewCustomerService(database.GetDB()).List(c.Request().Context(), middleware.CompanyID(c))
	if err != nil {
		return respondError(c, err, "Failed to list customers")
	}
	return c.JSON(http.StatusOK, echo.Map{"customers": customers})
}

func GetCustomer(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid customer id")
	}
	customer, err := service.NewCustomerService(database.GetDB()).Get(c.Request().Context(), middleware.CompanyID(c), id)
	if err != nil {
		return respondError(c, err, "Failed to load customer")
	}
	return c.JSON(http.StatusOK, echo.Map{"customer": customer})
}

// UpdateCustomer replaces the customer's editable fields
func UpdateCustomer(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid customer id")
	}
	var req customerRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid customer request")
	}

	customer, err := service.NewCustomerService(database.GetDB()).Update(c.Request().Context(), middleware.CompanyID(c), id, req.input())
	if err != nil {
		return respondError(c, err, "Failed to update customer")
	}
	prometheus.RecordCompanyOperation("customer", "update")

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Customer updated successfully",
		"customer": customer,
	})
}
