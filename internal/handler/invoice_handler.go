package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xsidious/constructionmanagment-sub000/internal/middleware"
	"github.com/xsidious/constructionmanagment-sub000/internal/model"
	"github.com/xsidious/constructionmanagment-sub000/internal/service"
	"github.com/xsidious/constructionmanagment-sub000/pkg/broker"
	"github.com/xsidious/constructionmanagment-sub000/pkg/database"
	"github.com/xsidious/constructionmanagment-sub000/pkg/logger"
	"github.com/xsidious/constructionmanagment-sub000/prometheus"
)

type createInvoiceRequest struct {
	CustomerID      uint              `json:"customer_id" validate:"required"`
	ProjectID       *uint             `json:"project_id"`
	DiscountPercent decimal.Decimal   `json:"discount_percent"`
	TaxPercent      decimal.Decimal   `json:"tax_percent"`
	DueDate         *time.Time        `json:"due_date"`
	Notes           string            `json:"notes" validate:"max=2000"`
	Items           []lineItemRequest `json:"items" validate:"dive"`
}

type convertQuoteRequest struct {
	DueDate *time.Time `json:"due_date"`
}

func invoices() *service.InvoiceService {
	return service.NewInvoiceService(database.GetDB(), broker.Get())
}

// CreateInvoice creates a numbered draft invoice
func CreateInvoice(c echo.Context) error {
	var req createInvoiceRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid invoice request")
	}

	invoice, err := invoices().Create(c.Request().Context(), middleware.CompanyID(c), middleware.UserID(c), service.InvoiceInput{
		CustomerID:      req.CustomerID,
		ProjectID:       req.ProjectID,
		DiscountPercent: req.DiscountPercent,
		TaxPercent:      req.TaxPercent,
		DueDate:         req.DueDate,
		Notes:           req.Notes,
		Items:           lineItems(req.Items),
	})
	if err != nil {
		return respondError(c, err, "Failed to create invoice")
	}
	prometheus.RecordDocumentOperation("invoice", "create")

	logger.FromContext(c).Info("Invoice created",
		zap.Uint("invoice_id", invoice.ID),
		zap.String("number", invoice.Number),
		zap.String("total", invoice.Total.StringFixed(2)))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Invoice created successfully",
		"invoice": invoice,
	})
}

// ListInvoices lists invoices, filtered by ?status= when given
func ListInvoices(c echo.Context) error {
	list, err := invoices().List(c.Request().Context(), middleware.CompanyID(c), model.InvoiceStatus(c.QueryParam("status")))
	if err != nil {
		return respondError(c, err, "Failed to list invoices")
	}
	return c.JSON(http.StatusOK, echo.Map{"invoices": list})
}

func GetInvoice(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid invoice id")
	}
	invoice, err := invoices().Get(c.Request().Context(), middleware.CompanyID(c), id)
	if err != nil {
		return respondError(c, err, "Failed to load invoice")
	}
	return c.JSON(http.StatusOK, echo.Map{"invoice": invoice})
}

func ReplaceInvoiceItems(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid invoice id")
	}
	var req replaceItemsRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid invoice items")
	}

	invoice, err := invoices().ReplaceItems(c.Request().Context(), middleware.CompanyID(c), id, lineItems(req.Items))
	if err != nil {
		return respondError(c, err, "Failed to replace invoice items")
	}
	prometheus.RecordDocumentOperation("invoice", "replace_items")

	return c.JSON(http.StatusOK, echo.Map{"invoice": invoice})
}

func UpdateInvoiceRates(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid invoice id")
	}
	var req ratesRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid invoice rates")
	}

	invoice, err := invoices().UpdateRates(c.Request().Context(), middleware.CompanyID(c), id, *req.DiscountPercent, *req.TaxPercent)
	if err != nil {
		return respondError(c, err, "Failed to update invoice rates")
	}
	prometheus.RecordDocumentOperation("invoice", "update_rates")

	return c.JSON(http.StatusOK, echo.Map{"invoice": invoice})
}

func ChangeInvoiceStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid invoice id")
	}
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid invoice status")
	}

	invoice, err := invoices().ChangeStatus(c.Request().Context(), middleware.CompanyID(c), id, middleware.UserID(c), model.InvoiceStatus(req.Status))
	if err != nil {
		return respondError(c, err, "Failed to change invoice status")
	}
	prometheus.RecordDocumentOperation("invoice", string(invoice.Status))

	logger.FromContext(c).Info("Invoice status changed",
		zap.String("number", invoice.Number),
		zap.String("status", string(invoice.Status)))

	return c.JSON(http.StatusOK, echo.Map{"invoice": invoice})
}

// ConvertQuote turns an approved quote into a draft invoice
func ConvertQuote(c echo.Context) error {
	quoteID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid quote id")
	}
	var req convertQuoteRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid conversion request")
	}

	invoice, err := invoices().ConvertQuote(c.Request().Context(), middleware.CompanyID(c), quoteID, middleware.UserID(c), req.DueDate)
	if err != nil {
		return respondError(c, err, "Failed to convert quote")
	}
	prometheus.RecordDocumentOperation("quote", "convert")

	logger.FromContext(c).Info("Quote converted",
		zap.Uint("quote_id", quoteID),
		zap.String("invoice_number", invoice.Number))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Quote converted successfully",
		"invoice": invoice,
	})
}
