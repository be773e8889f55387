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

type createQuoteRequest struct {
	CustomerID      uint              `json:"customer_id" validate:"required"`
	ProjectID       *uint             `json:"project_id"`
	DiscountPercent decimal.Decimal   `json:"discount_percent"`
	TaxPercent      decimal.Decimal   `json:"tax_percent"`
	ValidUntil      *time.Time        `json:"valid_until"`
	Notes           string            `json:"notes" validate:"max=2000"`
	Items           []lineItemRequest `json:"items" validate:"dive"`
}

func quotes() *service.QuoteService {
	return service.NewQuoteService(database.GetDB(), broker.Get())
}

// CreateQuote creates a numbered draft quote
func CreateQuote(c echo.Context) error {
	var req createQuoteRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid quote request")
	}

	quote, err := quotes().Create(c.Request().Context(), middleware.CompanyID(c), middleware.UserID(c), service.QuoteInput{
		CustomerID:      req.CustomerID,
		ProjectID:       req.ProjectID,
		DiscountPercent: req.DiscountPercent,
		TaxPercent:      req.TaxPercent,
		ValidUntil:      req.ValidUntil,
		Notes:           req.Notes,
		Items:           lineItems(req.Items),
	})
	if err != nil {
		return respondError(c, err, "Failed to create quote")
	}
	prometheus.RecordDocumentOperation("quote", "create")

	logger.FromContext(c).Info("Quote created",
		zap.Uint("quote_id", quote.ID),
		zap.String("number", quote.Number),
		zap.String("total", quote.Total.StringFixed(2)))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Quote created successfully",
		"quote":   quote,
	})
}

// ListQuotes lists quotes, filtered by ?status= when given
func ListQuotes(c echo.Context) error {
	list, err := quotes().List(c.Request().Context(), middleware.CompanyID(c), model.QuoteStatus(c.QueryParam("status")))
	if err != nil {
		return respondError(c, err, "Failed to list quotes")
	}
	return c.JSON(http.StatusOK, echo.Map{"quotes": list})
}

func GetQuote(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid quote id")
	}
	quote, err := quotes().Get(c.Request().Context(), middleware.CompanyID(c), id)
	if err != nil {
		return respondError(c, err, "Failed to load quote")
	}
	return c.JSON(http.StatusOK, echo.Map{"quote": quote})
}

// ReplaceQuoteItems replaces every line item and recomputes the totals
func ReplaceQuoteItems(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid quote id")
	}
	var req replaceItemsRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid quote items")
	}

	quote, err := quotes().ReplaceItems(c.Request().Context(), middleware.CompanyID(c), id, lineItems(req.Items))
	if err != nil {
		return respondError(c, err, "Failed to replace quote items")
	}
	prometheus.RecordDocumentOperation("quote", "replace_items")

	return c.JSON(http.StatusOK, echo.Map{"quote": quote})
}

func UpdateQuoteRates(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid quote id")
	}
	var req ratesRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid quote rates")
	}

	quote, err := quotes().UpdateRates(c.Request().Context(), middleware.CompanyID(c), id, *req.DiscountPercent, *req.TaxPercent)
	if err != nil {
		return respondError(c, err, "Failed to update quote rates")
	}
	prometheus.RecordDocumentOperation("quote", "update_rates")

	return c.JSON(http.StatusOK, echo.Map{"quote": quote})
}

func ChangeQuoteStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid quote id")
	}
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid quote status")
	}

	quote, err := quotes().ChangeStatus(c.Request().Context(), middleware.CompanyID(c), id, middleware.UserID(c), model.QuoteStatus(req.Status))
	if err != nil {
		return respondError(c, err, "Failed to change quote status")
	}
	prometheus.RecordDocumentOperation("quote", string(quote.Status))

	logger.FromContext(c).Info("Quote status changed",
		zap.String("number", quote.Number),
		zap.String("status", string(quote.Status)))

	return c.JSON(http.StatusOK, echo.Map{"quote": quote})
}
