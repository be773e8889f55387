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
)

type paymentRequest struct {
	Amount    *decimal.Decimal `json:"amount" validate:"required"`
	Method    string           `json:"method" validate:"omitempty,oneof=cash bank_transfer card check other"`
	Reference string           `json:"reference" validate:"max=100"`
	Note      string           `json:"note" validate:"max=2000"`
	PaidAt    *time.Time       `json:"paid_at"`
}

func payments() *service.PaymentService {
	return service.NewPaymentService(database.GetDB(), broker.Get())
}

// RecordPayment appends a payment to an invoice
func RecordPayment(c echo.Context) error {
	invoiceID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid invoice id")
	}
	var req paymentRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, err, "Invalid payment request")
	}

	payment, balance, err := payments().Record(c.Request().Context(), middleware.CompanyID(c), invoiceID, middleware.UserID(c), service.PaymentInput{
		Amount:    *req.Amount,
		Method:    model.PaymentMethod(req.Method),
		Reference: req.Reference,
		Note:      req.Note,
		PaidAt:    req.PaidAt,
	})
	if err != nil {
		return respondError(c, err, "Failed to record payment")
	}

	logger.FromContext(c).Info("Payment recorded",
		zap.Uint("invoice_id", invoiceID),
		zap.Uint("payment_id", payment.ID),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("remaining", balance.Remaining.StringFixed(2)))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Payment recorded successfully",
		"payment": payment,
		"balance": balance,
	})
}

func ListPayments(c echo.Context) error {
	invoiceID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid invoice id")
	}
	list, err := payments().List(c.Request().Context(), middleware.CompanyID(c), invoiceID)
	if err != nil {
		return respondError(c, err, "Failed to list payments")
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": list})
}

// GetBalance returns total paid and remaining for an invoice
func GetBalance(c echo.Context) error {
	invoiceID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err, "Invalid invoice id")
	}
	balance, err := payments().Balance(c.Request().Context(), middleware.CompanyID(c), invoiceID)
	if err != nil {
		return respondError(c, err, "Failed to load balance")
	}
	return c.JSON(http.StatusOK, echo.Map{"balance": balance})
}
