package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/xsidious/constructionmanagment-sub000/internal/authz"
	"github.com/xsidious/constructionmanagment-sub000/internal/middleware"
	"github.com/xsidious/constructionmanagment-sub000/pkg/database"
)

// RegisterRoutes mounts every endpoint on e. Company routes run behind
// authentication, membership resolution and a per-route permission check.
func RegisterRoutes(e *echo.Echo) {
	// Public routes
	e.GET("/health", HealthCheck)
	e.GET("/metrics", MetricsHandler)

	auth := e.Group("/auth")
	auth.POST("/register", Register)
	auth.POST("/login", Login)

	api := e.Group("/api", middleware.AuthMiddleware)
	api.GET("/me", GetProfile)
	api.POST("/companies", CreateCompany)
	api.GET("/companies", ListCompanies)

	company := api.Group("/companies/:company_id", middleware.RequireMembership(database.GetDB))
	can := middleware.RequirePermission

	company.GET("", GetCompany, can(authz.CompanyRead))
	company.PATCH("", UpdateCompany, can(authz.CompanyWrite))
	company.DELETE("", DeleteCompany, can(authz.CompanyDelete))

	company.GET("/members", ListMembers, can(authz.MemberRead))
	company.POST("/members", AddMember, can(authz.MemberWrite))
	company.PATCH("/members/:user_id", ChangeMemberRole, can(authz.MemberWrite))
	company.DELETE("/members/:user_id", RemoveMember, can(authz.MemberWrite))

	company.GET("/customers", ListCustomers, can(authz.CustomerRead))
	company.POST("/customers", CreateCustomer, can(authz.CustomerWrite))
	company.GET("/customers/:id", GetCustomer, can(authz.CustomerRead))
	company.PATCH("/customers/:id", UpdateCustomer, can(authz.CustomerWrite))

	company.GET("/projects", ListProjects, can(authz.ProjectRead))
	company.POST("/projects", CreateProject, can(authz.ProjectWrite))
	company.GET("/projects/:id", GetProject, can(authz.ProjectRead))
	company.PATCH("/projects/:id", UpdateProject, can(authz.ProjectWrite))
	company.GET("/projects/:id/messages", ListMessages, can(authz.ChatRead))
	company.POST("/projects/:id/messages", PostMessage, can(authz.ChatWrite))

	company.GET("/quotes", ListQuotes, can(authz.QuoteRead))
	company.POST("/quotes", CreateQuote, can(authz.QuoteWrite))
	company.GET("/quotes/:id", GetQuote, can(authz.QuoteRead))
	company.PUT("/quotes/:id/items", ReplaceQuoteItems, can(authz.QuoteWrite))
	company.PATCH("/quotes/:id/rates", UpdateQuoteRates, can(authz.QuoteWrite))
	company.PATCH("/quotes/:id/status", ChangeQuoteStatus, can(authz.QuoteWrite))
	company.POST("/quotes/:id/convert", ConvertQuote, can(authz.QuoteRead), can(authz.InvoiceWrite))

	company.GET("/invoices", ListInvoices, can(authz.InvoiceRead))
	company.POST("/invoices", CreateInvoice, can(authz.InvoiceWrite))
	company.GET("/invoices/:id", GetInvoice, can(authz.InvoiceRead))
	company.PUT("/invoices/:id/items", ReplaceInvoiceItems, can(authz.InvoiceWrite))
	company.PATCH("/invoices/:id/rates", UpdateInvoiceRates, can(authz.InvoiceWrite))
	company.PATCH("/invoices/:id/status", ChangeInvoiceStatus, can(authz.InvoiceWrite))
	company.GET("/invoices/:id/payments", ListPayments, can(authz.PaymentRead))
	company.POST("/invoices/:id/payments", RecordPayment, can(authz.PaymentWrite))
	company.GET("/invoices/:id/balance", GetBalance, can(authz.PaymentRead))
}
