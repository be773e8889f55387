package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xsidious/constructionmanagment-sub000/internal/authz"
	"github.com/xsidious/constructionmanagment-sub000/internal/model"
	"github.com/xsidious/constructionmanagment-sub000/internal/service"
	"github.com/xsidious/constructionmanagment-sub000/internal/testutil"
	"github.com/xsidious/constructionmanagment-sub000/pkg/config"
	"github.com/xsidious/constructionmanagment-sub000/pkg/jwtutil"
)

func init() {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", Issuer: "test", ExpirationHours: 1})
}

func ok(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":    UserID(c),
		"company_id": CompanyID(c),
		"role":       Role(c),
	})
}

func TestAuthMiddleware(t *testing.T) {
	e := echo.New()
	e.GET("/me", ok, AuthMiddleware)

	token, err := jwtutil.GenerateToken(42, "me@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware)
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

type tenantEnv struct {
	e       *echo.Echo
	db      *gorm.DB
	owner   *model.User
	worker  *model.User
	company *model.Company
}

func newTenantEnv(t *testing.T) *tenantEnv {
	t.Helper()
	ctx := context.Background()
	db := testutil.NewDB(t)

	users := service.NewUserService(db)
	owner, err := users.Register(ctx, "owner@example.com", "Owner", "password123")
	require.NoError(t, err)
	worker, err := users.Register(ctx, "worker@example.com", "Worker", "password123")
	require.NoError(t, err)

	company, err := service.NewCompanyService(db).Create(ctx, owner.ID, service.CompanyInput{Name: "Acme"})
	require.NoError(t, err)
	_, err = service.NewMembershipService(db).AddMember(ctx, company.ID, authz.RoleOwner, worker.Email, authz.RoleWorker)
	require.NoError(t, err)

	env := &tenantEnv{e: echo.New(), db: db, owner: owner, worker: worker, company: company}
	g := env.e.Group("/api/companies/:company_id", AuthMiddleware, RequireMembership(func() *gorm.DB { return db }))
	g.GET("", ok)
	g.GET("/invoices", ok, RequirePermission(authz.InvoiceRead))
	return env
}

func (env *tenantEnv) get(t *testing.T, user *model.User, path string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := jwtutil.GenerateToken(user.ID, user.Email)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func TestRequireMembership(t *testing.T) {
	env := newTenantEnv(t)
	stranger := &model.User{ID: 999, Email: "stranger@example.com"}

	rec := env.get(t, env.owner, "/api/companies/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"owner"`)
	assert.Contains(t, rec.Body.String(), `"company_id":1`)

	rec = env.get(t, stranger, "/api/companies/1")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "access denied")

	// unknown companies are indistinguishable from foreign ones
	missing := env.get(t, env.owner, "/api/companies/77")
	assert.Equal(t, http.StatusForbidden, missing.Code)
	assert.Equal(t, rec.Body.String(), missing.Body.String())

	rec = env.get(t, env.owner, "/api/companies/abc")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	env := newTenantEnv(t)

	rec := env.get(t, env.owner, "/api/companies/1/invoices")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.get(t, env.worker, "/api/companies/1/invoices")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "permission denied")
}
