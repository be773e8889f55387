package service

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
	"github.com/xsidious/constructionmanagment-sub000/internal/model"
	"github.com/xsidious/constructionmanagment-sub000/prometheus"
)

// CustomerService manages a company's customers
type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

type CustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Notes   string
}

func (in CustomerInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.NewValidationError("name", "is required")
	}
	return nil
}

func (s *CustomerService) Create(ctx context.Context, companyID uint, in CustomerInput) (*model.Customer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	customer := model.Customer{
		CompanyID: companyID,
		Name:      strings.TrimSpace(in.Name),
		Email:     normalizeEmail(in.Email),
		Phone:     in.Phone,
		Address:   in.Address,
		Notes:     in.Notes,
	}
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *CustomerService) List(ctx context.Context, companyID uint) ([]model.Customer, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var customers []model.Customer
	err := s.db.WithContext(ctx).Where("company_id = ?", companyID).Order("name, id").Find(&customers).Error
	return customers, err
}

func (s *CustomerService) Get(ctx context.Context, companyID, id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := findScoped(s.db.WithContext(ctx), &customer, companyID, id, "customer"); err != nil {
		return nil, err
	}
	return &customer, nil
}

// Update replaces the customer's editable fields
func (s *CustomerService) Update(ctx context.Context, companyID, id uint, in CustomerInput) (*model.Customer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var customer model.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findScoped(tx, &customer, companyID, id, "customer"); err != nil {
			return err
		}
		defer prometheus.TrackDBOperation("update")(time.Now())
		return tx.Model(&customer).Updates(map[string]interface{}{
			"name":    strings.TrimSpace(in.Name),
			"email":   normalizeEmail(in.Email),
			"phone":   in.Phone,
			"address": in.Address,
			"notes":   in.Notes,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, companyID, id)
}
