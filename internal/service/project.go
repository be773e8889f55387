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

// ProjectService manages a company's projects
type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type ProjectInput struct {
	CustomerID  *uint
	Name        string
	Description string
	Address     string
	Status      model.ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
}

func (in *ProjectInput) normalize() error {
	verr := &apperr.ValidationError{}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		verr.Add("name", "is required")
	}
	if in.Status == "" {
		in.Status = model.ProjectPlanning
	}
	if !in.Status.Valid() {
		verr.Add("status", "must be one of planning, active, on_hold, completed, cancelled")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		verr.Add("end_date", "must not be before start_date")
	}
	return verr.OrNil()
}

func (s *ProjectService) Create(ctx context.Context, companyID uint, in ProjectInput) (*model.Project, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	project := model.Project{
		CompanyID:   companyID,
		CustomerID:  copyID(in.CustomerID),
		Name:        in.Name,
		Description: in.Description,
		Address:     in.Address,
		Status:      in.Status,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.CustomerID != nil {
			if err := findScoped(tx, &model.Customer{}, companyID, *in.CustomerID, "customer"); err != nil {
				return err
			}
		}
		defer prometheus.TrackDBOperation("insert")(time.Now())
		return tx.Create(&project).Error
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns the company's projects, optionally for one customer
func (s *ProjectService) List(ctx context.Context, companyID uint, customerID *uint) ([]model.Project, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	q := s.db.WithContext(ctx).Where("company_id = ?", companyID)
	if customerID != nil {
		q = q.Where("customer_id = ?", *customerID)
	}
	var projects []model.Project
	err := q.Order("id").Find(&projects).Error
	return projects, err
}

func (s *ProjectService) Get(ctx context.Context, companyID, id uint) (*model.Project, error) {
	var project model.Project
	if err := findScoped(s.db.WithContext(ctx), &project, companyID, id, "project"); err != nil {
		return nil, err
	}
	return &project, nil
}

// Update replaces the project's editable fields
func (s *ProjectService) Update(ctx context.Context, companyID, id uint, in ProjectInput) (*model.Project, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	var project model.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findScoped(tx, &project, companyID, id, "project"); err != nil {
			return err
		}
		if in.CustomerID != nil {
			if err := findScoped(tx, &model.Customer{}, companyID, *in.CustomerID, "customer"); err != nil {
				return err
			}
		}
		defer prometheus.TrackDBOperation("update")(time.Now())
		return tx.Model(&project).Updates(map[string]interface{}{
			"customer_id": copyID(in.CustomerID),
			"name":        in.Name,
			"description": in.Description,
			"address":     in.Address,
			"status":      in.Status,
			"start_date":  in.StartDate,
			"end_date":    in.EndDate,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, companyID, id)
}
