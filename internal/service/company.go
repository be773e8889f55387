package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
	"github.com/xsidious/constructionmanagment-sub000/internal/authz"
	"github.com/xsidious/constructionmanagment-sub000/internal/model"
	"github.com/xsidious/constructionmanagment-sub000/prometheus"
)

// CompanyService manages companies, the tenant boundary
type CompanyService struct {
	db *gorm.DB
}

func NewCompanyService(db *gorm.DB) *CompanyService {
	return &CompanyService{db: db}
}

// CompanyInput carries the editable company fields
type CompanyInput struct {
	Name        string
	Description string
}

// CompanyUpdate carries a partial company update
type CompanyUpdate struct {
	Name        *string
	Description *string
	Active      *bool
}

// CompanyMembership is a company seen from one member
type CompanyMembership struct {
	Company   model.Company `json:"company"`
	Role      authz.Role    `json:"role"`
	IsDefault bool          `json:"is_default"`
}

// Create creates a company and makes the creator its owner in the same
// transaction.
func (s *CompanyService) Create(ctx context.Context, ownerID uint, in CompanyInput) (*model.Company, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.NewValidationError("name", "is required")
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var taken int64
	if err := tx.Unscoped().Model(&model.Company{}).Where("owner_id = ? AND name = ?", ownerID, name).Count(&taken).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if taken > 0 {
		tx.Rollback()
		return nil, nameTaken(name)
	}

	var existing int64
	if err := tx.Model(&model.Membership{}).Where("user_id = ?", ownerID).Count(&existing).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	company := model.Company{
		Name:        name,
		Description: in.Description,
		OwnerID:     ownerID,
		Active:      true,
	}
	if err := tx.Create(&company).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nameTaken(name)
		}
		return nil, err
	}

	membership := model.Membership{
		UserID:    ownerID,
		CompanyID: company.ID,
		Role:      authz.RoleOwner,
		IsDefault: existing == 0,
	}
	if err := tx.Create(&membership).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// ListForUser returns every live company the user belongs to with their role
func (s *CompanyService) ListForUser(ctx context.Context, userID uint) ([]CompanyMembership, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var memberships []model.Membership
	err := s.db.WithContext(ctx).
		Preload("Company").
		Where("user_id = ?", userID).
		Order("id").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	out := make([]CompanyMembership, 0, len(memberships))
	for _, m := range memberships {
		// soft-deleted companies are not preloaded
		if m.Company.ID == 0 {
			continue
		}
		out = append(out, CompanyMembership{Company: m.Company, Role: m.Role, IsDefault: m.IsDefault})
	}
	return out, nil
}

// Get returns a company by id
func (s *CompanyService) Get(ctx context.Context, companyID uint) (*model.Company, error) {
	var company model.Company
	if err := s.db.WithContext(ctx).First(&company, companyID).Error; err != nil {
		return nil, notFound(err, "company")
	}
	return &company, nil
}

// Update applies the non-nil fields of in
func (s *CompanyService) Update(ctx context.Context, companyID uint, in CompanyUpdate) (*model.Company, error) {
	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.NewValidationError("name", "must not be empty")
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Active != nil {
		updates["active"] = *in.Active
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var company model.Company
		if err := tx.First(&company, companyID).Error; err != nil {
			return notFound(err, "company")
		}
		if name, ok := updates["name"]; ok && name != company.Name {
			var taken int64
			if err := tx.Unscoped().Model(&model.Company{}).
				Where("owner_id = ? AND name = ? AND id <> ?", company.OwnerID, name, companyID).
				Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return nameTaken(name.(string))
			}
		}
		if len(updates) == 0 {
			return nil
		}
		defer prometheus.TrackDBOperation("update")(time.Now())
		err := tx.Model(&company).Updates(updates).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			name, _ := updates["name"].(string)
			return nameTaken(name)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, companyID)
}

// Delete soft-deletes the company. Members lose access immediately.
func (s *CompanyService) Delete(ctx context.Context, companyID uint) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	res := s.db.WithContext(ctx).Delete(&model.Company{}, companyID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("company")
	}
	return nil
}

// Company names are unique per owner
func nameTaken(name string) error {
	return apperr.Conflict("company name %q is already taken", name)
}
