package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
	"github.com/xsidious/constructionmanagment-sub000/internal/authz"
	"github.com/xsidious/constructionmanagment-sub000/internal/model"
	"github.com/xsidious/constructionmanagment-sub000/prometheus"
)

// MembershipService resolves and manages who belongs to a company
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// Member is a membership joined with the user's identity
type Member struct {
	UserID   uint       `json:"user_id"`
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Role     authz.Role `json:"role"`
	JoinedAt time.Time  `json:"joined_at"`
}

func toMember(m model.Membership) Member {
	return Member{
		UserID:   m.UserID,
		Email:    m.User.Email,
		Name:     m.User.Name,
		Role:     m.Role,
		JoinedAt: m.CreatedAt,
	}
}

// ResolveRole returns the user's role in the company. A missing membership
// and a missing or deleted company both yield apperr.ErrNotMember, so the
// caller cannot probe which companies exist.
func (s *MembershipService) ResolveRole(ctx context.Context, userID, companyID uint) (authz.Role, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var m model.Membership
	err := s.db.WithContext(ctx).
		Joins("JOIN companies ON companies.id = memberships.company_id AND companies.deleted_at IS NULL").
		Where("memberships.user_id = ? AND memberships.company_id = ?", userID, companyID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.ErrNotMember
	}
	if err != nil {
		return "", err
	}
	if !m.Role.Valid() {
		return "", fmt.Errorf("%w: membership %d has unknown role %q", apperr.ErrInvariant, m.ID, m.Role)
	}
	return m.Role, nil
}

// ListMembers returns the company's members in join order
func (s *MembershipService) ListMembers(ctx context.Context, companyID uint) ([]Member, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var memberships []model.Membership
	if err := s.db.WithContext(ctx).Preload("User").Where("company_id = ?", companyID).Order("id").Find(&memberships).Error; err != nil {
		return nil, err
	}
	out := make([]Member, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, toMember(m))
	}
	return out, nil
}

// AddMember adds an existing user, looked up by email, with the given role
func (s *MembershipService) AddMember(ctx context.Context, companyID uint, actor authz.Role, email string, role authz.Role) (*Member, error) {
	if !role.Valid() {
		return nil, apperr.NewValidationError("role", fmt.Sprintf("unknown role %q", role))
	}
	if err := authz.CanChangeRole(actor, "", role); err != nil {
		return nil, err
	}

	var membership model.Membership
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
			return notFound(err, "user")
		}

		var existing int64
		if err := tx.Model(&model.Membership{}).Where("user_id = ? AND company_id = ?", user.ID, companyID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.Conflict("%s is already a member", user.Email)
		}

		membership = model.Membership{UserID: user.ID, CompanyID: companyID, Role: role}
		defer prometheus.TrackDBOperation("insert")(time.Now())
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		membership.User = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	member := toMember(membership)
	return &member, nil
}

// ChangeRole moves a member to a new role. Only owners may grant or revoke
// the owner role, and the last owner cannot be demoted.
func (s *MembershipService) ChangeRole(ctx context.Context, companyID uint, actor authz.Role, targetUserID uint, role authz.Role) (*Member, error) {
	if !role.Valid() {
		return nil, apperr.NewValidationError("role", fmt.Sprintf("unknown role %q", role))
	}

	var membership model.Membership
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockMembership(tx, companyID, targetUserID, &membership); err != nil {
			return err
		}
		if err := authz.CanChangeRole(actor, membership.Role, role); err != nil {
			return err
		}
		if membership.Role == role {
			return nil
		}
		if membership.Role == authz.RoleOwner {
			if err := ensureAnotherOwner(tx, companyID, targetUserID); err != nil {
				return err
			}
		}

		defer prometheus.TrackDBOperation("update")(time.Now())
		if err := tx.Model(&membership).Update("role", role).Error; err != nil {
			return err
		}
		membership.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}

	member := toMember(membership)
	return &member, nil
}

// RemoveMember deletes a membership. Removing an owner requires an owner and
// the last owner cannot be removed.
func (s *MembershipService) RemoveMember(ctx context.Context, companyID uint, actor authz.Role, targetUserID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var membership model.Membership
		if err := s.lockMembership(tx, companyID, targetUserID, &membership); err != nil {
			return err
		}
		if err := authz.CanChangeRole(actor, membership.Role, ""); err != nil {
			return err
		}
		if membership.Role == authz.RoleOwner {
			if err := ensureAnotherOwner(tx, companyID, targetUserID); err != nil {
				return err
			}
		}

		defer prometheus.TrackDBOperation("delete")(time.Now())
		return tx.Delete(&membership).Error
	})
}

func (s *MembershipService) lockMembership(tx *gorm.DB, companyID, userID uint, dest *model.Membership) error {
	err := forUpdate(tx).Where("company_id = ? AND user_id = ?", companyID, userID).First(dest).Error
	if err != nil {
		return notFound(err, "member")
	}
	return tx.First(&dest.User, dest.UserID).Error
}

// ensureAnotherOwner locks the remaining owner rows so two owners cannot
// demote each other concurrently.
func ensureAnotherOwner(tx *gorm.DB, companyID, exceptUserID uint) error {
	var owners []model.Membership
	err := forUpdate(tx).
		Where("company_id = ? AND role = ? AND user_id <> ?", companyID, authz.RoleOwner, exceptUserID).
		Find(&owners).Error
	if err != nil {
		return err
	}
	if len(owners) == 0 {
		return apperr.Conflict("a company must keep at least one owner")
	}
	return nil
}
