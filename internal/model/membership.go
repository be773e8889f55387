package model

import (
	"time"

	"github.com/xsidious/constructionmanagment-sub000/internal/authz"
)

// Membership binds a user to a company with a role. The (user, company) pair
// is unique.
type Membership struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_membership_user_company"`
	CompanyID uint       `json:"company_id" gorm:"not null;index;uniqueIndex:idx_membership_user_company"`
	Role      authz.Role `json:"role" gorm:"type:varchar(20);not null"`
	IsDefault bool       `json:"is_default" gorm:"default:false"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}
