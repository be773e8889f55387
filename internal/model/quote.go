package model

import "time"

// Quote is an offer to a customer. Approved quotes can be converted to
// invoices.
type Quote struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	CompanyID  uint        `json:"company_id" gorm:"not null;index;uniqueIndex:idx_quote_company_number"`
	Number     string      `json:"number" gorm:"type:varchar(20);not null;uniqueIndex:idx_quote_company_number"`
	CustomerID uint        `json:"customer_id" gorm:"index;not null"`
	ProjectID  *uint       `json:"project_id,omitempty" gorm:"index"`
	Status     QuoteStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Amounts    `gorm:"embedded"`
	ValidUntil *time.Time  `json:"valid_until,omitempty"`
	Notes      string      `json:"notes" gorm:"type:text"`
	CreatedBy  uint        `json:"created_by"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`

	Items []QuoteItem `json:"items" gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
}

type QuoteItem struct {
	ID             uint `json:"id" gorm:"primaryKey"`
	QuoteID        uint `json:"quote_id" gorm:"index;not null"`
	LineItemFields `gorm:"embedded"`
}
