package model

import "time"

// Invoice bills a customer. Its balance is derived from Payments on read.
type Invoice struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	CompanyID     uint          `json:"company_id" gorm:"not null;index;uniqueIndex:idx_invoice_company_number"`
	Number        string        `json:"number" gorm:"type:varchar(20);not null;uniqueIndex:idx_invoice_company_number"`
	CustomerID    uint          `json:"customer_id" gorm:"index;not null"`
	ProjectID     *uint         `json:"project_id,omitempty" gorm:"index"`
	SourceQuoteID *uint         `json:"source_quote_id,omitempty" gorm:"uniqueIndex"`
	Status        InvoiceStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Amounts       `gorm:"embedded"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	Notes         string        `json:"notes" gorm:"type:text"`
	CreatedBy     uint          `json:"created_by"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Items []InvoiceItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

type InvoiceItem struct {
	ID             uint `json:"id" gorm:"primaryKey"`
	InvoiceID      uint `json:"invoice_id" gorm:"index;not null"`
	LineItemFields `gorm:"embedded"`
}
