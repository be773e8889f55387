package model

import "time"

// DocumentSequence is the per-company counter behind document numbers
type DocumentSequence struct {
	ID              uint         `gorm:"primaryKey"`
	CompanyID       uint         `gorm:"not null;uniqueIndex:idx_sequence_company_kind"`
	Kind            DocumentKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_sequence_company_kind"`
	CurrentSequence int64        `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
