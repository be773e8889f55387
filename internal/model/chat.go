package model

import "time"

// ChatMessage is one post in a project's chat
type ChatMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CompanyID uint      `json:"company_id" gorm:"index;not null"`
	ProjectID uint      `json:"project_id" gorm:"index;not null"`
	AuthorID  uint      `json:"author_id" gorm:"not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}
