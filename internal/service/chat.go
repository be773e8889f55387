package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
	"github.com/xsidious/constructionmanagment-sub000/internal/model"
	"github.com/xsidious/constructionmanagment-sub000/pkg/broker"
	"github.com/xsidious/constructionmanagment-sub000/prometheus"
)

const (
	MaxMessageLength = 4000
	DefaultChatLimit = 50
	MaxChatLimit     = 200
)

// ChatService stores project chat messages and fans them out over the broker
type ChatService struct {
	db  *gorm.DB
	pub broker.Publisher
}

func NewChatService(db *gorm.DB, pub broker.Publisher) *ChatService {
	return &ChatService{db: db, pub: pub}
}

// Post adds a message to a project's chat
func (s *ChatService) Post(ctx context.Context, companyID, projectID, authorID uint, body string) (*model.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.NewValidationError("body", "is required")
	}
	if utf8.RuneCountInString(body) > MaxMessageLength {
		return nil, apperr.NewValidationError("body", fmt.Sprintf("must be at most %d characters", MaxMessageLength))
	}

	db := s.db.WithContext(ctx)
	if err := findScoped(db, &model.Project{}, companyID, projectID, "project"); err != nil {
		return nil, err
	}

	msg := model.ChatMessage{
		CompanyID: companyID,
		ProjectID: projectID,
		AuthorID:  authorID,
		Body:      body,
	}
	start := time.Now()
	if err := db.Create(&msg).Error; err != nil {
		return nil, err
	}
	prometheus.TrackDBOperation("insert")(start)
	prometheus.RecordChatMessage()

	publish(ctx, s.pub, broker.CompanySubject(companyID, "project", fmt.Sprint(projectID), "chat"), "chat.message", msg)
	return &msg, nil
}

// List returns up to limit messages older than beforeID (0 for the newest),
// oldest first.
func (s *ChatService) List(ctx context.Context, companyID, projectID uint, limit int, beforeID uint) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultChatLimit
	}
	if limit > MaxChatLimit {
		limit = MaxChatLimit
	}

	db := s.db.WithContext(ctx)
	if err := findScoped(db, &model.Project{}, companyID, projectID, "project"); err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	q := db.Where("company_id = ? AND project_id = ?", companyID, projectID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var messages []model.ChatMessage
	if err := q.Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
