// Package services – HistoryService
//
// Read-side access to dispatch records: fetch one message by id or page
// through a conversation's history. Tenant scope is enforced on every read.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ianampudia11/go-omni-inbox/internal/domain"
)

// Read-path errors.
var (
	// ErrMessageNotFound indicates the message does not exist or belongs to
	// another tenant.
	ErrMessageNotFound = errors.New("message not found")

	// ErrConversationNotFound indicates the conversation does not exist or
	// belongs to another tenant.
	ErrConversationNotFound = errors.New("conversation not found")
)

// HistoryRepo defines the repository contract required by HistoryService.
type HistoryRepo interface {
	GetMessage(ctx context.Context, db *gorm.DB, id, tenantID uint) (*domain.Message, error)
	GetConversation(ctx context.Context, db *gorm.DB, id, tenantID uint) (*domain.Conversation, error)
	CountMessages(ctx context.Context, db *gorm.DB, conversationID uint) (int64, error)
	ListMessagesPage(ctx context.Context, db *gorm.DB, conversationID uint, offset, limit int) ([]domain.Message, error)
}

// HistoryService reads persisted dispatch records.
type HistoryService struct {
	DB   *gorm.DB
	Repo HistoryRepo
}

// NewHistoryService constructs a HistoryService.
func NewHistoryService(db *gorm.DB, r HistoryRepo) *HistoryService {
	return &HistoryService{DB: db, Repo: r}
}

// GetMessage fetches one message scoped to the tenant.
func (s *HistoryService) GetMessage(ctx context.Context, tenantID, id uint) (*domain.Message, error) {
	m, err := s.Repo.GetMessage(ctx, s.DB, id, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return m, nil
}

// ListConversationMessages returns one page of a conversation's messages in
// deterministic (created_at, id) order, plus the total count for pagination.
func (s *HistoryService) ListConversationMessages(ctx context.Context, tenantID, conversationID uint, page, pageSize int) ([]domain.Message, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	if _, err := s.Repo.GetConversation(ctx, s.DB, conversationID, tenantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrConversationNotFound
		}
		return nil, 0, err
	}

	total, err := s.Repo.CountMessages(ctx, s.DB, conversationID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Message{}, 0, nil
	}

	items, err := s.Repo.ListMessagesPage(ctx, s.DB, conversationID, offset, pageSize)
	return items, total, err
}
