package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vladimiradmaev/glycocare/internal/database"
	"github.com/vladimiradmaev/glycocare/internal/domain"
)

// ChatRepository implements domain.ChatHistoryStore.
type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	userID, err := uuid.Parse(msg.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", msg.UserID, err)
	}

	row := database.ChatMessage{UserID: userID, Role: msg.Role, Content: msg.Content}
	if !msg.Timestamp.IsZero() {
		row.CreatedAt = msg.Timestamp
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// RecentMessages returns up to limit messages, oldest first.
func (r *ChatRepository) RecentMessages(ctx context.Context, userID string, limit int) ([]domain.ChatMessage, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}

	var rows []database.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	messages := make([]domain.ChatMessage, len(rows))
	for i, row := range rows {
		messages[len(rows)-1-i] = domain.ChatMessage{
			UserID:    userID,
			Role:      row.Role,
			Content:   row.Content,
			Timestamp: row.CreatedAt,
		}
	}
	return messages, nil
}
