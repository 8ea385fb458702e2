package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vladimiradmaev/glycocare/internal/database"
	"github.com/vladimiradmaev/glycocare/internal/domain"
)

// UserRepository handles user profiles. It implements domain.ProfileStore.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetProfile returns (nil, nil) when the user has no stored profile.
func (r *UserRepository) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		// Ids that are not UUIDs can never match a row.
		return nil, nil
	}

	var user database.User
	err = r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user.ToDomain(), nil
}

// SaveProfile inserts or fully replaces a profile.
func (r *UserRepository) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	user, err := database.UserFromDomain(profile)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(user).Error
}

// GetOrCreateByTelegramID gets an existing Telegram user or creates a new one
func (r *UserRepository) GetOrCreateByTelegramID(ctx context.Context, telegramID int64, name string) (*domain.UserProfile, error) {
	var user database.User
	result := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user)
	if result.Error == nil {
		return user.ToDomain(), nil
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	user = database.User{
		TelegramID: &telegramID,
		Name:       name,
	}

	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	return user.ToDomain(), nil
}
