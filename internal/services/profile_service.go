package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
)

// ProfileRepository is the writable profile store.
type ProfileRepository interface {
	domain.ProfileStore
	SaveProfile(ctx context.Context, profile *domain.UserProfile) error
	GetOrCreateByTelegramID(ctx context.Context, telegramID int64, name string) (*domain.UserProfile, error)
}

type ProfileService struct {
	repo ProfileRepository
}

func NewProfileService(repo ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// GetProfile returns the stored profile or the default one.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if profile == nil {
		p := domain.DefaultProfile(userID)
		return &p, nil
	}
	return profile, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, profile *domain.UserProfile) error {
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Age < 0 || profile.Age > 130 {
		return apperrors.NewValidationError("Age must be between 0 and 130")
	}
	if profile.Weight < 0 || profile.Weight > 500 {
		return apperrors.NewValidationError("Weight must be between 0 and 500 kg")
	}
	if profile.DiabetesType != nil && strings.TrimSpace(*profile.DiabetesType) == "" {
		profile.DiabetesType = nil
	}

	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// RegisterTelegramUser maps a Telegram account to a user profile.
func (s *ProfileService) RegisterTelegramUser(ctx context.Context, telegramID int64, name string) (*domain.UserProfile, error) {
	profile, err := s.repo.GetOrCreateByTelegramID(ctx, telegramID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return profile, nil
}
