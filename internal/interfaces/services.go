package interfaces

import (
	"context"

	"github.com/vladimiradmaev/glycocare/internal/domain"
)

// MealAnalysisServiceInterface defines the contract for meal analysis operations
type MealAnalysisServiceInterface interface {
	AnalyzeMeal(ctx context.Context, userID string, image domain.MealImage, vitals domain.VitalsSnapshot) (*domain.AnalysisResult, error)
	SaveMeal(ctx context.Context, meal *domain.MealRecord, vitals *domain.VitalsSnapshot) error
	RecentMeals(ctx context.Context, userID string, limit int) ([]domain.MealRecord, error)
}

// VitalsServiceInterface defines the contract for vitals operations
type VitalsServiceInterface interface {
	RecordVitals(ctx context.Context, vitals *domain.VitalsSnapshot) error
	LatestVitals(ctx context.Context, userID string) (*domain.VitalsSnapshot, error)
	Dashboard(ctx context.Context, userID string) (*domain.Dashboard, error)
}

// ProfileServiceInterface defines the contract for profile operations
type ProfileServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, profile *domain.UserProfile) error
	RegisterTelegramUser(ctx context.Context, telegramID int64, name string) (*domain.UserProfile, error)
}

// ChatServiceInterface defines the contract for the advisor chat
type ChatServiceInterface interface {
	Reply(ctx context.Context, userID, message string) (*domain.ChatReply, error)
}

// PlannerServiceInterface defines the contract for weekly planning
type PlannerServiceInterface interface {
	WeeklyPlan(ctx context.Context, userID string) (*domain.WeeklyPlan, error)
}

// Services bundles everything a transport needs.
type Services struct {
	Meals    MealAnalysisServiceInterface
	Vitals   VitalsServiceInterface
	Profiles ProfileServiceInterface
	Chat     ChatServiceInterface
	Planner  PlannerServiceInterface
}
