package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	"github.com/vladimiradmaev/glycocare/internal/interfaces"
)

// API is the subset of *tgbotapi.BotAPI the handlers use.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	Profiles interfaces.ProfileServiceInterface
	Meals    interfaces.MealAnalysisServiceInterface
	Vitals   interfaces.VitalsServiceInterface
	Chat     interfaces.ChatServiceInterface
	Planner  interfaces.PlannerServiceInterface
	Photos   PhotoFetcher
}

// PhotoFetcher downloads a Telegram file by its direct URL.
type PhotoFetcher interface {
	Fetch(ctx context.Context, url string) (domain.MealImage, error)
}

// Caller identifies who sent an update.
type Caller struct {
	TelegramID int64
	UserID     string
	Name       string
}
