package bot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glycocare/internal/bot/handlers"
	"github.com/vladimiradmaev/glycocare/internal/bot/state"
	"github.com/vladimiradmaev/glycocare/internal/interfaces"
	"github.com/vladimiradmaev/glycocare/internal/logger"
)

// Bot is the Telegram front end over the same services as the HTTP API.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *handlers.UpdateHandler
}

// NewBot authorizes against Telegram and wires the update handlers.
func NewBot(token string, services interfaces.Services, stateManager state.StateManager) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Bot authorized", "username", api.Self.UserName)

	deps := handlers.Dependencies{
		Profiles: services.Profiles,
		Meals:    services.Meals,
		Vitals:   services.Vitals,
		Chat:     services.Chat,
		Planner:  services.Planner,
		Photos:   handlers.NewHTTPPhotoFetcher(&http.Client{Timeout: 30 * time.Second}),
	}

	return &Bot{
		api:     api,
		handler: handlers.NewUpdateHandler(api, deps, stateManager),
	}, nil
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	logger.Info("Bot is now listening for updates")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Bot is shutting down")
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.handler.Handle(ctx, update); err != nil {
				logger.Error("Error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}
