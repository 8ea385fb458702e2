package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glycocare/internal/bot/state"
	"github.com/vladimiradmaev/glycocare/internal/logger"
)

// UpdateHandler handles telegram updates and coordinates other handlers
type UpdateHandler struct {
	deps            Dependencies
	callbackHandler *CallbackHandler
	commandHandler  *CommandHandler
	textHandler     *TextHandler
	photoHandler    *PhotoHandler
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(api API, deps Dependencies, stateManager state.StateManager) *UpdateHandler {
	photo := NewPhotoHandler(api, deps, stateManager)
	return &UpdateHandler{
		deps:            deps,
		callbackHandler: NewCallbackHandler(api, deps, stateManager),
		commandHandler:  NewCommandHandler(api, stateManager),
		textHandler:     NewTextHandler(api, deps, stateManager, photo),
		photoHandler:    photo,
	}
}

// Handle processes a telegram update
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil && update.CallbackQuery == nil {
		return nil
	}

	var from *tgbotapi.User
	if update.Message != nil {
		from = update.Message.From
	} else {
		from = update.CallbackQuery.From
	}
	if from == nil {
		return nil
	}

	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	profile, err := h.deps.Profiles.RegisterTelegramUser(ctx, from.ID, name)
	if err != nil {
		return fmt.Errorf("failed to get/create user: %w", err)
	}

	caller := Caller{TelegramID: from.ID, UserID: profile.UserID, Name: name}
	ctx = logger.ContextWithUserID(ctx, caller.UserID)

	if update.CallbackQuery != nil {
		return h.callbackHandler.Handle(ctx, update.CallbackQuery, caller)
	}

	if update.Message.IsCommand() {
		return h.commandHandler.Handle(ctx, update.Message, caller)
	}
	if len(update.Message.Photo) > 0 {
		return h.photoHandler.Handle(ctx, update.Message, caller)
	}
	if update.Message.Text != "" {
		return h.textHandler.Handle(ctx, update.Message, caller)
	}

	return nil
}
