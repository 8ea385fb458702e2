package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glycocare/internal/bot/keyboards"
	"github.com/vladimiradmaev/glycocare/internal/bot/state"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
	"github.com/vladimiradmaev/glycocare/internal/logger"
)

// TextHandler handles text messages
type TextHandler struct {
	api          API
	deps         Dependencies
	stateManager state.StateManager
	photos       *PhotoHandler
}

// NewTextHandler creates a new text handler
func NewTextHandler(api API, deps Dependencies, stateManager state.StateManager, photos *PhotoHandler) *TextHandler {
	return &TextHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
		photos:       photos,
	}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, caller Caller) error {
	switch h.stateManager.GetUserState(caller.TelegramID) {
	case state.WaitingForVitals:
		return h.handleVitals(ctx, message, caller)
	case state.WaitingForMealVitals:
		return h.handleMealVitals(ctx, message, caller)
	case state.Chatting:
		return h.handleChat(ctx, message, caller)
	case state.AnalyzingMeal:
		return h.send(message.Chat.ID, "Please send a photo of your meal.", keyboards.BackToMenu())
	default:
		return h.send(message.Chat.ID, "Please use the menu to choose an action.", keyboards.MainMenu())
	}
}

func (h *TextHandler) handleVitals(ctx context.Context, message *tgbotapi.Message, caller Caller) error {
	vitals, err := ParseVitals(message.Text)
	if err != nil {
		return h.send(message.Chat.ID, "Please use: glucose [systolic/diastolic] [heart rate], e.g. 110 120/80 72", keyboards.BackToMenu())
	}

	vitals.UserID = caller.UserID
	if err := h.deps.Vitals.RecordVitals(ctx, &vitals); err != nil {
		logger.WithContext(ctx).Error("Failed to record vitals", "error", err)
		text := "Could not save your readings. Please try again."
		if apperrors.TypeOf(err) == apperrors.ErrorTypeValidation {
			text = apperrors.PublicMessage(err)
		}
		return h.send(message.Chat.ID, text, keyboards.BackToMenu())
	}

	h.stateManager.SetUserState(caller.TelegramID, state.None)
	return h.send(message.Chat.ID, fmt.Sprintf("✅ Saved glucose %.0f mg/dL", vitals.Glucose), keyboards.MainMenu())
}

func (h *TextHandler) handleMealVitals(ctx context.Context, message *tgbotapi.Message, caller Caller) error {
	vitals, err := ParseVitals(message.Text)
	if err != nil {
		return h.send(message.Chat.ID, "Please use: glucose [systolic/diastolic] [heart rate], e.g. 110 120/80 72", keyboards.BackToMenu())
	}

	fileID, ok := h.stateManager.GetTempData(caller.TelegramID, state.KeyPendingPhoto)
	if !ok || fileID == "" {
		h.stateManager.SetUserState(caller.TelegramID, state.AnalyzingMeal)
		return h.send(message.Chat.ID, "I lost your photo. Please send it again.", keyboards.BackToMenu())
	}
	h.stateManager.ClearTempData(caller.TelegramID)

	return h.photos.Analyze(ctx, message.Chat.ID, caller, fileID, vitals)
}

func (h *TextHandler) handleChat(ctx context.Context, message *tgbotapi.Message, caller Caller) error {
	reply, err := h.deps.Chat.Reply(ctx, caller.UserID, message.Text)
	if err != nil {
		logger.WithContext(ctx).Error("Chat reply failed", "error", err)
		return h.send(message.Chat.ID, "I cannot answer right now. Please try again later.", keyboards.BackToMenu())
	}
	return h.send(message.Chat.ID, reply.Message, keyboards.BackToMenu())
}

func (h *TextHandler) send(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	_, err := h.api.Send(msg)
	return err
}
