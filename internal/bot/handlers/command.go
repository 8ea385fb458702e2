package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glycocare/internal/bot/keyboards"
	"github.com/vladimiradmaev/glycocare/internal/bot/menus"
	"github.com/vladimiradmaev/glycocare/internal/bot/state"
	"github.com/vladimiradmaev/glycocare/internal/logger"
)

const helpText = `Available commands:
/start - Show the main menu
/help - Show this message
/cancel - Leave the current flow

How to analyze a meal:
1. Press "🍽️ Analyze meal"
2. Send a photo of the plate
3. Optionally add your readings as the caption: glucose [systolic/diastolic] [heart rate]
Example: "110 120/80 72"

Without a caption I use your last recorded glucose, or ask for it.`

// CommandHandler handles bot commands
type CommandHandler struct {
	api          API
	stateManager state.StateManager
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api API, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{
		api:          api,
		stateManager: stateManager,
	}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, caller Caller) error {
	logger.WithContext(ctx).Info("Handling command", "command", message.Command(), "telegram_id", caller.TelegramID)

	switch message.Command() {
	case "start", "cancel":
		h.stateManager.SetUserState(caller.TelegramID, state.None)
		h.stateManager.ClearTempData(caller.TelegramID)
		return menus.SendMainMenu(h.api, message.Chat.ID)
	case "help":
		return sendHelp(h.api, message.Chat.ID)
	default:
		msg := tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Use /help to see what I can do.")
		_, err := h.api.Send(msg)
		return err
	}
}

func sendHelp(api API, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, helpText)
	msg.ReplyMarkup = keyboards.BackToMenu()
	_, err := api.Send(msg)
	return err
}
