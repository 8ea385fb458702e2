package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glycocare/internal/bot/keyboards"
	"github.com/vladimiradmaev/glycocare/internal/bot/menus"
	"github.com/vladimiradmaev/glycocare/internal/bot/state"
	"github.com/vladimiradmaev/glycocare/internal/logger"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	api          API
	deps         Dependencies
	stateManager state.StateManager
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api API, deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, caller Caller) error {
	// Answer first so the button stops spinning.
	if _, err := h.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logger.WithContext(ctx).Warn("Failed to answer callback query", "error", err)
	}
	if query.Message == nil {
		return nil
	}
	chatID := query.Message.Chat.ID

	switch query.Data {
	case keyboards.AnalyzeMeal:
		h.stateManager.SetUserState(caller.TelegramID, state.AnalyzingMeal)
		h.stateManager.ClearTempData(caller.TelegramID)
		return h.send(chatID, `📷 Send a photo of your meal.

💡 For a better prediction:
• Add your readings as the caption, e.g. "110 120/80 72"
• Photograph the whole plate in good light`)
	case keyboards.RecordVitals:
		h.stateManager.SetUserState(caller.TelegramID, state.WaitingForVitals)
		return h.send(chatID, "Enter your readings: glucose [systolic/diastolic] [heart rate]\nExample: 110 120/80 72")
	case keyboards.Dashboard:
		return h.handleDashboard(ctx, chatID, caller)
	case keyboards.WeeklyPlan:
		return h.handleWeeklyPlan(ctx, chatID, caller)
	case keyboards.ChatMode:
		h.stateManager.SetUserState(caller.TelegramID, state.Chatting)
		return h.send(chatID, "💬 Ask me anything about your diet, glucose or blood pressure. Press Main menu to stop.")
	case keyboards.Help:
		return sendHelp(h.api, chatID)
	case keyboards.MainMenuData:
		h.stateManager.SetUserState(caller.TelegramID, state.None)
		h.stateManager.ClearTempData(caller.TelegramID)
		return menus.SendMainMenu(h.api, chatID)
	default:
		return h.send(chatID, "Unknown action. Use /start to open the menu.")
	}
}

func (h *CallbackHandler) handleDashboard(ctx context.Context, chatID int64, caller Caller) error {
	d, err := h.deps.Vitals.Dashboard(ctx, caller.UserID)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to load dashboard", "error", err)
		return h.send(chatID, "Could not load your readings. Please try again later.")
	}
	return menus.SendDashboard(h.api, chatID, d)
}

func (h *CallbackHandler) handleWeeklyPlan(ctx context.Context, chatID int64, caller Caller) error {
	plan, err := h.deps.Planner.WeeklyPlan(ctx, caller.UserID)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to build weekly plan", "error", err)
		return h.send(chatID, "Could not build your plan. Please try again later.")
	}
	return menus.SendWeeklyPlan(h.api, chatID, plan)
}

func (h *CallbackHandler) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.BackToMenu()
	_, err := h.api.Send(msg)
	return err
}
