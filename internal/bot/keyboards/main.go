package keyboards

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data
const (
	AnalyzeMeal  = "analyze_meal"
	RecordVitals = "record_vitals"
	Dashboard    = "dashboard"
	WeeklyPlan   = "weekly_plan"
	ChatMode     = "chat_mode"
	MainMenuData = "main_menu"
	Help         = "help"
)

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍽️ Analyze meal", AnalyzeMeal),
			tgbotapi.NewInlineKeyboardButtonData("🩸 Record vitals", RecordVitals),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Dashboard", Dashboard),
			tgbotapi.NewInlineKeyboardButtonData("🗓️ Weekly plan", WeeklyPlan),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 Ask GlycoCare+", ChatMode),
		),
	)
}

// BackToMenu is a single "main menu" button.
func BackToMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", MainMenuData),
		),
	)
}

// AfterAnalysis is shown under an analysis result.
func AfterAnalysis() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 New analysis", AnalyzeMeal),
			tgbotapi.NewInlineKeyboardButtonData("🏠 Main menu", MainMenuData),
		),
	)
}
