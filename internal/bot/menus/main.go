package menus

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glycocare/internal/bot/keyboards"
	"github.com/vladimiradmaev/glycocare/internal/domain"
)

// Sender is the part of the bot API menus need.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

const mainMenuText = `🩺 *GlycoCare* predicts how a meal will move your glucose.

🍽️ Send a photo of your plate and I will:
• Recognize the dish
• Estimate the portion
• Predict the glucose change and give advice

⚠️ *Important:* this is guidance, not a diagnosis. Always consult your doctor.

Choose an action:`

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api Sender, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, mainMenuText)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := api.Send(msg)
	return err
}

// SendDashboard sends the latest readings.
func SendDashboard(api Sender, chatID int64, d *domain.Dashboard) error {
	msg := tgbotapi.NewMessage(chatID, FormatDashboard(d))
	msg.ReplyMarkup = keyboards.BackToMenu()
	_, err := api.Send(msg)
	return err
}

// SendWeeklyPlan sends the plan and last week's summary.
func SendWeeklyPlan(api Sender, chatID int64, plan *domain.WeeklyPlan) error {
	msg := tgbotapi.NewMessage(chatID, FormatWeeklyPlan(plan))
	msg.ReplyMarkup = keyboards.BackToMenu()
	_, err := api.Send(msg)
	return err
}

// FormatDashboard renders a dashboard as plain text.
func FormatDashboard(d *domain.Dashboard) string {
	var b strings.Builder
	b.WriteString("📊 Your latest readings\n\n")
	fmt.Fprintf(&b, "🩸 Glucose: %.0f mg/dL\n", d.Glucose)
	fmt.Fprintf(&b, "💓 Blood pressure: %d/%d mmHg\n", d.Systolic, d.Diastolic)
	fmt.Fprintf(&b, "❤️ Heart rate: %d bpm\n", d.HeartRate)
	if d.LatestMeal != nil {
		fmt.Fprintf(&b, "\n🍽️ Last meal: %s (%+.1f mg/dL, %s)\n", d.LatestMeal.Dish, d.LatestMeal.Delta, d.LatestMeal.Tier)
	}
	return b.String()
}

// FormatWeeklyPlan renders a plan as plain text.
func FormatWeeklyPlan(plan *domain.WeeklyPlan) string {
	var b strings.Builder
	b.WriteString("🗓️ Your low-GI week\n\n")
	for _, day := range plan.Days {
		fmt.Fprintf(&b, "%s\n  🌅 %s\n  🌞 %s\n  🌙 %s\n", day.Day, day.Breakfast, day.Lunch, day.Dinner)
	}

	s := plan.Summary
	b.WriteString("\n📈 Last 7 days\n")
	fmt.Fprintf(&b, "Average glucose: %.1f mg/dL\n", s.AvgGlucose)
	fmt.Fprintf(&b, "Average meal impact: %+.1f mg/dL\n", s.AvgGlucoseChange)
	fmt.Fprintf(&b, "Average BP: %s\n", s.AvgBloodPressure)
	fmt.Fprintf(&b, "Healthy meals: %.0f%% of %d\n", s.HealthyMealsRatio*100, s.TotalMeals)
	if len(s.Recommendations) > 0 {
		b.WriteString("\n💡 Recommendations\n")
		for _, r := range s.Recommendations {
			fmt.Fprintf(&b, "• %s\n", r)
		}
	}
	return b.String()
}
