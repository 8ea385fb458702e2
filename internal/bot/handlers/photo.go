package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glycocare/internal/bot/keyboards"
	"github.com/vladimiradmaev/glycocare/internal/bot/state"
	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
	"github.com/vladimiradmaev/glycocare/internal/logger"
)

// Telegram caps photo captions at 1024 characters.
const maxCaptionLength = 1024

// PhotoHandler handles photo messages
type PhotoHandler struct {
	api          API
	deps         Dependencies
	stateManager state.StateManager
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(api API, deps Dependencies, stateManager state.StateManager) *PhotoHandler {
	return &PhotoHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a photo message. Readings come from the caption, else
// from the last recorded vitals, else the user is asked for them.
func (h *PhotoHandler) Handle(ctx context.Context, message *tgbotapi.Message, caller Caller) error {
	// Largest size is last.
	photo := message.Photo[len(message.Photo)-1]
	chatID := message.Chat.ID

	if caption := strings.TrimSpace(message.Caption); caption != "" {
		vitals, err := ParseVitals(caption)
		if err != nil {
			return h.send(chatID, "I could not read the caption. Use: glucose [systolic/diastolic] [heart rate], e.g. 110 120/80 72", keyboards.BackToMenu())
		}
		return h.Analyze(ctx, chatID, caller, photo.FileID, vitals)
	}

	latest, err := h.deps.Vitals.LatestVitals(ctx, caller.UserID)
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to load latest vitals", "error", err)
	}
	if latest == nil || !latest.HasGlucose() {
		h.stateManager.SetTempData(caller.TelegramID, state.KeyPendingPhoto, photo.FileID)
		h.stateManager.SetUserState(caller.TelegramID, state.WaitingForMealVitals)
		return h.send(chatID, "What is your current glucose? Reply with: glucose [systolic/diastolic] [heart rate]", keyboards.BackToMenu())
	}

	vitals := domain.VitalsSnapshot{
		Glucose:   latest.Glucose,
		Systolic:  latest.Systolic,
		Diastolic: latest.Diastolic,
		HeartRate: latest.HeartRate,
	}
	return h.Analyze(ctx, chatID, caller, photo.FileID, vitals)
}

// Analyze downloads the photo, runs the analysis and replies with the result.
func (h *PhotoHandler) Analyze(ctx context.Context, chatID int64, caller Caller, fileID string, vitals domain.VitalsSnapshot) error {
	log := logger.WithContext(ctx)
	defer h.stateManager.SetUserState(caller.TelegramID, state.None)

	processing, err := h.api.Send(tgbotapi.NewMessage(chatID, "Analyzing your meal..."))
	if err != nil {
		return fmt.Errorf("failed to send processing message: %w", err)
	}
	defer func() {
		if _, err := h.api.Request(tgbotapi.NewDeleteMessage(chatID, processing.MessageID)); err != nil {
			log.Debug("Failed to delete processing message", "error", err)
		}
	}()

	url, err := h.api.GetFileDirectURL(fileID)
	if err != nil {
		log.Error("Failed to resolve photo URL", "error", err)
		return h.send(chatID, "Sorry, I could not download the photo. Please try again.", keyboards.AfterAnalysis())
	}
	image, err := h.deps.Photos.Fetch(ctx, url)
	if err != nil {
		log.Error("Failed to download photo", "error", err)
		return h.send(chatID, "Sorry, I could not download the photo. Please try again.", keyboards.AfterAnalysis())
	}

	vitals.UserID = caller.UserID
	result, err := h.deps.Meals.AnalyzeMeal(ctx, caller.UserID, image, vitals)
	if err != nil {
		log.Error("Meal analysis failed", "error", err)
		text := "Sorry, something went wrong while analyzing the photo. Please try again in a few minutes."
		switch {
		case errors.Is(err, apperrors.ErrTimeout):
			text = "The recognition service is taking too long right now. Please send the photo again in a minute."
		case apperrors.TypeOf(err) == apperrors.ErrorTypeClassification:
			text = "I could not recognize the dish. Please send a clearer photo of the plate."
		}
		return h.send(chatID, text, keyboards.AfterAnalysis())
	}
	log.Info("Meal analyzed", "dish", result.Dish, "delta", result.Delta, "tier", result.Tier)

	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	msg.Caption = truncate(FormatAnalysis(result), maxCaptionLength)
	msg.ReplyMarkup = keyboards.AfterAnalysis()
	if _, err := h.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send analysis: %w", err)
	}
	return nil
}

func (h *PhotoHandler) send(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	_, err := h.api.Send(msg)
	return err
}

var tierIcons = map[domain.RiskTier]string{
	domain.TierNormal:     "🟢",
	domain.TierBorderline: "🟡",
	domain.TierHigh:       "🔴",
}

// FormatAnalysis renders an analysis result as a plain-text caption.
func FormatAnalysis(r *domain.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🍽️ %s (%d g)\n", r.Dish, r.PortionG)
	fmt.Fprintf(&b, "%s Predicted change: %+.1f mg/dL, %s\n", tierIcons[r.Tier], r.Delta, r.Tier)
	fmt.Fprintf(&b, "🎯 Confidence: %d%%\n\n", r.ConfidencePercent)
	b.WriteString(r.Advice)
	b.WriteString("\n")

	if len(r.Tips) > 0 {
		b.WriteString("\n💡 Tips\n")
		for _, tip := range r.Tips {
			fmt.Fprintf(&b, "• %s\n", tip)
		}
	}
	if len(r.FoodSwaps) > 0 {
		b.WriteString("\n🔁 Swaps\n")
		for _, swap := range r.FoodSwaps {
			fmt.Fprintf(&b, "• %s\n", swap)
		}
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}
