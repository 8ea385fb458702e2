package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
	"github.com/vladimiradmaev/glycocare/internal/logger"
)

const (
	chatHistoryLimit = 10
	chatMealsLimit   = 5
	chatConfidence   = 0.9
)

const systemPromptTemplate = `You are a professional health and nutrition AI assistant for GlycoCare+, a diabetes and cardiovascular health management app.

Your role is to:
- Provide personalized diet and nutrition advice
- Help manage blood glucose levels
- Offer recommendations for blood pressure and heart health
- Suggest low-GI food alternatives
- Explain meal impacts on health metrics
- Provide actionable health tips

Context about the user:
%s

Be supportive, accurate, and concise. Always prioritize user safety and recommend consulting healthcare professionals for medical decisions.`

type ChatService struct {
	model    domain.ChatModel
	profiles domain.ProfileStore
	store    domain.TimeSeriesStore
	history  domain.ChatHistoryStore
}

func NewChatService(model domain.ChatModel, profiles domain.ProfileStore, store domain.TimeSeriesStore, history domain.ChatHistoryStore) *ChatService {
	return &ChatService{model: model, profiles: profiles, store: store, history: history}
}

type mealContext struct {
	Dish         string          `json:"dish"`
	Status       domain.RiskTier `json:"status"`
	GlucoseDelta float64         `json:"glucose_delta"`
}

type userContext struct {
	Name              string        `json:"name"`
	Age               *int          `json:"age"`
	Weight            *float64      `json:"weight"`
	DiabetesType      *string       `json:"diabetes_type"`
	HasBP             bool          `json:"has_bp"`
	HasHeartCondition bool          `json:"has_heart_condition"`
	LatestGlucose     *float64      `json:"latest_glucose"`
	LatestBP          *string       `json:"latest_bp"`
	RecentMeals       []mealContext `json:"recent_meals"`
}

// Reply answers one user message in the context of the user's health data.
// Context and history lookups that fail are logged and left out.
func (s *ChatService) Reply(ctx context.Context, userID, message string) (*domain.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("Missing message")
	}

	log := logger.WithContext(ctx)

	history, err := s.history.RecentMessages(ctx, userID, chatHistoryLimit)
	if err != nil {
		log.Warn("Failed to load chat history", "error", err)
		history = nil
	}

	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: s.systemPrompt(ctx, userID)})
	messages = append(messages, history...)
	messages = append(messages, domain.ChatMessage{UserID: userID, Role: domain.RoleUser, Content: message})

	s.remember(ctx, userID, domain.RoleUser, message)

	answer, err := s.model.Complete(ctx, messages)
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, "chat")
	}

	s.remember(ctx, userID, domain.RoleAssistant, answer)

	return &domain.ChatReply{
		Message:        answer,
		Confidence:     chatConfidence,
		Recommendation: firstSentence(answer),
	}, nil
}

func (s *ChatService) remember(ctx context.Context, userID, role, content string) {
	err := s.history.AppendMessage(ctx, &domain.ChatMessage{
		UserID:    userID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logger.WithContext(ctx).Error("Failed to save chat message", "role", role, "error", err)
	}
}

func (s *ChatService) systemPrompt(ctx context.Context, userID string) string {
	log := logger.WithContext(ctx)
	uc := userContext{Name: "User"}

	if profile, err := s.profiles.GetProfile(ctx, userID); err != nil {
		log.Warn("Failed to load profile for chat", "error", err)
	} else if profile != nil {
		if profile.Name != "" {
			uc.Name = profile.Name
		}
		if profile.Age > 0 {
			uc.Age = &profile.Age
		}
		if profile.Weight > 0 {
			uc.Weight = &profile.Weight
		}
		uc.DiabetesType = profile.DiabetesType
		uc.HasBP = profile.HasBloodPressureCondition
		uc.HasHeartCondition = profile.HasHeartCondition
	}

	if latest, err := s.store.LatestVitals(ctx, userID); err != nil {
		log.Warn("Failed to load vitals for chat", "error", err)
	} else if latest != nil {
		uc.LatestGlucose = &latest.Glucose
		bp := fmt.Sprintf("%d/%d", latest.Systolic, latest.Diastolic)
		uc.LatestBP = &bp
	}

	if meals, err := s.store.RecentMeals(ctx, userID, chatMealsLimit); err != nil {
		log.Warn("Failed to load meals for chat", "error", err)
	} else {
		for _, m := range meals {
			uc.RecentMeals = append(uc.RecentMeals, mealContext{Dish: m.Dish, Status: m.Tier, GlucoseDelta: m.Delta})
		}
	}

	raw, _ := json.MarshalIndent(uc, "", "  ")
	return fmt.Sprintf(systemPromptTemplate, raw)
}

func firstSentence(s string) string {
	first, _, _ := strings.Cut(s, ".")
	return strings.TrimSpace(first)
}
