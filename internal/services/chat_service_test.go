package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
)

type scriptedModel struct {
	answer   string
	err      error
	received []domain.ChatMessage
}

func (m *scriptedModel) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	m.received = messages
	return m.answer, m.err
}

func TestChatReplyBuildsContext(t *testing.T) {
	diabetes := "type2"
	model := &scriptedModel{answer: "Swap white rice for brown rice. It has a lower GI."}
	history := &memHistory{messages: []domain.ChatMessage{
		{UserID: userID, Role: domain.RoleUser, Content: "hi"},
		{UserID: userID, Role: domain.RoleAssistant, Content: "hello"},
	}}
	store := &memStore{
		vitals: []domain.VitalsSnapshot{{UserID: userID, Glucose: 132, Systolic: 128, Diastolic: 84}},
		meals:  []domain.MealRecord{{UserID: userID, Dish: "Biryani", Tier: domain.TierHigh, Delta: 44}},
	}
	profiles := &memProfiles{profiles: map[string]domain.UserProfile{
		userID: {UserID: userID, Name: "Amara", Age: 52, DiabetesType: &diabetes},
	}}

	reply, err := NewChatService(model, profiles, store, history).Reply(context.Background(), userID, "  What should I eat?  ")

	require.NoError(t, err)
	assert.Equal(t, "Swap white rice for brown rice", reply.Recommendation)
	assert.Equal(t, 0.9, reply.Confidence)

	require.Len(t, model.received, 4)
	system := model.received[0]
	assert.Equal(t, domain.RoleSystem, system.Role)
	assert.Contains(t, system.Content, "GlycoCare+")
	assert.Contains(t, system.Content, `"name": "Amara"`)
	assert.Contains(t, system.Content, `"latest_bp": "128/84"`)
	assert.Contains(t, system.Content, `"dish": "Biryani"`)
	assert.Equal(t, "hi", model.received[1].Content)
	assert.Equal(t, domain.RoleAssistant, model.received[2].Role)
	assert.Equal(t, domain.ChatMessage{UserID: userID, Role: domain.RoleUser, Content: "What should I eat?"}, model.received[3])

	require.Len(t, history.messages, 4)
	assert.Equal(t, "What should I eat?", history.messages[2].Content)
	assert.Equal(t, domain.RoleAssistant, history.messages[3].Role)
}

func TestChatReplyWithoutProfileUsesPlaceholderName(t *testing.T) {
	model := &scriptedModel{answer: "ok"}

	_, err := NewChatService(model, &memProfiles{}, &memStore{}, &memHistory{}).Reply(context.Background(), userID, "hi")

	require.NoError(t, err)
	assert.Contains(t, model.received[0].Content, `"name": "User"`)
	assert.Contains(t, model.received[0].Content, `"latest_glucose": null`)
}

func TestChatReplyToleratesStoreFailures(t *testing.T) {
	model := &scriptedModel{answer: "Drink water."}

	reply, err := NewChatService(model, &memProfiles{err: errors.New("x")}, &memStore{failRead: true}, &memHistory{fail: true}).
		Reply(context.Background(), userID, "hi")

	require.NoError(t, err)
	assert.Equal(t, "Drink water.", reply.Message)
	assert.Len(t, model.received, 2)
}

func TestChatReplyModelFailure(t *testing.T) {
	model := &scriptedModel{err: errors.New("rate limited")}

	_, err := NewChatService(model, &memProfiles{}, &memStore{}, &memHistory{}).Reply(context.Background(), userID, "hi")

	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
}

func TestChatReplyRejectsEmptyMessage(t *testing.T) {
	model := &scriptedModel{}

	_, err := NewChatService(model, &memProfiles{}, &memStore{}, &memHistory{}).Reply(context.Background(), userID, "   ")

	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	assert.Nil(t, model.received)
}

func TestOpenAIChatModel(t *testing.T) {
	var req openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Eat more fiber."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	m := NewOpenAIChatModel("gsk_test", srv.URL, DefaultGroqModel)
	answer, err := m.Complete(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "sys"},
		{Role: domain.RoleUser, Content: "hi"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Eat more fiber.", answer)
	assert.Equal(t, DefaultGroqModel, req.Model)
	assert.Equal(t, 500, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
}

func TestOpenAIChatModelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIChatModel("k", srv.URL, "").Complete(context.Background(), []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}})

	assert.Error(t, err)
}

func TestSplitForGemini(t *testing.T) {
	system, history, last := splitForGemini([]domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "be kind"},
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
		{Role: domain.RoleUser, Content: "lunch ideas?"},
	})

	assert.Equal(t, "be kind", system)
	assert.Equal(t, "lunch ideas?", last)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)

	_, _, last = splitForGemini([]domain.ChatMessage{{Role: domain.RoleAssistant, Content: "x"}})
	assert.Empty(t, last)
}
