package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/vladimiradmaev/glycocare/internal/domain"
)

const (
	GroqBaseURL      = "https://api.groq.com/openai/v1"
	DefaultGroqModel = "llama-3.3-70b-versatile"
	DefaultOpenAI    = "gpt-4o-mini"
	DefaultGemini    = "gemini-1.5-flash"

	chatTemperature = 0.7
	chatMaxTokens   = 500
)

// OpenAIChatModel talks to any OpenAI-compatible chat endpoint, Groq included.
type OpenAIChatModel struct {
	client *openai.Client
	model  string
}

// NewOpenAIChatModel uses the public OpenAI endpoint when baseURL is empty.
func NewOpenAIChatModel(apiKey, baseURL, model string) *OpenAIChatModel {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = DefaultOpenAI
	}
	return &OpenAIChatModel{client: openai.NewClientWithConfig(cfg), model: model}
}

// NewGroqChatModel points the OpenAI client at Groq.
func NewGroqChatModel(apiKey, model string) *OpenAIChatModel {
	if model == "" {
		model = DefaultGroqModel
	}
	return NewOpenAIChatModel(apiKey, GroqBaseURL, model)
}

func (m *OpenAIChatModel) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       m.model,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    openAIRole(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func openAIRole(role string) string {
	switch role {
	case domain.RoleSystem:
		return openai.ChatMessageRoleSystem
	case domain.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

// GeminiChatModel uses Google's Gemini API.
type GeminiChatModel struct {
	client *genai.Client
	model  string
}

func NewGeminiChatModel(ctx context.Context, apiKey, model string) (*GeminiChatModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGemini
	}
	return &GeminiChatModel{client: client, model: model}, nil
}

// Complete sends the last message and passes the earlier ones as history.
// System messages become the model's system instruction.
func (m *GeminiChatModel) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	system, history, last := splitForGemini(messages)
	if last == "" {
		return "", errors.New("no user message to send")
	}

	model := m.client.GenerativeModel(m.model)
	model.SetTemperature(chatTemperature)
	model.SetMaxOutputTokens(chatMaxTokens)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini returned no text")
	}
	return sb.String(), nil
}

func (m *GeminiChatModel) Close() error {
	return m.client.Close()
}

func splitForGemini(messages []domain.ChatMessage) (system string, history []*genai.Content, last string) {
	var systemParts []string
	var turns []domain.ChatMessage
	for _, msg := range messages {
		if msg.Role == domain.RoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		turns = append(turns, msg)
	}
	system = strings.Join(systemParts, "\n\n")

	if len(turns) == 0 || turns[len(turns)-1].Role != domain.RoleUser {
		return system, nil, ""
	}
	last = turns[len(turns)-1].Content

	for _, msg := range turns[:len(turns)-1] {
		role := "user"
		if msg.Role == domain.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}
	return system, history, last
}
