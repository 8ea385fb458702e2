package handlers

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/glycocare/internal/bot/state"
	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
)

const (
	chatID     = int64(10)
	telegramID = int64(5)
)

type fakeAPI struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return "https://files.example/" + fileID, nil
}

// texts returns the text of every plain message and the caption of every photo.
func (f *fakeAPI) texts() []string {
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.PhotoConfig:
			out = append(out, m.Caption)
		}
	}
	return out
}

func (f *fakeAPI) last() string {
	t := f.texts()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

type fakeProfiles struct{}

func (fakeProfiles) GetProfile(_ context.Context, userID string) (*domain.UserProfile, error) {
	p := domain.DefaultProfile(userID)
	return &p, nil
}
func (fakeProfiles) UpdateProfile(context.Context, *domain.UserProfile) error { return nil }
func (fakeProfiles) RegisterTelegramUser(_ context.Context, telegramID int64, name string) (*domain.UserProfile, error) {
	return &domain.UserProfile{UserID: "user-1", TelegramID: &telegramID, Name: name}, nil
}

type fakeMeals struct {
	calls  int
	vitals domain.VitalsSnapshot
	image  domain.MealImage
	err    error
}

func (f *fakeMeals) AnalyzeMeal(_ context.Context, _ string, image domain.MealImage, vitals domain.VitalsSnapshot) (*domain.AnalysisResult, error) {
	f.calls++
	f.vitals = vitals
	f.image = image
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AnalysisResult{
		Dish:              "Biryani",
		PortionG:          300,
		Delta:             22.5,
		ConfidencePercent: 91,
		Advice:            "Moderate impact.",
		Tier:              domain.TierBorderline,
		Tips:              []string{"Take a walk"},
		FoodSwaps:         []string{"Brown rice"},
	}, nil
}
func (f *fakeMeals) SaveMeal(context.Context, *domain.MealRecord, *domain.VitalsSnapshot) error {
	return nil
}
func (f *fakeMeals) RecentMeals(context.Context, string, int) ([]domain.MealRecord, error) {
	return nil, nil
}

type fakeVitals struct {
	latest   *domain.VitalsSnapshot
	recorded []domain.VitalsSnapshot
}

func (f *fakeVitals) RecordVitals(_ context.Context, v *domain.VitalsSnapshot) error {
	f.recorded = append(f.recorded, *v)
	return nil
}
func (f *fakeVitals) LatestVitals(context.Context, string) (*domain.VitalsSnapshot, error) {
	return f.latest, nil
}
func (f *fakeVitals) Dashboard(context.Context, string) (*domain.Dashboard, error) {
	return &domain.Dashboard{Glucose: 120, Systolic: 120, Diastolic: 80, HeartRate: 75}, nil
}

type fakeChat struct{}

func (fakeChat) Reply(_ context.Context, _ string, message string) (*domain.ChatReply, error) {
	return &domain.ChatReply{Message: "You asked: " + message}, nil
}

type fakePlanner struct{}

func (fakePlanner) WeeklyPlan(context.Context, string) (*domain.WeeklyPlan, error) {
	return &domain.WeeklyPlan{Days: []domain.MealPlanDay{{Day: "Monday", Breakfast: "Oats", Lunch: "Dal", Dinner: "Salad"}}}, nil
}

type fakeFetcher struct{ url string }

func (f *fakeFetcher) Fetch(_ context.Context, url string) (domain.MealImage, error) {
	f.url = url
	return domain.MealImage{Data: []byte("jpeg"), ContentType: "image/jpeg"}, nil
}

type harness struct {
	api     *fakeAPI
	meals   *fakeMeals
	vitals  *fakeVitals
	fetcher *fakeFetcher
	states  *state.Manager
	handler *UpdateHandler
}

func newHarness() *harness {
	h := &harness{
		api:     &fakeAPI{},
		meals:   &fakeMeals{},
		vitals:  &fakeVitals{},
		fetcher: &fakeFetcher{},
		states:  state.NewManager(),
	}
	h.handler = NewUpdateHandler(h.api, Dependencies{
		Profiles: fakeProfiles{},
		Meals:    h.meals,
		Vitals:   h.vitals,
		Chat:     fakeChat{},
		Planner:  fakePlanner{},
		Photos:   h.fetcher,
	}, h.states)
	return h
}

func from() *tgbotapi.User { return &tgbotapi.User{ID: telegramID, FirstName: "Asha"} }

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, From: from(), Text: text}}
}

func photoUpdate(caption string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:    &tgbotapi.Chat{ID: chatID},
		From:    from(),
		Caption: caption,
		Photo:   []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
	}}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    from(),
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func commandUpdate(cmd string) tgbotapi.Update {
	u := textUpdate("/" + cmd)
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd) + 1}}
	return u
}

func TestPhotoWithCaptionRunsAnalysis(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.handler.Handle(context.Background(), photoUpdate("110 120/80 72")))

	require.Equal(t, 1, h.meals.calls)
	assert.Equal(t, 110.0, h.meals.vitals.Glucose)
	assert.Equal(t, 120, h.meals.vitals.Systolic)
	assert.Equal(t, "user-1", h.meals.vitals.UserID)
	assert.Equal(t, "https://files.example/large", h.fetcher.url)
	assert.Contains(t, h.api.last(), "Biryani (300 g)")
	assert.Contains(t, h.api.last(), "+22.5 mg/dL")
	assert.Equal(t, state.None, h.states.GetUserState(telegramID))
}

func TestPhotoWithBadCaption(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.handler.Handle(context.Background(), photoUpdate("lunch")))

	assert.Zero(t, h.meals.calls)
	assert.Contains(t, h.api.last(), "could not read the caption")
}

func TestPhotoUsesLatestVitals(t *testing.T) {
	h := newHarness()
	h.vitals.latest = &domain.VitalsSnapshot{ID: "old", Glucose: 140, HeartRate: 80}

	require.NoError(t, h.handler.Handle(context.Background(), photoUpdate("")))

	require.Equal(t, 1, h.meals.calls)
	assert.Equal(t, 140.0, h.meals.vitals.Glucose)
	assert.Empty(t, h.meals.vitals.ID)
}

func TestPhotoWithoutVitalsAsksThenAnalyzes(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	require.NoError(t, h.handler.Handle(ctx, photoUpdate("")))
	assert.Zero(t, h.meals.calls)
	assert.Equal(t, state.WaitingForMealVitals, h.states.GetUserState(telegramID))

	require.NoError(t, h.handler.Handle(ctx, textUpdate("95")))
	require.Equal(t, 1, h.meals.calls)
	assert.Equal(t, 95.0, h.meals.vitals.Glucose)
	assert.Equal(t, state.None, h.states.GetUserState(telegramID))
	_, ok := h.states.GetTempData(telegramID, state.KeyPendingPhoto)
	assert.False(t, ok)
}

func TestAnalysisClassifierFailure(t *testing.T) {
	h := newHarness()
	h.meals.err = apperrors.NewClassificationError(errors.New("503"))

	require.NoError(t, h.handler.Handle(context.Background(), photoUpdate("110")))

	assert.Contains(t, h.api.last(), "could not recognize the dish")
}

func TestAnalysisClassifierTimeout(t *testing.T) {
	h := newHarness()
	h.meals.err = apperrors.NewClassificationError(apperrors.NewTimeoutError(context.DeadlineExceeded, "classify"))

	require.NoError(t, h.handler.Handle(context.Background(), photoUpdate("110")))

	assert.Contains(t, h.api.last(), "taking too long")
}

func TestRecordVitalsFlow(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	require.NoError(t, h.handler.Handle(ctx, callbackUpdate("record_vitals")))
	assert.Equal(t, state.WaitingForVitals, h.states.GetUserState(telegramID))
	assert.Len(t, h.api.requests, 1)

	require.NoError(t, h.handler.Handle(ctx, textUpdate("not a number")))
	assert.Empty(t, h.vitals.recorded)

	require.NoError(t, h.handler.Handle(ctx, textUpdate("105 118/76 70")))
	require.Len(t, h.vitals.recorded, 1)
	assert.Equal(t, domain.VitalsSnapshot{UserID: "user-1", Glucose: 105, Systolic: 118, Diastolic: 76, HeartRate: 70}, h.vitals.recorded[0])
	assert.Equal(t, state.None, h.states.GetUserState(telegramID))
}

func TestChatMode(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	require.NoError(t, h.handler.Handle(ctx, callbackUpdate("chat_mode")))
	require.NoError(t, h.handler.Handle(ctx, textUpdate("Is rice ok?")))

	assert.Equal(t, "You asked: Is rice ok?", h.api.last())
	assert.Equal(t, state.Chatting, h.states.GetUserState(telegramID))

	require.NoError(t, h.handler.Handle(ctx, commandUpdate("cancel")))
	assert.Equal(t, state.None, h.states.GetUserState(telegramID))
}

func TestDashboardAndPlan(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	require.NoError(t, h.handler.Handle(ctx, callbackUpdate("dashboard")))
	assert.Contains(t, h.api.last(), "120/80 mmHg")

	require.NoError(t, h.handler.Handle(ctx, callbackUpdate("weekly_plan")))
	assert.Contains(t, h.api.last(), "Monday")
}

func TestTextWithoutStateShowsMenuHint(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.handler.Handle(context.Background(), textUpdate("hello")))

	assert.Equal(t, "Please use the menu to choose an action.", h.api.last())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
	assert.Equal(t, "🍽️...", truncate("🍽️🍽️🍽️", 5))
}
