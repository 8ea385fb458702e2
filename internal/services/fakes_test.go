package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vladimiradmaev/glycocare/internal/domain"
)

var errStore = errors.New("store unavailable")

type memStore struct {
	mu        sync.Mutex
	meals     []domain.MealRecord
	vitals    []domain.VitalsSnapshot
	failWrite bool
	failRead  bool
}

func (m *memStore) AppendMeal(ctx context.Context, meal *domain.MealRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return errStore
	}
	m.meals = append(m.meals, *meal)
	return nil
}

func (m *memStore) AppendVitals(ctx context.Context, v *domain.VitalsSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return errStore
	}
	m.vitals = append(m.vitals, *v)
	return nil
}

func (m *memStore) LatestVitals(ctx context.Context, userID string) (*domain.VitalsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead {
		return nil, errStore
	}
	for i := len(m.vitals) - 1; i >= 0; i-- {
		if m.vitals[i].UserID == userID {
			v := m.vitals[i]
			return &v, nil
		}
	}
	return nil, nil
}

func (m *memStore) RecentMeals(ctx context.Context, userID string, limit int) ([]domain.MealRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead {
		return nil, errStore
	}
	var out []domain.MealRecord
	for i := len(m.meals) - 1; i >= 0 && len(out) < limit; i-- {
		if m.meals[i].UserID == userID {
			out = append(out, m.meals[i])
		}
	}
	return out, nil
}

func (m *memStore) VitalsSince(ctx context.Context, userID string, since time.Time) ([]domain.VitalsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead {
		return nil, errStore
	}
	var out []domain.VitalsSnapshot
	for _, v := range m.vitals {
		if v.UserID == userID && !v.Timestamp.Before(since) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memStore) MealsSince(ctx context.Context, userID string, since time.Time) ([]domain.MealRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead {
		return nil, errStore
	}
	var out []domain.MealRecord
	for _, meal := range m.meals {
		if meal.UserID == userID && !meal.Timestamp.Before(since) {
			out = append(out, meal)
		}
	}
	return out, nil
}

type memProfiles struct {
	profiles map[string]domain.UserProfile
	err      error
}

func (m *memProfiles) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memProfiles) SaveProfile(ctx context.Context, p *domain.UserProfile) error {
	if m.err != nil {
		return m.err
	}
	if m.profiles == nil {
		m.profiles = map[string]domain.UserProfile{}
	}
	m.profiles[p.UserID] = *p
	return nil
}

func (m *memProfiles) GetOrCreateByTelegramID(ctx context.Context, telegramID int64, name string) (*domain.UserProfile, error) {
	for _, p := range m.profiles {
		if p.TelegramID != nil && *p.TelegramID == telegramID {
			return &p, nil
		}
	}
	p := domain.UserProfile{UserID: "tg-user", Name: name, TelegramID: &telegramID}
	return &p, m.SaveProfile(ctx, &p)
}

type memHistory struct {
	messages []domain.ChatMessage
	fail     bool
}

func (m *memHistory) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	if m.fail {
		return errStore
	}
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memHistory) RecentMessages(ctx context.Context, userID string, limit int) ([]domain.ChatMessage, error) {
	if m.fail {
		return nil, errStore
	}
	start := 0
	if len(m.messages) > limit {
		start = len(m.messages) - limit
	}
	return append([]domain.ChatMessage(nil), m.messages[start:]...), nil
}

type fakeClassifier struct {
	labels []domain.LabelScore
	err    error
}

func (f fakeClassifier) Classify(ctx context.Context, image domain.MealImage) ([]domain.LabelScore, error) {
	return f.labels, f.err
}

type fakePortion struct{ reply domain.ModelReply }

func (f fakePortion) EstimatePortion(ctx context.Context, image domain.MealImage, dish string) (domain.ModelReply, error) {
	return f.reply, nil
}

type fakeRegressor struct {
	mu       sync.Mutex
	reply    domain.ModelReply
	err      error
	features domain.DeltaFeatures
}

func (f *fakeRegressor) PredictDelta(ctx context.Context, features domain.DeltaFeatures) (domain.ModelReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.features = features
	return f.reply, f.err
}

type fakeArchive struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeArchive) Put(ctx context.Context, userID string, image domain.MealImage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	key := "meals/" + userID + "/photo.jpg"
	f.keys = append(f.keys, key)
	return key, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(userID string, event any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := event.(domain.Event); ok {
		p.events = append(p.events, e)
	}
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixedRand struct{ v int }

func (r fixedRand) IntN(n int) int { return r.v % n }
