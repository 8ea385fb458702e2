package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
	"github.com/vladimiradmaev/glycocare/internal/logger"
	"github.com/vladimiradmaev/glycocare/internal/pipeline"
)

const (
	defaultPersistTimeout = 10 * time.Second
	defaultRecentMeals    = 20

	EventMealAnalyzed = "meal_analyzed"
	EventGlucoseAlert = "glucose_alert"
)

// Analyzer runs the inference pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, in pipeline.Input) (*pipeline.Outcome, error)
}

type MealAnalysisService struct {
	analyzer       Analyzer
	profiles       domain.ProfileStore
	store          domain.TimeSeriesStore
	archive        domain.ImageArchive
	events         domain.EventPublisher
	persistTimeout time.Duration

	pending sync.WaitGroup
}

type MealAnalysisOption func(*MealAnalysisService)

// WithImageArchive stores every analyzed photo.
func WithImageArchive(a domain.ImageArchive) MealAnalysisOption {
	return func(s *MealAnalysisService) { s.archive = a }
}

// WithEventPublisher announces analyses to realtime clients.
func WithEventPublisher(p domain.EventPublisher) MealAnalysisOption {
	return func(s *MealAnalysisService) { s.events = p }
}

// WithPersistTimeout bounds the background writes of one analysis.
func WithPersistTimeout(d time.Duration) MealAnalysisOption {
	return func(s *MealAnalysisService) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

func NewMealAnalysisService(analyzer Analyzer, profiles domain.ProfileStore, store domain.TimeSeriesStore, opts ...MealAnalysisOption) *MealAnalysisService {
	s := &MealAnalysisService{
		analyzer:       analyzer,
		profiles:       profiles,
		store:          store,
		persistTimeout: defaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeMeal runs the pipeline for userID and returns the result without
// waiting for persistence. Write failures are logged and never reach the caller.
func (s *MealAnalysisService) AnalyzeMeal(ctx context.Context, userID string, image domain.MealImage, vitals domain.VitalsSnapshot) (*domain.AnalysisResult, error) {
	if !vitals.HasGlucose() {
		return nil, apperrors.NewValidationError("Current glucose reading is required")
	}

	log := logger.WithContext(ctx)
	profile := s.loadProfile(ctx, userID)

	outcome, err := s.analyzer.Analyze(ctx, pipeline.Input{
		Image:   image,
		Vitals:  vitals,
		Profile: profile,
	})
	if err != nil {
		return nil, err
	}

	meal := domain.MealRecord{
		UserID:     userID,
		Dish:       outcome.Result.Dish,
		PortionG:   outcome.Result.PortionG,
		Delta:      outcome.Result.Delta,
		Confidence: outcome.Classification.Confidence,
		Advice:     outcome.Result.Advice,
		Tier:       outcome.Result.Tier,
		Timestamp:  time.Now().UTC(),
	}
	vitals.UserID = userID
	if vitals.Timestamp.IsZero() {
		vitals.Timestamp = meal.Timestamp
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		// Detached so the writes outlive the request; values such as the request id are kept.
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
		defer cancel()
		s.persist(bg, meal, vitals, image, outcome.ProjectedGlucose)
	}()

	log.Info("Meal analysis completed", "dish", meal.Dish, "tier", meal.Tier)
	result := outcome.Result
	return &result, nil
}

// Wait blocks until all background writes have finished.
func (s *MealAnalysisService) Wait() {
	s.pending.Wait()
}

func (s *MealAnalysisService) loadProfile(ctx context.Context, userID string) domain.UserProfile {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to load profile, using defaults", "error", err)
		return domain.DefaultProfile(userID)
	}
	if profile == nil {
		return domain.DefaultProfile(userID)
	}
	p := profile.WithDefaults()
	p.UserID = userID
	return p
}

func (s *MealAnalysisService) persist(ctx context.Context, meal domain.MealRecord, vitals domain.VitalsSnapshot, image domain.MealImage, projected float64) {
	log := logger.WithContext(ctx)

	if s.archive != nil {
		key, err := s.archive.Put(ctx, meal.UserID, image)
		if err != nil {
			log.Error("Failed to archive meal photo", "error", err)
		} else {
			meal.ImageKey = key
		}
	}

	if err := s.store.AppendMeal(ctx, &meal); err != nil {
		log.Error("Failed to save meal", "error", err)
	}
	if err := s.store.AppendVitals(ctx, &vitals); err != nil {
		log.Error("Failed to save vitals", "error", err)
	}

	if s.events == nil {
		return
	}
	s.events.Publish(meal.UserID, domain.Event{Type: EventMealAnalyzed, Data: meal})
	if meal.Tier == domain.TierHigh {
		s.events.Publish(meal.UserID, domain.Event{Type: EventGlucoseAlert, Data: map[string]any{
			"dish":              meal.Dish,
			"delta":             meal.Delta,
			"projected_glucose": projected,
		}})
	}
}

// SaveMeal stores a meal the client has confirmed, with optional vitals.
func (s *MealAnalysisService) SaveMeal(ctx context.Context, meal *domain.MealRecord, vitals *domain.VitalsSnapshot) error {
	meal.Dish = strings.TrimSpace(meal.Dish)
	if err := validateMeal(meal); err != nil {
		return err
	}

	if err := s.store.AppendMeal(ctx, meal); err != nil {
		return apperrors.NewDatabaseError(err)
	}

	if vitals == nil || !vitals.HasGlucose() {
		return nil
	}
	vitals.UserID = meal.UserID
	if err := s.store.AppendVitals(ctx, vitals); err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// RecentMeals returns the user's newest meals, 20 when limit is not positive.
func (s *MealAnalysisService) RecentMeals(ctx context.Context, userID string, limit int) ([]domain.MealRecord, error) {
	if limit <= 0 {
		limit = defaultRecentMeals
	}
	meals, err := s.store.RecentMeals(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return meals, nil
}

func validateMeal(meal *domain.MealRecord) error {
	var errs []error
	if meal.Dish == "" {
		errs = append(errs, errors.New("dish is required"))
	}
	if meal.PortionG <= 0 {
		errs = append(errs, errors.New("portion must be positive"))
	}
	if meal.Confidence < 0 || meal.Confidence > 1 {
		errs = append(errs, errors.New("confidence must be between 0 and 1"))
	}
	switch meal.Tier {
	case domain.TierNormal, domain.TierBorderline, domain.TierHigh:
	default:
		errs = append(errs, errors.New("status must be normal, borderline or high"))
	}
	if len(errs) > 0 {
		return apperrors.NewValidationError(errors.Join(errs...).Error())
	}
	return nil
}
