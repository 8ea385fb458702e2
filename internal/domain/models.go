package domain

import (
	"math"
	"time"
)

// VitalsSnapshot is a set of readings supplied with an analysis request.
type VitalsSnapshot struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Glucose   float64   `json:"glucose_level"` // mg/dL
	Systolic  int       `json:"bp_systolic"`   // mmHg
	Diastolic int       `json:"bp_diastolic"`  // mmHg
	HeartRate int       `json:"heart_rate"`    // bpm
	Timestamp time.Time `json:"timestamp"`
}

// HasGlucose reports whether a usable glucose reading is present.
func (v VitalsSnapshot) HasGlucose() bool {
	return v.Glucose > 0 && !math.IsInf(v.Glucose, 0)
}

// HasBloodPressure reports whether both pressure readings were supplied.
func (v VitalsSnapshot) HasBloodPressure() bool {
	return v.Systolic > 0 && v.Diastolic > 0
}

// UserProfile holds the physiological attributes used by the pipeline.
type UserProfile struct {
	UserID                    string
	Name                      string
	TelegramID                *int64
	Age                       int
	Weight                    float64 // kg
	DiabetesType              *string
	HasBloodPressureCondition bool
	HasHeartCondition         bool
	Comorbidities             []string
}

// Neutral values used when a user has no stored profile.
const (
	DefaultAge    = 30
	DefaultWeight = 70.0
)

// DefaultProfile returns the neutral profile for users without one.
func DefaultProfile(userID string) UserProfile {
	return UserProfile{UserID: userID, Age: DefaultAge, Weight: DefaultWeight}
}

// HasDiabetes reports whether a diabetes diagnosis is recorded.
func (p UserProfile) HasDiabetes() bool {
	return p.DiabetesType != nil
}

// WithDefaults fills zero age and weight with the neutral defaults.
func (p UserProfile) WithDefaults() UserProfile {
	if p.Age <= 0 {
		p.Age = DefaultAge
	}
	if p.Weight <= 0 {
		p.Weight = DefaultWeight
	}
	return p
}

// LabelScore is one entry of a classifier reply.
type LabelScore struct {
	Label string
	Score float64
}

// ClassificationResult is the top-1 dish and its confidence in [0,1].
type ClassificationResult struct {
	DishLabel  string
	Confidence float64
}

// PortionEstimate is the estimated meal weight in whole grams.
type PortionEstimate struct {
	Grams    float64
	Fallback bool
}

// GlucoseDeltaEstimate is the predicted glucose change in mg/dL, one decimal.
type GlucoseDeltaEstimate struct {
	Delta  float64
	Source DeltaSource
}

// DeltaSource records which path produced a glucose delta.
type DeltaSource string

const (
	DeltaFromModel     DeltaSource = "model"
	DeltaFromHeuristic DeltaSource = "heuristic"
	DeltaFromDefault   DeltaSource = "default"
)

// RiskTier is the discrete glycemic impact of a meal.
type RiskTier string

const (
	TierNormal     RiskTier = "normal"
	TierBorderline RiskTier = "borderline"
	TierHigh       RiskTier = "high"
)

// MealRecord is a completed analysis as stored in the time-series store.
type MealRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Dish       string    `json:"dish_name"`
	PortionG   int       `json:"portion_g"`
	Delta      float64   `json:"glucose_delta"`
	Confidence float64   `json:"confidence"` // 0..1
	Advice     string    `json:"advice"`
	Tier       RiskTier  `json:"status"`
	ImageKey   string    `json:"image_key,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// AnalysisResult is returned to the caller after a successful analysis.
type AnalysisResult struct {
	Dish              string
	PortionG          int
	Delta             float64
	ConfidencePercent int
	Advice            string
	Tier              RiskTier
	Tips              []string
	FoodSwaps         []string
}

// ChatMessage is one turn of the advisor conversation.
type ChatMessage struct {
	UserID    string
	Role      string // "user" or "assistant"
	Content   string
	Timestamp time.Time
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// MealPlanDay is one day of a weekly plan.
type MealPlanDay struct {
	Day       string `json:"day"`
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
}

// PlanSummary aggregates the last week of vitals and meals.
type PlanSummary struct {
	AvgGlucose        float64  `json:"avg_glucose"`
	AvgGlucoseChange  float64  `json:"avg_glucose_change"`
	AvgBloodPressure  string   `json:"avg_bp"`
	HealthyMealsRatio float64  `json:"healthy_meals_ratio"`
	TotalMeals        int      `json:"total_meals"`
	Recommendations   []string `json:"recommendations"`
}

// WeeklyPlan is the planner output.
type WeeklyPlan struct {
	Days    []MealPlanDay `json:"weekly_plan"`
	Summary PlanSummary   `json:"summary"`
}

// Dashboard is the latest state shown on the home screen.
type Dashboard struct {
	Glucose    float64     `json:"glucose"`
	Systolic   int         `json:"systolic"`
	Diastolic  int         `json:"diastolic"`
	HeartRate  int         `json:"heartRate"`
	LatestMeal *MealRecord `json:"latestMeal"`
}

// MealImage is the raw photo as received from the caller.
type MealImage struct {
	Data        []byte
	ContentType string
}

// ChatReply is the advisor's answer to one user message.
type ChatReply struct {
	Message        string  `json:"message"`
	Confidence     float64 `json:"confidence"`
	Recommendation string  `json:"recommendation"`
}

// Event is pushed to a user's realtime clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
