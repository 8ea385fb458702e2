package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
)

func TestDashboardDefaults(t *testing.T) {
	svc := NewVitalsService(&memStore{})

	d, err := svc.Dashboard(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, &domain.Dashboard{Glucose: 120, Systolic: 120, Diastolic: 80, HeartRate: 75}, d)
}

func TestDashboardUsesLatestReadings(t *testing.T) {
	store := &memStore{}
	svc := NewVitalsService(store)
	require.NoError(t, svc.RecordVitals(context.Background(), &domain.VitalsSnapshot{UserID: userID, Glucose: 98, Systolic: 118, Diastolic: 76, HeartRate: 64}))
	require.NoError(t, svc.RecordVitals(context.Background(), &domain.VitalsSnapshot{UserID: userID, Glucose: 143}))
	store.meals = []domain.MealRecord{{UserID: userID, Dish: "Oats", Tier: domain.TierNormal}}

	d, err := svc.Dashboard(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, 143.0, d.Glucose)
	assert.Equal(t, 120, d.Systolic)
	assert.Equal(t, 75, d.HeartRate)
	require.NotNil(t, d.LatestMeal)
	assert.Equal(t, "Oats", d.LatestMeal.Dish)
	assert.False(t, store.vitals[1].Timestamp.IsZero())
}

func TestRecordVitalsValidation(t *testing.T) {
	svc := NewVitalsService(&memStore{})

	err := svc.RecordVitals(context.Background(), &domain.VitalsSnapshot{UserID: userID})
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))

	err = svc.RecordVitals(context.Background(), &domain.VitalsSnapshot{UserID: userID, Glucose: 100, HeartRate: -1})
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))

	err = svc.RecordVitals(context.Background(), &domain.VitalsSnapshot{UserID: userID, Glucose: math.NaN()})
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))

	err = svc.RecordVitals(context.Background(), &domain.VitalsSnapshot{UserID: userID, Glucose: math.Inf(1)})
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
}

func TestDashboardStoreFailure(t *testing.T) {
	_, err := NewVitalsService(&memStore{failRead: true}).Dashboard(context.Background(), userID)
	assert.Equal(t, apperrors.ErrorTypeDatabase, apperrors.TypeOf(err))
}

func TestWeeklyPlan(t *testing.T) {
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	store := &memStore{
		vitals: []domain.VitalsSnapshot{
			{UserID: userID, Glucose: 150, Systolic: 140, Diastolic: 90, Timestamp: now.Add(-time.Hour)},
			{UserID: userID, Glucose: 145, Systolic: 131, Diastolic: 85, Timestamp: now.Add(-48 * time.Hour)},
			{UserID: userID, Glucose: 90, Timestamp: now.Add(-10 * 24 * time.Hour)},
		},
		meals: []domain.MealRecord{
			{UserID: userID, Delta: 12, Tier: domain.TierNormal, Timestamp: now.Add(-time.Hour)},
			{UserID: userID, Delta: 41, Tier: domain.TierHigh, Timestamp: now.Add(-2 * time.Hour)},
		},
	}
	svc := NewPlannerService(store)
	svc.now = func() time.Time { return now }

	plan, err := svc.WeeklyPlan(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, plan.Days, 7)
	assert.Equal(t, domain.MealPlanDay{
		Day:       "Monday",
		Breakfast: "Steel-cut oatmeal with berries and almonds",
		Lunch:     "Grilled chicken salad with olive oil dressing",
		Dinner:    "Baked salmon with asparagus and sweet potato",
	}, plan.Days[0])
	assert.Equal(t, "Sunday", plan.Days[6].Day)
	assert.Equal(t, "Chicken soup with vegetables and barley", plan.Days[6].Dinner)

	assert.Equal(t, domain.PlanSummary{
		AvgGlucose:        147.5,
		AvgGlucoseChange:  26.5,
		AvgBloodPressure:  "136/88",
		HealthyMealsRatio: 0.5,
		TotalMeals:        2,
		Recommendations: []string{
			"Focus on low-GI foods to reduce average glucose",
			"Reduce sodium intake to lower blood pressure",
			"Try to increase the proportion of healthy meals",
		},
	}, plan.Summary)
}

func TestSummarizeEmptyWeek(t *testing.T) {
	s := Summarize(nil, nil)

	assert.Equal(t, 0.0, s.AvgGlucose)
	assert.Equal(t, "0/0", s.AvgBloodPressure)
	assert.Equal(t, 0, s.TotalMeals)
	assert.Equal(t, []string{
		"Your glucose levels are well-managed",
		"Your blood pressure is in a good range",
		"Try to increase the proportion of healthy meals",
	}, s.Recommendations)
}

func TestSummarizeHealthyWeek(t *testing.T) {
	s := Summarize(
		[]domain.VitalsSnapshot{{Glucose: 101, Systolic: 120, Diastolic: 79}, {Glucose: 104, Systolic: 121, Diastolic: 80}},
		[]domain.MealRecord{{Delta: 5, Tier: domain.TierNormal}, {Delta: 6, Tier: domain.TierNormal}, {Delta: 25, Tier: domain.TierBorderline}},
	)

	assert.Equal(t, 102.5, s.AvgGlucose)
	assert.Equal(t, "121/80", s.AvgBloodPressure)
	assert.Equal(t, 0.67, s.HealthyMealsRatio)
	assert.Equal(t, 12.0, s.AvgGlucoseChange)
	assert.Equal(t, "Your glucose levels are well-managed", s.Recommendations[0])
	assert.Equal(t, "Your blood pressure is in a good range", s.Recommendations[1])
}
