package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
	"github.com/vladimiradmaev/glycocare/internal/utils"
)

const planWindow = 7 * 24 * time.Hour

var weekDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var lowGIBreakfasts = []string{
	"Steel-cut oatmeal with berries and almonds",
	"Greek yogurt with chia seeds and walnuts",
	"Scrambled eggs with spinach and whole grain toast",
	"Smoothie bowl with flaxseeds and fresh berries",
	"Avocado toast on whole grain bread with poached egg",
	"Cottage cheese with cucumber and tomatoes",
	"Protein pancakes with sugar-free syrup and berries",
}

var lowGILunches = []string{
	"Grilled chicken salad with olive oil dressing",
	"Lentil soup with mixed vegetables",
	"Quinoa bowl with roasted vegetables and chickpeas",
	"Grilled fish with steamed broccoli and brown rice",
	"Turkey and avocado wrap in whole wheat tortilla",
	"Vegetable stir-fry with tofu and cauliflower rice",
	"Chicken breast with sweet potato and green beans",
}

var lowGIDinners = []string{
	"Baked salmon with asparagus and sweet potato",
	"Chicken stir-fry with lots of vegetables",
	"Vegetable curry with cauliflower rice",
	"Turkey meatballs with zucchini noodles",
	"Grilled lean beef with roasted Brussels sprouts",
	"Baked cod with quinoa and steamed vegetables",
	"Chicken soup with vegetables and barley",
}

// Recommendation thresholds.
const (
	glucoseTarget      = 140.0
	systolicTarget     = 130.0
	healthyMealsTarget = 0.7
)

type PlannerService struct {
	store domain.TimeSeriesStore
	now   func() time.Time
}

func NewPlannerService(store domain.TimeSeriesStore) *PlannerService {
	return &PlannerService{store: store, now: time.Now}
}

// WeeklyPlan returns a rotating low-GI plan and a summary of the last seven days.
func (s *PlannerService) WeeklyPlan(ctx context.Context, userID string) (*domain.WeeklyPlan, error) {
	since := s.now().UTC().Add(-planWindow)

	vitals, err := s.store.VitalsSince(ctx, userID, since)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	meals, err := s.store.MealsSince(ctx, userID, since)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	days := make([]domain.MealPlanDay, len(weekDays))
	for i, day := range weekDays {
		days[i] = domain.MealPlanDay{
			Day:       day,
			Breakfast: lowGIBreakfasts[i%len(lowGIBreakfasts)],
			Lunch:     lowGILunches[i%len(lowGILunches)],
			Dinner:    lowGIDinners[i%len(lowGIDinners)],
		}
	}

	return &domain.WeeklyPlan{Days: days, Summary: Summarize(vitals, meals)}, nil
}

// Summarize aggregates a week of readings. Missing pressure readings count as zero.
func Summarize(vitals []domain.VitalsSnapshot, meals []domain.MealRecord) domain.PlanSummary {
	var avgGlucose, avgSystolic, avgDiastolic float64
	if n := float64(len(vitals)); n > 0 {
		for _, v := range vitals {
			avgGlucose += v.Glucose
			avgSystolic += float64(v.Systolic)
			avgDiastolic += float64(v.Diastolic)
		}
		avgGlucose /= n
		avgSystolic /= n
		avgDiastolic /= n
	}

	var avgChange, healthyRatio float64
	if n := float64(len(meals)); n > 0 {
		healthy := 0
		for _, m := range meals {
			avgChange += m.Delta
			if m.Tier == domain.TierNormal {
				healthy++
			}
		}
		avgChange /= n
		healthyRatio = float64(healthy) / n
	}

	recommendations := []string{
		"Your glucose levels are well-managed",
		"Your blood pressure is in a good range",
		"Great job maintaining healthy eating habits!",
	}
	if avgGlucose > glucoseTarget {
		recommendations[0] = "Focus on low-GI foods to reduce average glucose"
	}
	if avgSystolic > systolicTarget {
		recommendations[1] = "Reduce sodium intake to lower blood pressure"
	}
	if healthyRatio < healthyMealsTarget {
		recommendations[2] = "Try to increase the proportion of healthy meals"
	}

	return domain.PlanSummary{
		AvgGlucose:        utils.RoundTo(avgGlucose, 1),
		AvgGlucoseChange:  utils.RoundTo(avgChange, 1),
		AvgBloodPressure:  fmt.Sprintf("%d/%d", int(math.Round(avgSystolic)), int(math.Round(avgDiastolic))),
		HealthyMealsRatio: utils.RoundTo(healthyRatio, 2),
		TotalMeals:        len(meals),
		Recommendations:   recommendations,
	}
}
