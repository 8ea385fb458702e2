package pipeline

import (
	"fmt"
	"strconv"

	"github.com/vladimiradmaev/glycocare/internal/domain"
)

// Tier thresholds in mg/dL.
const (
	highProjectedGlucose       = 180.0
	highDelta                  = 40.0
	borderlineProjectedGlucose = 140.0
	borderlineDelta            = 20.0
)

// ClassifyTier derives the risk tier from the current glucose and the
// predicted delta. The first matching rule wins.
func ClassifyTier(currentGlucose, delta float64) domain.RiskTier {
	projected := currentGlucose + delta
	switch {
	case projected >= highProjectedGlucose || delta >= highDelta:
		return domain.TierHigh
	case projected >= borderlineProjectedGlucose || delta >= borderlineDelta:
		return domain.TierBorderline
	default:
		return domain.TierNormal
	}
}

type adviceTemplate func(dish string, delta string) string

// adviceTemplates holds the fixed template pair of every tier.
var adviceTemplates = map[domain.RiskTier][2]adviceTemplate{
	domain.TierHigh: {
		func(dish, delta string) string {
			return fmt.Sprintf("This %s will cause a significant glucose spike (+%s mg/dL). Consider eating half the portion and adding more vegetables.", dish, delta)
		},
		func(string, string) string {
			return "High glucose impact detected. This meal may not be suitable given your current glucose levels. Consider a lower-carb alternative."
		},
	},
	domain.TierBorderline: {
		func(_, delta string) string {
			return fmt.Sprintf("Moderate glucose impact (+%s mg/dL). Consider taking a 10-minute walk after eating to help regulate glucose.", delta)
		},
		func(string, string) string {
			return "This meal is acceptable but could be improved. Try reducing the portion size by 25% or adding more fiber-rich vegetables."
		},
	},
	domain.TierNormal: {
		func(_, delta string) string {
			return fmt.Sprintf("Good choice! This meal should have a manageable impact on your glucose (+%s mg/dL).", delta)
		},
		func(string, string) string {
			return "This is a well-balanced meal for your health goals. Maintain this portion size for optimal results."
		},
	},
}

const (
	sodiumNote      = " Monitor sodium intake as you have blood pressure concerns."
	heartHealthNote = " Choose lean proteins and healthy fats for heart health."
)

// Advice picks one of the tier's two templates with r and appends the
// profile-conditioned safety notes.
func Advice(tier domain.RiskTier, dish string, delta float64, profile domain.UserProfile, r RandomSource) string {
	templates, ok := adviceTemplates[tier]
	if !ok {
		templates = adviceTemplates[domain.TierNormal]
	}

	advice := templates[r.IntN(len(templates))](dish, formatDelta(delta))

	if profile.HasBloodPressureCondition {
		advice += sodiumNote
	}
	if profile.HasHeartCondition {
		advice += heartHealthNote
	}
	return advice
}

// formatDelta prints the shortest decimal form, so 15 reads "15" and 22.5 reads "22.5".
func formatDelta(delta float64) string {
	return strconv.FormatFloat(delta, 'f', -1, 64)
}
