package pipeline

import (
	"strings"

	"github.com/vladimiradmaev/glycocare/internal/domain"
)

var tierTips = map[domain.RiskTier][]string{
	domain.TierHigh: {
		"Take a 15-minute walk after eating",
		"Drink plenty of water",
		"Monitor glucose every 2 hours",
	},
	domain.TierBorderline: {
		"Take a 10-minute walk after eating",
		"Drink water with your meal",
		"Monitor glucose after 2 hours",
	},
	domain.TierNormal: {
		"Maintain this portion size",
		"Stay hydrated throughout the day",
		"Continue making healthy choices",
	},
}

// Tips returns the three fixed tips of a tier.
func Tips(tier domain.RiskTier) []string {
	tips, ok := tierTips[tier]
	if !ok {
		tips = tierTips[domain.TierNormal]
	}
	return append([]string(nil), tips...)
}

type swapRule struct {
	keywords []string
	swaps    []string
}

// Every matching rule contributes; rules are not exclusive.
var swapRules = []swapRule{
	{
		keywords: []string{"rice", "biryani"},
		swaps: []string{
			"Replace white rice with brown rice or quinoa",
			"Add more vegetables to reduce rice portion",
		},
	},
	{
		keywords: []string{"bread", "roti"},
		swaps: []string{
			"Choose whole grain bread instead",
			"Reduce portion size by half",
		},
	},
	{
		keywords: []string{"fried"},
		swaps: []string{
			"Try grilled or baked version",
			"Use air fryer instead of deep frying",
		},
	},
}

var genericSwaps = []string{
	"Add more leafy greens",
	"Use healthier cooking oils",
	"Reduce salt and sugar content",
}

// FoodSwaps returns substitution suggestions for a dish label.
func FoodSwaps(dish string) []string {
	lower := strings.ToLower(dish)

	var swaps []string
	for _, rule := range swapRules {
		if containsAny(lower, rule.keywords) {
			swaps = append(swaps, rule.swaps...)
		}
	}

	if len(swaps) == 0 {
		return append([]string(nil), genericSwaps...)
	}
	return swaps
}
