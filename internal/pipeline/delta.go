package pipeline

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	"github.com/vladimiradmaev/glycocare/internal/logger"
	"github.com/vladimiradmaev/glycocare/internal/utils"
)

// DefaultDelta is kept when the regressor answers with a body it cannot read.
const DefaultDelta = 15.0

const (
	highCarbFraction    = 0.5
	mediumCarbFraction  = 0.3
	defaultCarbFraction = 0.2

	glucosePerCarbGram = 0.15
	diabetesMultiplier = 1.5
)

// Checked in order; the high-carbohydrate set wins when both match.
var (
	highCarbKeywords   = []string{"biryani", "rice", "pasta", "bread", "noodles", "potato", "pizza"}
	mediumCarbKeywords = []string{"chicken", "fish", "curry", "dal", "beans"}
)

// predictDelta never fails. Transport errors and non-2xx answers run the
// carbohydrate heuristic. An unrecognized body keeps DefaultDelta, unlike
// the portion stage which falls back on any failure.
func (p *Pipeline) predictDelta(ctx context.Context, dish string, portionG, currentGlucose float64, profile domain.UserProfile) domain.GlucoseDeltaEstimate {
	ctx, span := p.tracer.Start(ctx, "pipeline.predict_delta")
	defer span.End()

	log := logger.WithContext(ctx)

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	estimate := domain.GlucoseDeltaEstimate{Delta: DefaultDelta, Source: domain.DeltaFromDefault}

	reply, err := p.regressor.PredictDelta(callCtx, domain.DeltaFeatures{
		Dish:           dish,
		PortionG:       portionG,
		CurrentGlucose: currentGlucose,
		Age:            profile.Age,
		Weight:         profile.Weight,
		HasDiabetes:    profile.HasDiabetes(),
	})
	switch {
	case err != nil:
		log.Warn("Glucose regression failed, using carbohydrate heuristic", "error", err)
		estimate = domain.GlucoseDeltaEstimate{
			Delta:  CarbHeuristicDelta(dish, portionG, profile.HasDiabetes()),
			Source: domain.DeltaFromHeuristic,
		}
	case reply.Recognized():
		estimate = domain.GlucoseDeltaEstimate{Delta: reply.Value, Source: domain.DeltaFromModel}
	default:
		log.Warn("Glucose regression returned an unrecognized body, keeping default delta", "delta", DefaultDelta)
	}

	estimate.Delta = utils.RoundTo(estimate.Delta, 1)
	span.SetAttributes(
		attribute.Float64("delta", estimate.Delta),
		attribute.String("source", string(estimate.Source)),
	)
	return estimate
}

// CarbFraction estimates the carbohydrate share of a dish from its name.
func CarbFraction(dish string) float64 {
	lower := strings.ToLower(dish)
	switch {
	case containsAny(lower, highCarbKeywords):
		return highCarbFraction
	case containsAny(lower, mediumCarbKeywords):
		return mediumCarbFraction
	default:
		return defaultCarbFraction
	}
}

// CarbHeuristicDelta is the unrounded rule-based glucose delta. It is never negative.
func CarbHeuristicDelta(dish string, portionG float64, hasDiabetes bool) float64 {
	if portionG <= 0 {
		return 0
	}
	carbGrams := portionG * CarbFraction(dish)
	multiplier := 1.0
	if hasDiabetes {
		multiplier = diabetesMultiplier
	}
	return carbGrams * glucosePerCarbGram * multiplier
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
