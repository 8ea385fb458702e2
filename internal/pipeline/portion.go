package pipeline

import (
	"context"
	"math"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	"github.com/vladimiradmaev/glycocare/internal/logger"
)

// Fallback portions are drawn uniformly from [FallbackPortionMin, FallbackPortionMax).
const (
	FallbackPortionMin = 200
	FallbackPortionMax = 300
)

// MaxPortionGrams is the largest estimate accepted from the model.
const MaxPortionGrams = 5000

// estimatePortion never fails. Transport errors, non-2xx answers, unrecognized
// bodies and values outside [1, MaxPortionGrams] fall back to a random portion.
func (p *Pipeline) estimatePortion(ctx context.Context, image domain.MealImage, dish string) domain.PortionEstimate {
	ctx, span := p.tracer.Start(ctx, "pipeline.estimate_portion")
	defer span.End()

	log := logger.WithContext(ctx)

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	reply, err := p.portion.EstimatePortion(callCtx, image, dish)
	switch {
	case err != nil:
		log.Warn("Portion estimation failed, using fallback", "error", err)
	case !reply.Recognized():
		log.Warn("Portion estimator returned an unrecognized body, using fallback")
	default:
		if grams := math.Round(reply.Value); grams >= 1 && grams <= MaxPortionGrams {
			span.SetAttributes(attribute.Float64("portion_g", grams), attribute.Bool("fallback", false))
			log.Debug("Portion estimated", "portion_g", grams)
			return domain.PortionEstimate{Grams: grams}
		}
		log.Warn("Portion estimator returned an implausible value, using fallback", "value", reply.Value)
	}

	grams := FallbackPortion(p.rand)
	span.SetAttributes(attribute.Float64("portion_g", grams), attribute.Bool("fallback", true))
	return domain.PortionEstimate{Grams: grams, Fallback: true}
}

// FallbackPortion draws a whole-gram portion in [200, 300).
func FallbackPortion(r RandomSource) float64 {
	return float64(FallbackPortionMin + r.IntN(FallbackPortionMax-FallbackPortionMin))
}
