// Package pipeline turns a meal photo and current vitals into a dish label,
// a portion, a predicted glucose delta, a risk tier and guidance.
//
// The stages run strictly in order: classifier, portion, delta, advisory.
// Only the classifier is a hard dependency.
package pipeline

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
	"github.com/vladimiradmaev/glycocare/internal/logger"
)

const defaultCallTimeout = 5 * time.Second

// Pipeline is safe for concurrent use; it holds no per-request state.
type Pipeline struct {
	classifier  domain.Classifier
	portion     domain.PortionEstimator
	regressor   domain.DeltaRegressor
	rand        RandomSource
	callTimeout time.Duration
	tracer      trace.Tracer
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithRandom replaces the random source used for fallbacks and advice.
func WithRandom(r RandomSource) Option {
	return func(p *Pipeline) { p.rand = r }
}

// WithCallTimeout bounds every external call.
func WithCallTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.callTimeout = d
		}
	}
}

// WithTracer sets the tracer used for stage spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

func New(classifier domain.Classifier, portion domain.PortionEstimator, regressor domain.DeltaRegressor, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier:  classifier,
		portion:     portion,
		regressor:   regressor,
		rand:        DefaultRandom(),
		callTimeout: defaultCallTimeout,
		tracer:      otel.Tracer("github.com/vladimiradmaev/glycocare/internal/pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Input is everything a single analysis needs.
type Input struct {
	Image   domain.MealImage
	Vitals  domain.VitalsSnapshot
	Profile domain.UserProfile
}

// Outcome is the caller-visible result plus the intermediate estimates
// needed to persist a MealRecord.
type Outcome struct {
	Result           domain.AnalysisResult
	Classification   domain.ClassificationResult
	Portion          domain.PortionEstimate
	Delta            domain.GlucoseDeltaEstimate
	ProjectedGlucose float64
}

// Analyze runs the four stages. The only error it returns is a validation
// error for an empty image or a classification error.
func (p *Pipeline) Analyze(ctx context.Context, in Input) (*Outcome, error) {
	if len(in.Image.Data) == 0 {
		return nil, apperrors.NewValidationError("Missing image payload")
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.analyze")
	defer span.End()

	profile := in.Profile.WithDefaults()
	glucose := in.Vitals.Glucose

	classification, err := p.classify(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	portion := p.estimatePortion(ctx, in.Image, classification.DishLabel)
	delta := p.predictDelta(ctx, classification.DishLabel, portion.Grams, glucose, profile)

	tier := ClassifyTier(glucose, delta.Delta)
	advice := Advice(tier, classification.DishLabel, delta.Delta, profile, p.rand)

	span.SetAttributes(attribute.String("tier", string(tier)))
	logger.WithContext(ctx).Info("Meal analyzed",
		"dish", classification.DishLabel,
		"portion_g", portion.Grams,
		"portion_fallback", portion.Fallback,
		"delta", delta.Delta,
		"delta_source", delta.Source,
		"tier", tier,
	)

	return &Outcome{
		Result: domain.AnalysisResult{
			Dish:              classification.DishLabel,
			PortionG:          int(portion.Grams),
			Delta:             delta.Delta,
			ConfidencePercent: ConfidencePercent(classification.Confidence),
			Advice:            advice,
			Tier:              tier,
			Tips:              Tips(tier),
			FoodSwaps:         FoodSwaps(classification.DishLabel),
		},
		Classification:   classification,
		Portion:          portion,
		Delta:            delta,
		ProjectedGlucose: glucose + delta.Delta,
	}, nil
}

// ConfidencePercent scales a [0,1] score to an integer percentage.
func ConfidencePercent(score float64) int {
	return int(math.Round(clampUnit(score) * 100))
}
