package pipeline

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
	"github.com/vladimiradmaev/glycocare/internal/logger"
)

// UnknownDish is reported when the classifier answers with no labels.
const UnknownDish = "unknown"

// classify runs the classifier stage. Any classifier error aborts the pipeline
// with a classification error; a deadline is kept in its chain as ErrTimeout.
// An empty label list is not an error.
func (p *Pipeline) classify(ctx context.Context, image domain.MealImage) (domain.ClassificationResult, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.classify")
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	labels, err := p.classifier.Classify(callCtx, image)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classification failed")
		if errors.Is(err, context.DeadlineExceeded) {
			err = apperrors.NewTimeoutError(err, "classify")
		}
		return domain.ClassificationResult{}, apperrors.NewClassificationError(err)
	}

	result := TopLabel(labels)
	logger.Debug("Dish classified", "dish", result.DishLabel, "labels", len(labels))
	span.SetAttributes(
		attribute.String("dish", result.DishLabel),
		attribute.Float64("confidence", result.Confidence),
	)
	if result.DishLabel == UnknownDish {
		logger.WithContext(ctx).Warn("Classifier returned no labels, continuing with unknown dish")
	}
	return result, nil
}

// TopLabel picks the first entry of a classifier reply. The classifier
// contract orders entries by score, so no sorting happens here.
func TopLabel(labels []domain.LabelScore) domain.ClassificationResult {
	if len(labels) == 0 {
		return domain.ClassificationResult{DishLabel: UnknownDish, Confidence: 0}
	}

	top := labels[0]
	label := strings.TrimSpace(top.Label)
	if label == "" {
		label = UnknownDish
	}
	return domain.ClassificationResult{DishLabel: label, Confidence: clampUnit(top.Score)}
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
