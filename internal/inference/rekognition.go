package inference

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
)

const (
	rekognitionMaxLabels     = 5
	rekognitionMinConfidence = 50
)

// DetectLabelsAPI is the part of the Rekognition client the classifier uses.
type DetectLabelsAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RekognitionClassifier implements domain.Classifier with AWS Rekognition
// label detection. Scores are Rekognition confidences scaled to [0,1].
type RekognitionClassifier struct {
	client DetectLabelsAPI
}

func NewRekognitionClassifier(client DetectLabelsAPI) *RekognitionClassifier {
	return &RekognitionClassifier{client: client}
}

// NewRekognitionClassifierFromRegion loads the default AWS credential chain.
func NewRekognitionClassifierFromRegion(ctx context.Context, region string) (*RekognitionClassifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewRekognitionClassifier(rekognition.NewFromConfig(cfg)), nil
}

func (r *RekognitionClassifier) Classify(ctx context.Context, image domain.MealImage) ([]domain.LabelScore, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image.Data},
		MaxLabels:     aws.Int32(rekognitionMaxLabels),
		MinConfidence: aws.Float32(rekognitionMinConfidence),
	})
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, "rekognition")
	}

	// Rekognition returns labels by descending confidence.
	labels := make([]domain.LabelScore, 0, len(out.Labels))
	for _, l := range out.Labels {
		if l.Name == nil {
			continue
		}
		var score float64
		if l.Confidence != nil {
			score = float64(*l.Confidence) / 100
		}
		labels = append(labels, domain.LabelScore{Label: *l.Name, Score: score})
	}
	return labels, nil
}
