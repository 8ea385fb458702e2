package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
)

type fakeDetectLabels struct {
	out   *rekognition.DetectLabelsOutput
	err   error
	input *rekognition.DetectLabelsInput
}

func (f *fakeDetectLabels) DetectLabels(ctx context.Context, in *rekognition.DetectLabelsInput, _ ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error) {
	f.input = in
	return f.out, f.err
}

func TestRekognitionScalesConfidence(t *testing.T) {
	fake := &fakeDetectLabels{out: &rekognition.DetectLabelsOutput{Labels: []types.Label{
		{Name: aws.String("Pizza"), Confidence: aws.Float32(92)},
		{Name: nil, Confidence: aws.Float32(80)},
		{Name: aws.String("Food")},
	}}}

	labels, err := NewRekognitionClassifier(fake).Classify(context.Background(), jpeg)

	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "Pizza", labels[0].Label)
	assert.InDelta(t, 0.92, labels[0].Score, 1e-6)
	assert.Equal(t, 0.0, labels[1].Score)
	assert.Equal(t, jpeg.Data, fake.input.Image.Bytes)
	assert.Equal(t, int32(rekognitionMaxLabels), *fake.input.MaxLabels)
}

func TestRekognitionError(t *testing.T) {
	_, err := NewRekognitionClassifier(&fakeDetectLabels{err: errors.New("throttled")}).Classify(context.Background(), jpeg)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
}
