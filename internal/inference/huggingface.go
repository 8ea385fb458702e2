// Package inference holds the clients for the external food models.
package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
)

const (
	DefaultClassifierURL = "https://api-inference.huggingface.co/models/Maheentouqeer1/food-classifier-efficientnet"
	DefaultPortionURL    = "https://api-inference.huggingface.co/models/Maheentouqeer1/glycocare-portion-estimator"
	DefaultRegressionURL = "https://api-inference.huggingface.co/models/Maheentouqeer1/glycocare-glucose-regression"

	portionField = "portion_g"
	deltaField   = "glucose_delta"

	// Error bodies are read for logging only, never in full.
	maxErrorBody = 4 << 10
)

// HuggingFaceClient talks to the three hosted models. It implements
// domain.Classifier, domain.PortionEstimator and domain.DeltaRegressor.
// Timeouts come from the caller's context.
type HuggingFaceClient struct {
	token         string
	classifierURL string
	portionURL    string
	regressionURL string
	httpClient    *http.Client
}

type HuggingFaceConfig struct {
	Token         string
	ClassifierURL string
	PortionURL    string
	RegressionURL string
}

func NewHuggingFaceClient(cfg HuggingFaceConfig, httpClient *http.Client) *HuggingFaceClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HuggingFaceClient{
		token:         cfg.Token,
		classifierURL: orDefault(cfg.ClassifierURL, DefaultClassifierURL),
		portionURL:    orDefault(cfg.PortionURL, DefaultPortionURL),
		regressionURL: orDefault(cfg.RegressionURL, DefaultRegressionURL),
		httpClient:    httpClient,
	}
}

type inferenceRequest struct {
	Inputs any `json:"inputs"`
}

type portionInputs struct {
	Image    string `json:"image"`
	DishName string `json:"dish_name"`
}

type regressionInputs struct {
	DishName       string  `json:"dish_name"`
	PortionG       float64 `json:"portion_g"`
	CurrentGlucose float64 `json:"current_glucose"`
	Age            int     `json:"age"`
	Weight         float64 `json:"weight"`
	HasDiabetes    bool    `json:"has_diabetes"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *HuggingFaceClient) Classify(ctx context.Context, image domain.MealImage) ([]domain.LabelScore, error) {
	body, err := c.post(ctx, "classifier", c.classifierURL, inferenceRequest{Inputs: DataURL(image)})
	if err != nil {
		return nil, err
	}

	// A 2xx body that is not a label list is treated as no labels.
	var raw []labelScore
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, nil
	}

	labels := make([]domain.LabelScore, 0, len(raw))
	for _, l := range raw {
		labels = append(labels, domain.LabelScore{Label: l.Label, Score: l.Score})
	}
	return labels, nil
}

func (c *HuggingFaceClient) EstimatePortion(ctx context.Context, image domain.MealImage, dish string) (domain.ModelReply, error) {
	body, err := c.post(ctx, "portion", c.portionURL, inferenceRequest{Inputs: portionInputs{
		Image:    DataURL(image),
		DishName: dish,
	}})
	if err != nil {
		return domain.ModelReply{}, err
	}
	return domain.DecodeModelReply(body, portionField), nil
}

func (c *HuggingFaceClient) PredictDelta(ctx context.Context, f domain.DeltaFeatures) (domain.ModelReply, error) {
	body, err := c.post(ctx, "regression", c.regressionURL, inferenceRequest{Inputs: regressionInputs{
		DishName:       f.Dish,
		PortionG:       f.PortionG,
		CurrentGlucose: f.CurrentGlucose,
		Age:            f.Age,
		Weight:         f.Weight,
		HasDiabetes:    f.HasDiabetes,
	}})
	if err != nil {
		return domain.ModelReply{}, err
	}
	return domain.DecodeModelReply(body, deltaField), nil
}

// post returns the body of a 2xx reply. Transport failures and other
// statuses come back as external API errors.
func (c *HuggingFaceClient) post(ctx context.Context, model, url string, payload any) ([]byte, error) {
	api := "huggingface " + model

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", model, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", model, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, api)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, apperrors.NewExternalAPIError(
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))), api,
		).WithContext("status", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewExternalAPIError(fmt.Errorf("failed to read response: %w", err), api)
	}
	return body, nil
}

// DataURL encodes an image the way the hosted models expect it.
func DataURL(image domain.MealImage) string {
	contentType := image.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
}

// ParseDataURL is the inverse of DataURL. A bare base64 string is accepted
// and assumed to be JPEG.
func ParseDataURL(s string) (domain.MealImage, error) {
	s = strings.TrimSpace(s)
	contentType := "image/jpeg"

	if strings.HasPrefix(s, "data:") {
		meta, data, ok := strings.Cut(s, ",")
		if !ok {
			return domain.MealImage{}, fmt.Errorf("invalid data URL")
		}
		mediaType, _, _ := strings.Cut(strings.TrimPrefix(meta, "data:"), ";")
		if mediaType != "" {
			contentType = mediaType
		}
		s = data
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return domain.MealImage{}, fmt.Errorf("failed to decode image: %w", err)
	}
	if len(data) == 0 {
		return domain.MealImage{}, fmt.Errorf("empty image")
	}
	return domain.MealImage{Data: data, ContentType: contentType}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
