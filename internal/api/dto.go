package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	"github.com/vladimiradmaev/glycocare/internal/utils"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// FlexFloat accepts a JSON number or a numeric string such as "120" or
// "120 mg/dL". An empty string or null decodes as zero.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := utils.ParseFloatLoose(s)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*f = FlexFloat(v)
		return nil
	}

	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("not a number: %s", b)
	}
	*f = FlexFloat(v)
	return nil
}

type vitalsPayload struct {
	Glucose   FlexFloat `json:"glucose"`
	Systolic  FlexFloat `json:"systolic"`
	Diastolic FlexFloat `json:"diastolic"`
	HeartRate FlexFloat `json:"heartRate"`
}

// snapshot truncates pressure and heart rate to whole numbers.
func (v vitalsPayload) snapshot(userID string) domain.VitalsSnapshot {
	return domain.VitalsSnapshot{
		UserID:    userID,
		Glucose:   float64(v.Glucose),
		Systolic:  int(v.Systolic),
		Diastolic: int(v.Diastolic),
		HeartRate: int(v.HeartRate),
	}
}

type analyzeRequest struct {
	ImageBase64 string         `json:"imageBase64"`
	Vitals      *vitalsPayload `json:"vitals"`
}

type analyzeResponse struct {
	Dish                  string          `json:"dish"`
	PortionG              int             `json:"portion_g"`
	PredictedGlucoseDelta float64         `json:"predicted_glucose_delta"`
	Confidence            int             `json:"confidence"`
	Advice                string          `json:"advice"`
	Status                domain.RiskTier `json:"status"`
	Tips                  []string        `json:"tips"`
	FoodSwaps             []string        `json:"food_swaps"`
}

func newAnalyzeResponse(r *domain.AnalysisResult) analyzeResponse {
	return analyzeResponse{
		Dish:                  r.Dish,
		PortionG:              r.PortionG,
		PredictedGlucoseDelta: r.Delta,
		Confidence:            r.ConfidencePercent,
		Advice:                r.Advice,
		Status:                r.Tier,
		Tips:                  r.Tips,
		FoodSwaps:             r.FoodSwaps,
	}
}

// saveMealRequest mirrors an analysis result the client chose to keep.
// Confidence is a percentage.
type saveMealRequest struct {
	Dish           string          `json:"dish"`
	Portion        FlexFloat       `json:"portion"`
	PredictedDelta FlexFloat       `json:"predictedDelta"`
	Confidence     FlexFloat       `json:"confidence"`
	Advice         string          `json:"advice"`
	Status         domain.RiskTier `json:"status"`
	Vitals         *vitalsPayload  `json:"vitals"`
}

type profilePayload struct {
	Name              string   `json:"name"`
	Age               int      `json:"age"`
	Weight            float64  `json:"weight"`
	DiabetesType      *string  `json:"diabetes_type"`
	HasBP             bool     `json:"has_bp"`
	HasHeartCondition bool     `json:"has_heart_condition"`
	Comorbidities     []string `json:"comorbidities"`
}

func newProfilePayload(p *domain.UserProfile) profilePayload {
	return profilePayload{
		Name:              p.Name,
		Age:               p.Age,
		Weight:            p.Weight,
		DiabetesType:      p.DiabetesType,
		HasBP:             p.HasBloodPressureCondition,
		HasHeartCondition: p.HasHeartCondition,
		Comorbidities:     p.Comorbidities,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}
