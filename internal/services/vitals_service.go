package services

import (
	"context"
	"time"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
)

// Dashboard values shown before the first reading.
const (
	DefaultDashboardGlucose   = 120.0
	DefaultDashboardSystolic  = 120
	DefaultDashboardDiastolic = 80
	DefaultDashboardHeartRate = 75
)

type VitalsService struct {
	store domain.TimeSeriesStore
}

func NewVitalsService(store domain.TimeSeriesStore) *VitalsService {
	return &VitalsService{store: store}
}

func (s *VitalsService) RecordVitals(ctx context.Context, vitals *domain.VitalsSnapshot) error {
	if !vitals.HasGlucose() {
		return apperrors.NewValidationError("Glucose reading must be positive")
	}
	if vitals.Systolic < 0 || vitals.Diastolic < 0 || vitals.HeartRate < 0 {
		return apperrors.NewValidationError("Readings cannot be negative")
	}
	if vitals.Timestamp.IsZero() {
		vitals.Timestamp = time.Now().UTC()
	}

	if err := s.store.AppendVitals(ctx, vitals); err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// LatestVitals returns (nil, nil) when nothing was recorded yet.
func (s *VitalsService) LatestVitals(ctx context.Context, userID string) (*domain.VitalsSnapshot, error) {
	v, err := s.store.LatestVitals(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return v, nil
}

// Dashboard fills readings that were never taken with neutral defaults.
func (s *VitalsService) Dashboard(ctx context.Context, userID string) (*domain.Dashboard, error) {
	latest, err := s.LatestVitals(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &domain.Dashboard{
		Glucose:   DefaultDashboardGlucose,
		Systolic:  DefaultDashboardSystolic,
		Diastolic: DefaultDashboardDiastolic,
		HeartRate: DefaultDashboardHeartRate,
	}
	if latest != nil {
		if latest.Glucose > 0 {
			d.Glucose = latest.Glucose
		}
		if latest.Systolic > 0 {
			d.Systolic = latest.Systolic
		}
		if latest.Diastolic > 0 {
			d.Diastolic = latest.Diastolic
		}
		if latest.HeartRate > 0 {
			d.HeartRate = latest.HeartRate
		}
	}

	meals, err := s.store.RecentMeals(ctx, userID, 1)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if len(meals) > 0 {
		d.LatestMeal = &meals[0]
	}
	return d, nil
}
