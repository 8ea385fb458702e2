package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vladimiradmaev/glycocare/internal/domain"
)

// querier is the subset of *pgxpool.Pool used here.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TimeSeriesRepository stores vitals and meals. It implements domain.TimeSeriesStore.
type TimeSeriesRepository struct {
	db querier
}

func NewTimeSeriesRepository(pool *pgxpool.Pool) *TimeSeriesRepository {
	return &TimeSeriesRepository{db: pool}
}

const insertMealSQL = `
    INSERT INTO meals (id, user_id, dish_name, portion_g, glucose_delta, confidence, advice, status, image_key, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)
`

const insertVitalsSQL = `
    INSERT INTO vitals (id, user_id, glucose_level, bp_systolic, bp_diastolic, heart_rate, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
`

const selectMealColumns = `
    SELECT id::text, user_id::text, dish_name, portion_g, glucose_delta, confidence, advice, status, COALESCE(image_key, ''), created_at
    FROM meals
`

const selectVitalsColumns = `
    SELECT id::text, user_id::text, glucose_level, COALESCE(bp_systolic, 0), COALESCE(bp_diastolic, 0), COALESCE(heart_rate, 0), created_at
    FROM vitals
`

// AppendMeal assigns an id and timestamp when the record has none.
func (r *TimeSeriesRepository) AppendMeal(ctx context.Context, meal *domain.MealRecord) error {
	if meal.ID == "" {
		meal.ID = uuid.NewString()
	}
	if meal.Timestamp.IsZero() {
		meal.Timestamp = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx, insertMealSQL,
		meal.ID,
		meal.UserID,
		meal.Dish,
		meal.PortionG,
		meal.Delta,
		meal.Confidence,
		meal.Advice,
		string(meal.Tier),
		meal.ImageKey,
		meal.Timestamp,
	)
	return err
}

// AppendVitals stores missing pressure and heart rate readings as NULL.
func (r *TimeSeriesRepository) AppendVitals(ctx context.Context, vitals *domain.VitalsSnapshot) error {
	if vitals.ID == "" {
		vitals.ID = uuid.NewString()
	}
	if vitals.Timestamp.IsZero() {
		vitals.Timestamp = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx, insertVitalsSQL,
		vitals.ID,
		vitals.UserID,
		vitals.Glucose,
		nullableInt(vitals.Systolic),
		nullableInt(vitals.Diastolic),
		nullableInt(vitals.HeartRate),
		vitals.Timestamp,
	)
	return err
}

// LatestVitals returns (nil, nil) when the user has never recorded vitals.
func (r *TimeSeriesRepository) LatestVitals(ctx context.Context, userID string) (*domain.VitalsSnapshot, error) {
	row := r.db.QueryRow(ctx, selectVitalsColumns+` WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID)

	v, err := scanVitals(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// RecentMeals returns the newest meals first.
func (r *TimeSeriesRepository) RecentMeals(ctx context.Context, userID string, limit int) ([]domain.MealRecord, error) {
	rows, err := r.db.Query(ctx, selectMealColumns+` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectMeals(rows)
}

func (r *TimeSeriesRepository) MealsSince(ctx context.Context, userID string, since time.Time) ([]domain.MealRecord, error) {
	rows, err := r.db.Query(ctx, selectMealColumns+` WHERE user_id = $1 AND created_at >= $2 ORDER BY created_at`, userID, since)
	if err != nil {
		return nil, err
	}
	return collectMeals(rows)
}

func (r *TimeSeriesRepository) VitalsSince(ctx context.Context, userID string, since time.Time) ([]domain.VitalsSnapshot, error) {
	rows, err := r.db.Query(ctx, selectVitalsColumns+` WHERE user_id = $1 AND created_at >= $2 ORDER BY created_at`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vitals := make([]domain.VitalsSnapshot, 0)
	for rows.Next() {
		v, err := scanVitals(rows)
		if err != nil {
			return nil, err
		}
		vitals = append(vitals, v)
	}
	return vitals, rows.Err()
}

func collectMeals(rows pgx.Rows) ([]domain.MealRecord, error) {
	defer rows.Close()

	meals := make([]domain.MealRecord, 0)
	for rows.Next() {
		var m domain.MealRecord
		var tier string
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Dish,
			&m.PortionG,
			&m.Delta,
			&m.Confidence,
			&m.Advice,
			&tier,
			&m.ImageKey,
			&m.Timestamp,
		); err != nil {
			return nil, err
		}
		m.Tier = domain.RiskTier(tier)
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func scanVitals(row pgx.Row) (domain.VitalsSnapshot, error) {
	var v domain.VitalsSnapshot
	err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.Glucose,
		&v.Systolic,
		&v.Diastolic,
		&v.HeartRate,
		&v.Timestamp,
	)
	return v, err
}

func nullableInt(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}
