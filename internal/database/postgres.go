package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vladimiradmaev/glycocare/internal/config"
	"github.com/vladimiradmaev/glycocare/internal/database/migrations"
	"github.com/vladimiradmaev/glycocare/internal/domain"
	"github.com/vladimiradmaev/glycocare/internal/logger"
)

// User is a registered person and their health profile.
type User struct {
	ID                        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TelegramID                *int64    `gorm:"uniqueIndex"`
	Name                      string
	Age                       *int
	Weight                    *float64
	DiabetesType              *string
	HasBloodPressureCondition bool `gorm:"default:false"`
	HasHeartCondition         bool `gorm:"default:false"`
	Comorbidities             datatypes.JSON
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// ToDomain converts the row to a profile. Unset age and weight stay zero
// so callers can apply defaults.
func (u *User) ToDomain() *domain.UserProfile {
	p := &domain.UserProfile{
		UserID:                    u.ID.String(),
		Name:                      u.Name,
		TelegramID:                u.TelegramID,
		DiabetesType:              u.DiabetesType,
		HasBloodPressureCondition: u.HasBloodPressureCondition,
		HasHeartCondition:         u.HasHeartCondition,
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Weight != nil {
		p.Weight = *u.Weight
	}
	if len(u.Comorbidities) > 0 {
		if err := json.Unmarshal(u.Comorbidities, &p.Comorbidities); err != nil {
			logger.Warn("Ignoring unreadable comorbidities", "user_id", p.UserID, "error", err)
			p.Comorbidities = nil
		}
	}
	return p
}

// UserFromDomain builds a row from a profile. The user id must be a UUID.
func UserFromDomain(p *domain.UserProfile) (*User, error) {
	id, err := uuid.Parse(p.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", p.UserID, err)
	}

	u := &User{
		ID:                        id,
		TelegramID:                p.TelegramID,
		Name:                      p.Name,
		DiabetesType:              p.DiabetesType,
		HasBloodPressureCondition: p.HasBloodPressureCondition,
		HasHeartCondition:         p.HasHeartCondition,
	}
	if p.Age > 0 {
		age := p.Age
		u.Age = &age
	}
	if p.Weight > 0 {
		weight := p.Weight
		u.Weight = &weight
	}
	if p.Comorbidities != nil {
		raw, err := json.Marshal(p.Comorbidities)
		if err != nil {
			return nil, fmt.Errorf("failed to encode comorbidities: %w", err)
		}
		u.Comorbidities = datatypes.JSON(raw)
	}
	return u, nil
}

// ChatMessage is one stored turn of an advisor conversation.
type ChatMessage struct {
	gorm.Model
	UserID  uuid.UUID `gorm:"type:uuid;index"`
	Role    string
	Content string
}

func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	registry, err := migrations.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	if err := registry.Run(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Tables without explicit SQL migrations
	if err := db.AutoMigrate(&User{}, &ChatMessage{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	logger.Info("Database connection established and migrations completed")
	return db, nil
}
