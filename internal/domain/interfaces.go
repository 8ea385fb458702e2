package domain

import (
	"context"
	"time"
)

// IdentityProvider authenticates a caller token and yields a user id.
type IdentityProvider interface {
	ResolveCaller(ctx context.Context, token string) (string, error)
}

// ProfileStore reads user profiles. A missing profile returns (nil, nil).
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
}

// TimeSeriesStore appends and reads vitals and meal history.
type TimeSeriesStore interface {
	AppendMeal(ctx context.Context, meal *MealRecord) error
	AppendVitals(ctx context.Context, vitals *VitalsSnapshot) error
	LatestVitals(ctx context.Context, userID string) (*VitalsSnapshot, error)
	RecentMeals(ctx context.Context, userID string, limit int) ([]MealRecord, error)
	VitalsSince(ctx context.Context, userID string, since time.Time) ([]VitalsSnapshot, error)
	MealsSince(ctx context.Context, userID string, since time.Time) ([]MealRecord, error)
}

// ChatHistoryStore keeps advisor conversations.
type ChatHistoryStore interface {
	AppendMessage(ctx context.Context, msg *ChatMessage) error
	RecentMessages(ctx context.Context, userID string, limit int) ([]ChatMessage, error)
}

// Classifier labels a food photo. Errors mean transport failure or non-2xx.
type Classifier interface {
	Classify(ctx context.Context, image MealImage) ([]LabelScore, error)
}

// PortionEstimator estimates grams of food. Errors mean transport failure or
// non-2xx; a successful call with an odd body yields ReplyUnrecognized.
type PortionEstimator interface {
	EstimatePortion(ctx context.Context, image MealImage, dish string) (ModelReply, error)
}

// DeltaFeatures are the regression inputs for the glucose delta model.
type DeltaFeatures struct {
	Dish           string
	PortionG       float64
	CurrentGlucose float64
	Age            int
	Weight         float64
	HasDiabetes    bool
}

// DeltaRegressor predicts the glucose delta of a meal.
type DeltaRegressor interface {
	PredictDelta(ctx context.Context, features DeltaFeatures) (ModelReply, error)
}

// ChatModel is a conversational model.
type ChatModel interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// ImageArchive stores meal photos and returns their object key.
type ImageArchive interface {
	Put(ctx context.Context, userID string, image MealImage) (string, error)
}

// EventPublisher pushes events to a user's connected clients.
type EventPublisher interface {
	Publish(userID string, event any)
}
