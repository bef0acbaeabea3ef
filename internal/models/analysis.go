package models

import (
	"time"
)

// AnalysisResult is the verdict produced for one submitted photo.
// When IsFood is false the other fields are absent from the JSON encoding.
type AnalysisResult struct {
	IsFood bool `json:"isFood"`

	// Populated only when IsFood is true.
	FoodName string `json:"foodName,omitempty"`
	// Kept as text: the model may answer with a range or a qualifier
	// ("350-400", "about 200 kcal"), not necessarily a bare number.
	EstimatedCalories string `json:"estimatedCalories,omitempty"`
	// 0-100. The normalizer does not clamp; the rendering layer does.
	HealthScore int `json:"healthScore,omitempty"`
}

// AnalysisRecord is one row of analysis history. It carries the verdict and
// upload metadata only; the image bytes themselves are never persisted.
type AnalysisRecord struct {
	ID                string    `json:"id"`
	IsFood            bool      `json:"is_food"`
	FoodName          string    `json:"food_name,omitempty"`
	EstimatedCalories string    `json:"estimated_calories,omitempty"`
	// Not omitempty: a health score of 0 is a valid verdict and must
	// survive serialization.
	HealthScore int `json:"health_score"`
	MimeType          string    `json:"mime_type"`
	ImageSize         int64     `json:"image_size"` // bytes
	CreatedAt         time.Time `json:"created_at"`
}
