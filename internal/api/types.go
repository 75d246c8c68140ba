package api

import (
	"github.com/gmsas95/nutritrack/internal/nutrition"
)

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// healthResponse is the body of GET /api/me/health.
type healthResponse struct {
	Metrics             *nutrition.HealthMetrics       `json:"metrics"`
	BMICategory         string                         `json:"bmi_category,omitempty"`
	ActivityDescription string                         `json:"activity_description,omitempty"`
	MealCalories        map[nutrition.MealCategory]int `json:"meal_calories,omitempty"`
	Stale               bool                           `json:"stale"`
	StaleAfterSeconds   int64                          `json:"stale_after_seconds"`
}

type menuItemRequest struct {
	Date     string                 `json:"date"`
	Category nutrition.MealCategory `json:"category"`
	MealID   string                 `json:"meal_id"`
}

type intakeRequest struct {
	MealID      string                 `json:"meal_id"`
	MealName    string                 `json:"meal_name"`
	Date        string                 `json:"date"`
	Category    nutrition.MealCategory `json:"category"`
	Calories    *float64               `json:"calories"`
	PortionSize float64                `json:"portion_size"`
	IsConsumed  bool                   `json:"is_consumed"`
}

type consumedRequest struct {
	IsConsumed *bool `json:"is_consumed"`
}

type favoriteResponse struct {
	MealID   string `json:"meal_id"`
	Favorite bool   `json:"favorite"`
}

type consumedResponse struct {
	ID         string `json:"id"`
	IsConsumed bool   `json:"is_consumed"`
}

// progressEvent is pushed to WebSocket subscribers.
type progressEvent struct {
	Type string                  `json:"type"`
	Data nutrition.NutritionInfo `json:"data"`
}
