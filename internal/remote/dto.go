package remote

import (
	"context"
	"time"

	"github.com/gmsas95/nutritrack/internal/nutrition"
	"github.com/gmsas95/nutritrack/internal/store"
)

// MealDTO is the wire form of a catalog meal.
type MealDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	ImageURL    string  `json:"image_url,omitempty"`
}

func (d MealDTO) toMeal() store.Meal {
	return store.Meal{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    nutrition.MealCategory(d.Category),
		Calories:    d.Calories,
		Protein:     d.Protein,
		Carbs:       d.Carbs,
		Fat:         d.Fat,
		ImageURL:    d.ImageURL,
		Source:      "remote",
	}
}

// UserDTO is the profile mirrored to the backend. Credentials never leave
// the local store.
type UserDTO struct {
	ID            string                   `json:"id"`
	Email         string                   `json:"email"`
	DisplayName   string                   `json:"display_name"`
	PhotoURL      string                   `json:"photo_url,omitempty"`
	Profile       nutrition.Profile        `json:"profile"`
	HealthMetrics *nutrition.HealthMetrics `json:"health_metrics,omitempty"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

func newUserDTO(u *store.User) UserDTO {
	return UserDTO{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoURL,
		Profile:       u.Profile(),
		HealthMetrics: u.HealthMetrics,
		UpdatedAt:     u.UpdatedAt,
	}
}

// FetchMeals downloads the remote catalog. Entries without an ID or name
// are dropped.
func (c *Client) FetchMeals(ctx context.Context) ([]store.Meal, error) {
	var dtos []MealDTO
	if err := c.do(ctx, "fetch_meals", "GET", "/meals", nil, &dtos); err != nil {
		return nil, err
	}

	meals := make([]store.Meal, 0, len(dtos))
	for _, d := range dtos {
		if d.ID == "" || d.Name == "" {
			continue
		}
		meals = append(meals, d.toMeal())
	}
	return meals, nil
}

// PushUser mirrors a user's profile and metrics.
func (c *Client) PushUser(ctx context.Context, u *store.User) error {
	return c.do(ctx, "push_user", "PUT", "/users/"+escape(u.ID), newUserDTO(u), nil)
}
