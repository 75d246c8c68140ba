package store

import (
	"time"

	"github.com/gmsas95/nutritrack/internal/nutrition"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account together with the profile inputs its health metrics are
// computed from.
type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `json:"-"`
	DisplayName  string `json:"display_name"`
	PhotoURL     string `json:"photo_url,omitempty"`

	WeightKg              float64                 `json:"weight_kg"`
	HeightCm              float64                 `json:"height_cm"`
	Age                   int                     `json:"age"`
	Gender                nutrition.Gender        `json:"gender"`
	ActivityMinutesPerDay int                     `json:"activity_minutes_per_day"`
	ActivityDaysPerWeek   int                     `json:"activity_days_per_week"`
	ActivityLevel         nutrition.ActivityLevel `json:"activity_level"`
	Goal                  nutrition.Goal          `json:"goal"`

	HealthMetrics *nutrition.HealthMetrics `gorm:"serializer:json;type:text" json:"health_metrics,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"` // set by the writer, see UpdateUser
}

// Profile returns the user's current health inputs.
func (u *User) Profile() nutrition.Profile {
	return nutrition.Profile{
		WeightKg:              u.WeightKg,
		HeightCm:              u.HeightCm,
		Age:                   u.Age,
		Gender:                u.Gender,
		ActivityMinutesPerDay: u.ActivityMinutesPerDay,
		ActivityDaysPerWeek:   u.ActivityDaysPerWeek,
		ActivityLevel:         u.ActivityLevel,
		Goal:                  u.Goal,
	}
}

// DailyCalorieTarget is 0 until metrics have been computed.
func (u *User) DailyCalorieTarget() int {
	if u.HealthMetrics == nil {
		return 0
	}
	return u.HealthMetrics.DailyCalorieTarget
}

// Meal is a catalog entry.
type Meal struct {
	ID          string                 `gorm:"primaryKey" json:"id" yaml:"id"`
	Name        string                 `gorm:"index;not null" json:"name" yaml:"name"`
	Description string                 `json:"description,omitempty" yaml:"description"`
	Category    nutrition.MealCategory `gorm:"index" json:"category" yaml:"category"`
	Calories    float64                `json:"calories" yaml:"calories"`
	Protein     float64                `json:"protein" yaml:"protein"`
	Carbs       float64                `json:"carbs" yaml:"carbs"`
	Fat         float64                `json:"fat" yaml:"fat"`
	ImageURL    string                 `json:"image_url,omitempty" yaml:"image_url"`
	Source      string                 `json:"source" yaml:"-"` // seed, remote, user
	CreatedAt   time.Time              `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time              `json:"updated_at" yaml:"-"`
}

// Favorite links a user to a meal.
type Favorite struct {
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	MealID    string    `gorm:"primaryKey" json:"meal_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MealIntake is a planned or consumed portion of a meal on a date.
type MealIntake struct {
	ID          string                 `gorm:"primaryKey" json:"id"`
	UserID      string                 `gorm:"index:idx_intake_user_date" json:"user_id"`
	MealID      string                 `json:"meal_id"`
	MenuItemID  string                 `gorm:"index" json:"menu_item_id,omitempty"` // set when planned from a menu
	MealName    string                 `json:"meal_name"`
	Date        string                 `gorm:"index:idx_intake_user_date" json:"date"` // YYYY-MM-DD
	Category    nutrition.MealCategory `json:"category"`
	Calories    float64                `json:"calories"`
	PortionSize float64                `gorm:"default:1" json:"portion_size"`
	IsConsumed  bool                   `json:"is_consumed"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func (m *MealIntake) TotalCalories() float64 {
	return m.Calories * m.PortionSize
}

// ConsumedCalories is 0 for planned-only records.
func (m *MealIntake) ConsumedCalories() float64 {
	if !m.IsConsumed {
		return 0
	}
	return m.TotalCalories()
}

// DailyMenuItem assigns one meal to a category on a date.
type DailyMenuItem struct {
	ID       string                 `gorm:"primaryKey" json:"id"`
	UserID   string                 `gorm:"index:idx_menu_user_date" json:"user_id"`
	Date     string                 `gorm:"index:idx_menu_user_date" json:"date"`
	Category nutrition.MealCategory `json:"category"`
	MealID   string                 `json:"meal_id"`
	MealName string                 `json:"meal_name"`
	Calories float64                `json:"calories"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hooks assign IDs.

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = tx.NowFunc()
	}
	return nil
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Source == "" {
		m.Source = "user"
	}
	return nil
}

func (m *MealIntake) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (d *DailyMenuItem) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
