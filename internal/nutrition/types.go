package nutrition

import (
	"time"
)

// Gender selects the BMR offset.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// ActivityLevel is ordered from least to most active.
type ActivityLevel string

const (
	Sedentary        ActivityLevel = "SEDENTARY"
	LightlyActive    ActivityLevel = "LIGHTLY_ACTIVE"
	ModeratelyActive ActivityLevel = "MODERATELY_ACTIVE"
	Active           ActivityLevel = "ACTIVE"
	VeryActive       ActivityLevel = "VERY_ACTIVE"
)

// ActivityLevels lists every level in ascending order.
var ActivityLevels = []ActivityLevel{Sedentary, LightlyActive, ModeratelyActive, Active, VeryActive}

// Goal is the user's weight goal.
type Goal string

const (
	LoseWeight Goal = "LOSE_WEIGHT"
	Maintain   Goal = "MAINTAIN"
	GainWeight Goal = "GAIN_WEIGHT"
)

// MealCategory identifies a slot in the day.
type MealCategory string

const (
	Breakfast MealCategory = "BREAKFAST"
	Lunch     MealCategory = "LUNCH"
	Dinner    MealCategory = "DINNER"
)

// MealCategories lists the categories the daily target is split across.
var MealCategories = []MealCategory{Breakfast, Lunch, Dinner}

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

func (l ActivityLevel) Valid() bool {
	_, ok := activityMultipliers[l]
	return ok
}

func (g Goal) Valid() bool {
	_, ok := goalOffsets[g]
	return ok
}

func (c MealCategory) Valid() bool {
	_, ok := mealShares[c]
	return ok
}

// Profile holds the raw inputs the health metrics are derived from.
type Profile struct {
	WeightKg              float64       `json:"weight_kg"`
	HeightCm              float64       `json:"height_cm"`
	Age                   int           `json:"age"`
	Gender                Gender        `json:"gender"`
	ActivityMinutesPerDay int           `json:"activity_minutes_per_day"`
	ActivityDaysPerWeek   int           `json:"activity_days_per_week"`
	ActivityLevel         ActivityLevel `json:"activity_level,omitempty"`
	Goal                  Goal          `json:"goal,omitempty"`
}

// HealthMetrics is a snapshot of a profile together with the values derived
// from it. It is replaced as a whole whenever an input changes.
type HealthMetrics struct {
	WeightKg              float64       `json:"weight_kg"`
	HeightCm              float64       `json:"height_cm"`
	Age                   int           `json:"age"`
	Gender                Gender        `json:"gender"`
	ActivityMinutesPerDay int           `json:"activity_minutes_per_day"`
	ActivityDaysPerWeek   int           `json:"activity_days_per_week"`
	ActivityLevel         ActivityLevel `json:"activity_level"`
	Goal                  Goal          `json:"goal"`

	BMI                float64   `json:"bmi"`
	BMR                float64   `json:"bmr"`
	TDEE               float64   `json:"tdee"`
	DailyCalorieTarget int       `json:"daily_calorie_target"`
	LastUpdated        time.Time `json:"last_updated"`
}

// Profile returns the inputs the metrics were computed from.
func (m HealthMetrics) Profile() Profile {
	return Profile{
		WeightKg:              m.WeightKg,
		HeightCm:              m.HeightCm,
		Age:                   m.Age,
		Gender:                m.Gender,
		ActivityMinutesPerDay: m.ActivityMinutesPerDay,
		ActivityDaysPerWeek:   m.ActivityDaysPerWeek,
		ActivityLevel:         m.ActivityLevel,
		Goal:                  m.Goal,
	}
}

// MealCalories returns the calorie allocation for one category.
func (m HealthMetrics) MealCalories(category MealCategory) int {
	return CalculateMealCalories(m.TDEE, m.Goal, category)
}
