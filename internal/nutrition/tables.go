package nutrition

import "time"

// DefaultHealthStaleness is how long computed metrics stay current.
const DefaultHealthStaleness = 7 * 24 * time.Hour

// BMR offsets (Mifflin-St Jeor).
const (
	maleBMROffset   = 5.0
	femaleBMROffset = -161.0
)

// BMI category cutoffs, lower bound inclusive.
const (
	bmiNormalFrom     = 18.5
	bmiOverweightFrom = 25.0
	bmiObeseFrom      = 30.0
)

var activityMultipliers = map[ActivityLevel]float64{
	Sedentary:        1.2,
	LightlyActive:    1.375,
	ModeratelyActive: 1.55,
	Active:           1.725,
	VeryActive:       1.9,
}

var activityDescriptions = map[ActivityLevel]string{
	Sedentary:        "Sedentary (little or no exercise)",
	LightlyActive:    "Lightly active (light exercise 1-3 days/week)",
	ModeratelyActive: "Moderately active (moderate exercise 3-5 days/week)",
	Active:           "Active (hard exercise 6-7 days/week)",
	VeryActive:       "Very active (very hard exercise or physical job)",
}

var goalOffsets = map[Goal]float64{
	LoseWeight: -500,
	Maintain:   0,
	GainWeight: 500,
}

// mealShares sum to 1.0.
var mealShares = map[MealCategory]float64{
	Breakfast: 0.30,
	Lunch:     0.40,
	Dinner:    0.30,
}

// activityBands holds exclusive upper bounds in minutes/day for sedentary,
// lightly active, moderately active and active. Anything at or above the
// last bound is very active.
type activityBands [4]int

var (
	youthBands  = activityBands{30, 60, 90, 120}
	adultBands  = activityBands{15, 30, 60, 90}
	seniorBands = activityBands{10, 20, 45, 75}
)

const (
	adultFromAge  = 18
	seniorFromAge = 65
)

func bandsForAge(age int) activityBands {
	switch {
	case age < adultFromAge:
		return youthBands
	case age >= seniorFromAge:
		return seniorBands
	default:
		return adultBands
	}
}

// ActivityMultiplier exposes the TDEE multiplier table.
func ActivityMultiplier(level ActivityLevel) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return activityMultipliers[Sedentary]
}

// GoalOffset exposes the daily calorie adjustment for a goal.
func GoalOffset(goal Goal) float64 {
	return goalOffsets[goal]
}

// MealShare exposes the fraction of the daily target given to a category.
func MealShare(category MealCategory) float64 {
	return mealShares[category]
}
