// Package nutrition derives BMI, BMR, TDEE and calorie targets from
// anthropometric and activity inputs. Every function is pure.
package nutrition

import (
	"math"
	"time"
)

// CalculateBMI returns weight / height². Non-positive inputs yield 0.
func CalculateBMI(weightKg, heightCm float64) float64 {
	if weightKg <= 0 || heightCm <= 0 {
		return 0
	}
	h := heightCm / 100.0
	return weightKg / (h * h)
}

// CalculateBMR uses the Mifflin-St Jeor equation. Non-positive weight or
// height yields 0 and the result never drops below 0.
func CalculateBMR(weightKg, heightCm float64, age int, gender Gender) float64 {
	if weightKg <= 0 || heightCm <= 0 {
		return 0
	}
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if gender == GenderMale {
		bmr += maleBMROffset
	} else {
		bmr += femaleBMROffset
	}
	return math.Max(bmr, 0)
}

// CalculateTDEE scales bmr by the activity multiplier. Unknown levels are
// treated as sedentary.
func CalculateTDEE(bmr float64, level ActivityLevel) float64 {
	if bmr <= 0 {
		return 0
	}
	return bmr * ActivityMultiplier(level)
}

// CalculateDailyCaloriesTarget applies the goal offset to tdee.
func CalculateDailyCaloriesTarget(tdee float64, goal Goal) int {
	if tdee <= 0 {
		return 0
	}
	target := math.Round(tdee + GoalOffset(goal))
	if target < 0 {
		return 0
	}
	return int(target)
}

// CalculateMealCalories returns the share of the daily target allotted to
// category.
func CalculateMealCalories(tdee float64, goal Goal, category MealCategory) int {
	target := CalculateDailyCaloriesTarget(tdee, goal)
	return int(math.Round(float64(target) * MealShare(category)))
}

// InferActivityLevel maps average active minutes per day onto a level using
// age-dependent bands.
func InferActivityLevel(minutesPerDay, age int) ActivityLevel {
	if minutesPerDay <= 0 {
		return Sedentary
	}
	bands := bandsForAge(age)
	for i, upper := range bands {
		if minutesPerDay < upper {
			return ActivityLevels[i]
		}
	}
	return VeryActive
}

// AverageDailyMinutes spreads a per-session duration over the week.
func AverageDailyMinutes(minutesPerDay, daysPerWeek int) int {
	if minutesPerDay <= 0 || daysPerWeek <= 0 {
		return 0
	}
	if daysPerWeek > 7 {
		daysPerWeek = 7
	}
	return int(math.Round(float64(minutesPerDay*daysPerWeek) / 7))
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < bmiNormalFrom:
		return "underweight"
	case bmi < bmiOverweightFrom:
		return "normal"
	case bmi < bmiObeseFrom:
		return "overweight"
	default:
		return "obese"
	}
}

func ActivityLevelDescription(level ActivityLevel) string {
	if d, ok := activityDescriptions[level]; ok {
		return d
	}
	return "Unknown"
}

// NeedsHealthUpdate reports whether metrics computed at lastUpdated are older
// than DefaultHealthStaleness at now.
func NeedsHealthUpdate(lastUpdated, now time.Time) bool {
	return NeedsHealthUpdateAfter(lastUpdated, now, DefaultHealthStaleness)
}

// NeedsHealthUpdateAfter is NeedsHealthUpdate with an explicit threshold. A
// zero lastUpdated always needs an update.
func NeedsHealthUpdateAfter(lastUpdated, now time.Time, threshold time.Duration) bool {
	if lastUpdated.IsZero() {
		return true
	}
	return now.Sub(lastUpdated) > threshold
}

// ResolveActivityLevel returns the explicit level when set, otherwise one
// inferred from the weekly activity inputs.
func ResolveActivityLevel(p Profile) ActivityLevel {
	if p.ActivityLevel.Valid() {
		return p.ActivityLevel
	}
	return InferActivityLevel(AverageDailyMinutes(p.ActivityMinutesPerDay, p.ActivityDaysPerWeek), p.Age)
}

// Compute derives a complete HealthMetrics value from p.
func Compute(p Profile, now time.Time) HealthMetrics {
	level := ResolveActivityLevel(p)
	goal := p.Goal
	if !goal.Valid() {
		goal = Maintain
	}

	bmr := CalculateBMR(p.WeightKg, p.HeightCm, p.Age, p.Gender)
	tdee := CalculateTDEE(bmr, level)

	return HealthMetrics{
		WeightKg:              p.WeightKg,
		HeightCm:              p.HeightCm,
		Age:                   p.Age,
		Gender:                p.Gender,
		ActivityMinutesPerDay: p.ActivityMinutesPerDay,
		ActivityDaysPerWeek:   p.ActivityDaysPerWeek,
		ActivityLevel:         level,
		Goal:                  goal,
		BMI:                   CalculateBMI(p.WeightKg, p.HeightCm),
		BMR:                   bmr,
		TDEE:                  tdee,
		DailyCalorieTarget:    CalculateDailyCaloriesTarget(tdee, goal),
		LastUpdated:           now,
	}
}
