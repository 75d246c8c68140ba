package nutrition

import (
	"encoding/json"
	"math"
)

// NutritionInfo compares a day's consumed calories against the target and
// the planned menu. Only the three inputs are stored; the rest is derived.
type NutritionInfo struct {
	Date             string
	TargetCalories   int
	PlannedCalories  float64
	ConsumedCalories float64
}

func NewNutritionInfo(date string, targetCalories int, plannedCalories, consumedCalories float64) NutritionInfo {
	return NutritionInfo{
		Date:             date,
		TargetCalories:   targetCalories,
		PlannedCalories:  plannedCalories,
		ConsumedCalories: consumedCalories,
	}
}

// RemainingCalories may be negative once the target is exceeded.
func (n NutritionInfo) RemainingCalories() float64 {
	return float64(n.TargetCalories) - n.ConsumedCalories
}

func (n NutritionInfo) IsOverTarget() bool {
	return n.ConsumedCalories > float64(n.TargetCalories)
}

func (n NutritionInfo) RemainingNonNegative() float64 {
	return math.Max(n.RemainingCalories(), 0)
}

// Progress is consumed over planned, 0 when nothing is planned.
func (n NutritionInfo) Progress() float64 {
	if n.PlannedCalories <= 0 {
		return 0
	}
	return n.ConsumedCalories / n.PlannedCalories
}

// TargetProgress is consumed over target, 0 when the target is not positive.
func (n NutritionInfo) TargetProgress() float64 {
	if n.TargetCalories <= 0 {
		return 0
	}
	return n.ConsumedCalories / float64(n.TargetCalories)
}

type nutritionInfoJSON struct {
	Date                 string  `json:"date"`
	TargetCalories       int     `json:"target_calories"`
	PlannedCalories      float64 `json:"planned_calories"`
	ConsumedCalories     float64 `json:"consumed_calories"`
	RemainingCalories    float64 `json:"remaining_calories"`
	RemainingNonNegative float64 `json:"remaining_non_negative"`
	IsOverTarget         bool    `json:"is_over_target"`
	Progress             float64 `json:"progress"`
	TargetProgress       float64 `json:"target_progress"`
}

func (n NutritionInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(nutritionInfoJSON{
		Date:                 n.Date,
		TargetCalories:       n.TargetCalories,
		PlannedCalories:      n.PlannedCalories,
		ConsumedCalories:     n.ConsumedCalories,
		RemainingCalories:    n.RemainingCalories(),
		RemainingNonNegative: n.RemainingNonNegative(),
		IsOverTarget:         n.IsOverTarget(),
		Progress:             n.Progress(),
		TargetProgress:       n.TargetProgress(),
	})
}

func (n *NutritionInfo) UnmarshalJSON(data []byte) error {
	var raw nutritionInfoJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = NewNutritionInfo(raw.Date, raw.TargetCalories, raw.PlannedCalories, raw.ConsumedCalories)
	return nil
}
