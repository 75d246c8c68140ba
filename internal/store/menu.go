package store

import (
	"time"

	"github.com/gmsas95/nutritrack/internal/nutrition"
)

// DailyMenuDay groups a date's menu items by category.
type DailyMenuDay struct {
	Date      string          `json:"date"`
	Breakfast []DailyMenuItem `json:"breakfast"`
	Lunch     []DailyMenuItem `json:"lunch"`
	Dinner    []DailyMenuItem `json:"dinner"`
}

func (d DailyMenuDay) TotalCalories() float64 {
	total := 0.0
	for _, items := range [][]DailyMenuItem{d.Breakfast, d.Lunch, d.Dinner} {
		for _, item := range items {
			total += item.Calories
		}
	}
	return total
}

// Items returns every item of the day, breakfast first.
func (d DailyMenuDay) Items() []DailyMenuItem {
	items := make([]DailyMenuItem, 0, len(d.Breakfast)+len(d.Lunch)+len(d.Dinner))
	items = append(items, d.Breakfast...)
	items = append(items, d.Lunch...)
	return append(items, d.Dinner...)
}

// DailyMenuWeek is seven consecutive days starting on StartDate.
type DailyMenuWeek struct {
	StartDate string         `json:"start_date"`
	Days      []DailyMenuDay `json:"days"`
}

func (w DailyMenuWeek) TotalCalories() float64 {
	total := 0.0
	for _, d := range w.Days {
		total += d.TotalCalories()
	}
	return total
}

// BuildMenuDay sorts items of a single date into their category slots. Items
// for other dates or unknown categories are ignored.
func BuildMenuDay(date string, items []DailyMenuItem) DailyMenuDay {
	day := DailyMenuDay{
		Date:      date,
		Breakfast: []DailyMenuItem{},
		Lunch:     []DailyMenuItem{},
		Dinner:    []DailyMenuItem{},
	}
	for _, item := range items {
		if item.Date != date {
			continue
		}
		switch item.Category {
		case nutrition.Breakfast:
			day.Breakfast = append(day.Breakfast, item)
		case nutrition.Lunch:
			day.Lunch = append(day.Lunch, item)
		case nutrition.Dinner:
			day.Dinner = append(day.Dinner, item)
		}
	}
	return day
}

// BuildMenuWeek lays items out over the seven days starting at start.
func BuildMenuWeek(start time.Time, items []DailyMenuItem) DailyMenuWeek {
	week := DailyMenuWeek{
		StartDate: FormatDate(start),
		Days:      make([]DailyMenuDay, 0, 7),
	}
	for i := 0; i < 7; i++ {
		week.Days = append(week.Days, BuildMenuDay(FormatDate(start.AddDate(0, 0, i)), items))
	}
	return week
}
