package usecase

// Repositories groups the storage dependencies of the use cases.
type Repositories struct {
	Users     UserRepository
	Intakes   MealIntakeRepository
	Meals     MealRepository
	Favorites FavoriteRepository
	Menu      DailyMenuRepository
}

// Set holds one instance of every use case, wired to the same repositories.
type Set struct {
	Calc *HealthCalculator

	GetUser                      *GetUser
	UpdateProfile                *UpdateProfile
	UpdateHealthMetrics          *UpdateHealthMetrics
	CheckHealthMetricsNeedUpdate *CheckHealthMetricsNeedUpdate
	RecomputeStaleMetrics        *RecomputeStaleMetrics

	GetMealIntakeByDate  *GetMealIntakeByDate
	GetMealIntake        *GetMealIntake
	SaveMealIntake       *SaveMealIntake
	UpdateConsumedStatus *UpdateConsumedStatus
	DeleteMealIntake     *DeleteMealIntake
	GetNutritionProgress *GetNutritionProgress

	Catalog *MealCatalog
	Menu    *MenuPlanner
}

func NewSet(repos Repositories, calc *HealthCalculator) *Set {
	update := NewUpdateHealthMetrics(repos.Users, calc)
	check := NewCheckHealthMetricsNeedUpdate(calc)

	return &Set{
		Calc: calc,

		GetUser:                      NewGetUser(repos.Users),
		UpdateProfile:                NewUpdateProfile(repos.Users, update),
		UpdateHealthMetrics:          update,
		CheckHealthMetricsNeedUpdate: check,
		RecomputeStaleMetrics:        NewRecomputeStaleMetrics(repos.Users, check, update),

		GetMealIntakeByDate:  NewGetMealIntakeByDate(repos.Intakes),
		GetMealIntake:        NewGetMealIntake(repos.Intakes),
		SaveMealIntake:       NewSaveMealIntake(repos.Intakes),
		UpdateConsumedStatus: NewUpdateConsumedStatus(repos.Intakes),
		DeleteMealIntake:     NewDeleteMealIntake(repos.Intakes),
		GetNutritionProgress: NewGetNutritionProgress(repos.Intakes),

		Catalog: NewMealCatalog(repos.Meals, repos.Favorites),
		Menu:    NewMenuPlanner(repos.Menu, repos.Meals, repos.Intakes),
	}
}
