package usecase_test

import (
	"context"
	"sync"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"github.com/gmsas95/nutritrack/internal/store"
)

type fakeUsers struct {
	mu        sync.Mutex
	users     map[string]store.User
	order     []string
	updateErr error
	updates   int
	vanished  map[string]bool // listed but gone by the time of the update
}

func newFakeUsers(users ...store.User) *fakeUsers {
	f := &fakeUsers{users: map[string]store.User{}}
	for _, u := range users {
		f.users[u.ID] = u
		f.order = append(f.order, u.ID)
	}
	return f
}

func (f *fakeUsers) CreateUser(_ context.Context, user *store.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = *user
	f.order = append(f.order, user.ID)
	return nil
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUsers) UpdateUser(_ context.Context, user *store.User) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if _, ok := f.users[user.ID]; !ok || f.vanished[user.ID] {
		return nil, apperrors.ErrUserNotFound
	}
	f.users[user.ID] = *user
	f.updates++
	stored := *user
	return &stored, nil
}

func (f *fakeUsers) ListUsers(_ context.Context, limit, offset int) ([]store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.User
	for i := offset; i < len(f.order) && len(out) < limit; i++ {
		out = append(out, f.users[f.order[i]])
	}
	return out, nil
}

// fakeIntakes returns canned totals and errors for the progress reads.
type fakeIntakes struct {
	consumed    *float64
	planned     float64
	consumedErr error
	plannedErr  error

	records   []store.MealIntake
	listErr   error
	saveErr   error
	statusErr error
	saved     []store.MealIntake
	statuses  map[string]bool
}

func (f *fakeIntakes) GetMealIntakeByDate(_ context.Context, userID, date string) ([]store.MealIntake, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []store.MealIntake
	for _, r := range f.records {
		if r.UserID == userID && r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeIntakes) GetMealIntake(_ context.Context, id string) (*store.MealIntake, error) {
	for _, r := range f.records {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, apperrors.ErrIntakeNotFound
}

func (f *fakeIntakes) SaveMealIntake(_ context.Context, intake *store.MealIntake) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if intake.ID == "" {
		intake.ID = "intake-" + intake.MealID
	}
	f.saved = append(f.saved, *intake)
	f.records = append(f.records, *intake)
	return nil
}

func (f *fakeIntakes) UpdateConsumedStatus(_ context.Context, id string, isConsumed bool) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	if f.statuses == nil {
		f.statuses = map[string]bool{}
	}
	f.statuses[id] = isConsumed
	return nil
}

func (f *fakeIntakes) DeleteMealIntake(_ context.Context, id string) error {
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrIntakeNotFound
}

func (f *fakeIntakes) GetTotalConsumedCalories(context.Context, string, string) (*float64, error) {
	return f.consumed, f.consumedErr
}

func (f *fakeIntakes) GetTotalPlannedCalories(context.Context, string, string) (float64, error) {
	return f.planned, f.plannedErr
}

func ptr[T any](v T) *T { return &v }
