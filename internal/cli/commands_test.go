package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gmsas95/nutritrack/internal/app"
	"github.com/gmsas95/nutritrack/internal/config"
	"github.com/gmsas95/nutritrack/internal/store"
	"github.com/gmsas95/nutritrack/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg, err := config.Load("", t.TempDir())
	require.NoError(t, err)
	return app.New(cfg, storetest.New(t), zap.NewNop(), "test")
}

func TestHandleCalcCommand(t *testing.T) {
	var out bytes.Buffer
	err := HandleCalcCommand([]string{"-weight", "70", "-height", "175", "-age", "30", "-level", "sedentary"}, &out)
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "1648.75 kcal")
	assert.Contains(t, s, "1978.50 kcal")
	assert.Contains(t, s, "1979 kcal")
	assert.Contains(t, s, "792 kcal")
	assert.Contains(t, s, "normal")
}

func TestHandleCalcCommand_InfersLevel(t *testing.T) {
	var out bytes.Buffer
	err := HandleCalcCommand([]string{"-weight", "60", "-height", "165", "-age", "25", "-gender", "female", "-minutes", "0"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "1345.25 kcal")
	assert.Contains(t, out.String(), "SEDENTARY")
}

func TestHandleCalcCommand_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing weight", []string{"-height", "175", "-age", "30"}},
		{"missing age", []string{"-weight", "70", "-height", "175"}},
		{"bad gender", []string{"-weight", "70", "-height", "175", "-age", "30", "-gender", "x"}},
		{"bad level", []string{"-weight", "70", "-height", "175", "-age", "30", "-level", "couch"}},
		{"bad goal", []string{"-weight", "70", "-height", "175", "-age", "30", "-goal", "bulk"}},
		{"bad days", []string{"-weight", "70", "-height", "175", "-age", "30", "-days", "9"}},
		{"unknown flag", []string{"-foo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.ErrorIs(t, HandleCalcCommand(tt.args, &out), ErrUsage)
		})
	}
}

func TestHandleSeedCommand(t *testing.T) {
	application := newTestApp(t)

	var out bytes.Buffer
	require.NoError(t, HandleSeedCommand(nil, application, &out))
	assert.Contains(t, out.String(), "built-in catalog")

	path := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
meals:
  - name: Miso Soup
    category: dinner
    calories: 84
`), 0o644))

	out.Reset()
	require.NoError(t, HandleSeedCommand([]string{path}, application, &out))
	assert.Contains(t, out.String(), "Imported 1 meals from "+path)

	out.Reset()
	assert.Error(t, HandleSeedCommand([]string{filepath.Join(t.TempDir(), "missing.yaml")}, application, &out))
}

func TestHandleImportCommand(t *testing.T) {
	application := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, application.Store.CreateUser(ctx, &store.User{Email: "importer@example.com"}))

	path := filepath.Join(t.TempDir(), "intake.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`# exported log
{"date":"2024-05-01","category":"BREAKFAST","meal_name":"Oats","calories":300,"is_consumed":true}
{"date":"2024-05-01","category":"BRUNCH","meal_name":"Waffles","calories":500}
`), 0o644))

	var out bytes.Buffer
	require.NoError(t, HandleImportCommand([]string{"-user", "IMPORTER@example.com", path}, application, &out))
	s := out.String()
	assert.Contains(t, s, "Success:   1")
	assert.Contains(t, s, "Failed:    1")
	assert.Contains(t, s, "line 3:")

	user, err := application.Store.GetUserByEmail(ctx, "importer@example.com")
	require.NoError(t, err)
	intakes, err := application.Store.GetMealIntakeByDate(ctx, user.ID, "2024-05-01")
	require.NoError(t, err)
	require.Len(t, intakes, 1)
	assert.Equal(t, "Oats", intakes[0].MealName)

	out.Reset()
	assert.ErrorIs(t, HandleImportCommand([]string{path}, application, &out), ErrUsage)
	assert.Contains(t, out.String(), "Usage: nutritrack import")

	out.Reset()
	assert.Error(t, HandleImportCommand([]string{"-user", "nobody@example.com", path}, application, &out))
}

func TestHandleStatusCommand(t *testing.T) {
	application := newTestApp(t)

	var out bytes.Buffer
	require.NoError(t, HandleStatusCommand(application, &out))

	s := out.String()
	assert.Contains(t, s, "nutritrack Status")
	assert.Contains(t, s, "ok")
	assert.Contains(t, s, "disabled")
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		secret   string
		expected string
	}{
		{"1234567890", "1234...7890"},
		{"short", "***"},
		{"", "***"},
		{"sk-1234567890abcdef", "sk-1...cdef"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, maskSecret(tt.secret))
	}
}

func TestPrintFunctions(t *testing.T) {
	var out bytes.Buffer
	PrintExtendedHelp(&out)
	PrintCalcHelp(&out)
	PrintSeedHelp(&out)
	PrintImportHelp(&out)
	assert.Contains(t, out.String(), "nutritrack")
}
