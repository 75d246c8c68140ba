// Package catalog loads meal catalogs from YAML and keeps the store in sync
// with a seed file.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"github.com/gmsas95/nutritrack/internal/nutrition"
	"github.com/gmsas95/nutritrack/internal/store"
	"gopkg.in/yaml.v3"
)

//go:embed meals.yaml
var builtin []byte

type file struct {
	Meals []store.Meal `yaml:"meals"`
}

// Builtin returns the catalog shipped with the binary.
func Builtin() ([]store.Meal, error) {
	return Parse(builtin)
}

// LoadFile reads a YAML catalog from disk.
func LoadFile(path string) ([]store.Meal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	meals, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return meals, nil
}

// Parse decodes and normalizes a catalog. Meals without an ID get one
// derived from their name so reloading the same file is idempotent.
func Parse(data []byte) ([]store.Meal, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrMealInvalid.Code, "invalid catalog yaml")
	}

	seen := make(map[string]bool, len(f.Meals))
	meals := make([]store.Meal, 0, len(f.Meals))
	for i, m := range f.Meals {
		m.Name = strings.TrimSpace(m.Name)
		m.Category = nutrition.MealCategory(strings.ToUpper(strings.TrimSpace(string(m.Category))))
		if m.ID == "" {
			m.ID = Slug(m.Name)
		}
		m.Source = "seed"

		if err := store.ValidateMeal(&m); err != nil {
			return nil, fmt.Errorf("meal #%d: %w", i+1, err)
		}
		if !m.Category.Valid() {
			return nil, apperrors.New(apperrors.ErrMealInvalid.Code,
				fmt.Sprintf("meal #%d (%s): unknown category %q", i+1, m.Name, m.Category))
		}
		if seen[m.ID] {
			return nil, apperrors.New(apperrors.ErrMealInvalid.Code, "duplicate meal id: "+m.ID)
		}
		seen[m.ID] = true
		meals = append(meals, m)
	}
	return meals, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a meal name into a stable identifier.
func Slug(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
