package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gmsas95/nutritrack/internal/app"
	"github.com/gmsas95/nutritrack/internal/batch"
	"github.com/gmsas95/nutritrack/internal/catalog"
	"github.com/gmsas95/nutritrack/internal/nutrition"
)

var Version = "dev"

// ErrUsage is returned after help text has been printed for bad arguments.
var ErrUsage = errors.New("invalid usage")

// HandleCalcCommand prints the health metrics derived from flags. It needs
// no config or storage.
func HandleCalcCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	fs.SetOutput(out)

	weight := fs.Float64("weight", 0, "Weight in kg")
	height := fs.Float64("height", 0, "Height in cm")
	age := fs.Int("age", 0, "Age in years")
	gender := fs.String("gender", "male", "male or female")
	minutes := fs.Int("minutes", 0, "Active minutes per active day")
	days := fs.Int("days", 7, "Active days per week")
	level := fs.String("level", "", "Activity level (sedentary, lightly_active, moderately_active, active, very_active); inferred when empty")
	goal := fs.String("goal", "maintain", "lose_weight, maintain or gain_weight")

	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	profile, err := calcProfile(*weight, *height, *age, *gender, *minutes, *days, *level, *goal)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n\n", err)
		PrintCalcHelp(out)
		return ErrUsage
	}

	m := nutrition.Compute(profile, time.Now())

	p := NewPrinter(out)
	p.Title("Health Metrics")
	p.Row("BMI", fmt.Sprintf("%.2f (%s)", m.BMI, nutrition.BMICategory(m.BMI)))
	p.Row("BMR", fmt.Sprintf("%.2f kcal", m.BMR))
	p.Row("Activity level", fmt.Sprintf("%s (%s)", m.ActivityLevel, nutrition.ActivityLevelDescription(m.ActivityLevel)))
	p.Row("TDEE", fmt.Sprintf("%.2f kcal", m.TDEE))
	p.Row("Goal", m.Goal)
	p.Row("Daily target", fmt.Sprintf("%d kcal", m.DailyCalorieTarget))
	p.Blank()
	p.Title("Per Meal")
	for _, cat := range nutrition.MealCategories {
		p.Row(strings.ToLower(string(cat)), fmt.Sprintf("%d kcal", m.MealCalories(cat)))
	}
	return nil
}

func calcProfile(weight, height float64, age int, gender string, minutes, days int, level, goal string) (nutrition.Profile, error) {
	if weight <= 0 || height <= 0 {
		return nutrition.Profile{}, errors.New("-weight and -height must be positive")
	}
	if age <= 0 {
		return nutrition.Profile{}, errors.New("-age must be positive")
	}

	p := nutrition.Profile{
		WeightKg:              weight,
		HeightCm:              height,
		Age:                   age,
		Gender:                nutrition.Gender(strings.ToUpper(gender)),
		ActivityMinutesPerDay: minutes,
		ActivityDaysPerWeek:   days,
		ActivityLevel:         nutrition.ActivityLevel(strings.ToUpper(level)),
		Goal:                  nutrition.Goal(strings.ToUpper(goal)),
	}
	if !p.Gender.Valid() {
		return p, fmt.Errorf("unknown gender %q", gender)
	}
	if p.ActivityLevel != "" && !p.ActivityLevel.Valid() {
		return p, fmt.Errorf("unknown activity level %q", level)
	}
	if !p.Goal.Valid() {
		return p, fmt.Errorf("unknown goal %q", goal)
	}
	if days < 0 || days > 7 {
		return p, errors.New("-days must be between 0 and 7")
	}
	return p, nil
}

// HandleSeedCommand imports a YAML meal catalog, or the built-in one when no
// file is given.
func HandleSeedCommand(args []string, application *app.App, out io.Writer) error {
	if len(args) > 1 || (len(args) == 1 && isHelp(args[0])) {
		PrintSeedHelp(out)
		return nil
	}

	seeder := application.Seeder
	if len(args) == 1 {
		seeder = catalog.NewSeeder(application.UseCases.Catalog, args[0], application.Logger)
	}

	n, err := seeder.Seed(context.Background())
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	source := "built-in catalog"
	if len(args) == 1 {
		source = args[0]
	}
	fmt.Fprintf(out, "Imported %d meals from %s\n", n, source)
	return nil
}

// HandleImportCommand bulk-loads intake records from a JSON Lines file into
// one user's log.
func HandleImportCommand(args []string, application *app.App, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(out)

	email := fs.String("user", "", "Email of the user that owns the records")
	concurrency := fs.Int("concurrency", 4, "Records saved in parallel")
	perSec := fs.Float64("rate", 0, "Maximum records per second (0 = unlimited)")
	strict := fs.Bool("strict", false, "Abort on the first malformed line")
	asJSON := fs.Bool("json", false, "Print the full result as JSON")

	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if *email == "" || fs.NArg() != 1 {
		PrintImportHelp(out)
		return ErrUsage
	}

	ctx := context.Background()
	user, err := application.Store.GetUserByEmail(ctx, *email)
	if err != nil {
		return fmt.Errorf("unknown user %s: %w", *email, err)
	}

	cfg := batch.DefaultConfig()
	cfg.MaxConcurrency = *concurrency
	cfg.RecordsPerSec = *perSec
	cfg.SkipInvalid = !*strict

	processor := batch.NewProcessor(application.UseCases.SaveMealIntake, cfg, application.Logger)
	res, err := processor.ProcessFile(ctx, user.ID, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if *asJSON {
		data, err := res.ToJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, data)
		return nil
	}
	fmt.Fprint(out, res.Summary())
	for _, item := range res.Items {
		if !item.Success && !item.Skipped {
			fmt.Fprintf(out, "  line %d: %s\n", item.Line, item.Error)
		}
	}
	return nil
}

func HandleStatusCommand(application *app.App, out io.Writer) error {
	status, err := application.Status(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}
	cfg := application.Config

	p := NewPrinter(out)
	p.Title("nutritrack Status")
	p.Row("Version", status.Version)
	p.Row("Data", status.DataDir)
	p.Row("Server", fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port))
	p.Check("Storage", status.StorageOK)
	p.Blank()

	p.Title("Data")
	p.Row("Users", status.Stats.Users)
	p.Row("Meals", status.Stats.Meals)
	p.Row("Intake records", status.Stats.Intakes)
	p.Row("Menu items", status.Stats.MenuItems)
	p.Blank()

	p.Title("Background")
	p.Row("Metrics stale after", status.Staleness)
	p.Row("Cron", enabled(status.CronEnabled))
	if status.CronEnabled {
		p.Row("  health recompute", cfg.Cron.HealthRecompute)
		if status.RemoteEnabled {
			p.Row("  catalog sync", cfg.Cron.CatalogSync)
		}
	}
	p.Row("Remote", enabled(status.RemoteEnabled))
	if status.RemoteEnabled {
		p.Row("  base URL", status.RemoteBaseURL)
		p.Row("  API key", maskSecret(cfg.Remote.APIKey))
		last := "never"
		if !status.LastCatalogSync.IsZero() {
			last = status.LastCatalogSync.Format(time.RFC3339)
		}
		p.Row("  last catalog sync", last)
	}
	return nil
}

func isHelp(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

func PrintExtendedHelp(out io.Writer) {
	fmt.Fprintf(out, `nutritrack %s - calorie tracking backend

Usage:
  nutritrack [flags] [command]

Commands:
  serve            Run the HTTP API (default)
  calc [flags]     Compute BMI, BMR, TDEE and calorie targets
  seed [file]      Import a YAML meal catalog (built-in catalog when omitted)
  import [flags] <file>
                   Import intake records from a JSON Lines file
  status           Show configuration and storage status
  version          Print the version
  help             Show this help

Flags:
  -config string   Path to config file
  -data string     Path to data directory

Run 'nutritrack calc -h' or 'nutritrack import -h' for command flags.
`, Version)
}

func PrintCalcHelp(out io.Writer) {
	fmt.Fprintln(out, "Usage: nutritrack calc -weight 70 -height 175 -age 30 [-gender male] [-level sedentary | -minutes 30 -days 5] [-goal maintain]")
}

func PrintSeedHelp(out io.Writer) {
	fmt.Fprintln(out, "Usage: nutritrack seed [catalog.yaml]")
	fmt.Fprintln(out, "Meals are upserted by id; running the command twice is safe.")
}

func PrintImportHelp(out io.Writer) {
	fmt.Fprintln(out, "Usage: nutritrack import -user alice@example.com [-concurrency 4] [-rate 0] [-strict] [-json] intake.jsonl")
	fmt.Fprintln(out, `Each line is {"date":"2024-05-01","category":"LUNCH","meal_name":"Soup","calories":250}.`)
}
