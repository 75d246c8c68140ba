package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gmsas95/nutritrack/internal/app"
	"github.com/gmsas95/nutritrack/internal/cli"
	"github.com/gmsas95/nutritrack/internal/config"
	"github.com/gmsas95/nutritrack/internal/store"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	dataDir    = flag.String("data", "", "Path to data directory")
	version    = "dev"
)

func main() {
	flag.Usage = func() { cli.PrintExtendedHelp(os.Stderr) }
	flag.Parse()
	cli.Version = version

	command, args := "serve", []string(nil)
	if flag.NArg() > 0 {
		command, args = flag.Arg(0), flag.Args()[1:]
	}

	switch command {
	case "help", "--help", "-h":
		cli.PrintExtendedHelp(os.Stdout)
		return
	case "version", "--version", "-v":
		fmt.Printf("nutritrack version %s\n", version)
		return
	case "calc":
		exitOn(cli.HandleCalcCommand(args, os.Stdout))
		return
	case "serve", "seed", "import", "status":
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		cli.PrintExtendedHelp(os.Stderr)
		os.Exit(2)
	}

	application, cleanup := initApp(command)

	var err error
	switch command {
	case "seed":
		err = cli.HandleSeedCommand(args, application, os.Stdout)
	case "import":
		err = cli.HandleImportCommand(args, application, os.Stdout)
	case "status":
		err = cli.HandleStatusCommand(application, os.Stdout)
	default:
		application.RunServer()
	}

	cleanup()
	exitOn(err)
}

func initApp(mode string) (*app.App, func()) {
	if err := config.LoadEnvFiles(); err != nil {
		log.Printf("Failed to load .env files: %v", err)
	}

	cfg, err := config.Load(*configPath, *dataDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.Info("Starting nutritrack",
		zap.String("version", version),
		zap.String("mode", mode),
		zap.String("data_dir", cfg.Storage.DataDir),
	)

	st, err := store.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}

	cleanup := func() {
		if err := st.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return app.New(cfg, st, logger, version), cleanup
}

// newLogger builds a development logger, or a production JSON logger when
// log.format is json.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zc.Level = level
	}
	return zc.Build()
}

func exitOn(err error) {
	if err == nil {
		return
	}
	if !errors.Is(err, cli.ErrUsage) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
