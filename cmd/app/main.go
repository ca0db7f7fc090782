package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/linkorg/internal"
	pkgconfig "github.com/starford/linkorg/pkg/config"
)

var version = "dev"

// loadConfig reads the config named by --config, creating it with defaults
// when absent, and builds the logger from it.
func loadConfig(cmd *cli.Command) (*internal.Config, *slog.Logger, error) {
	configPath := cmd.String("config")

	cfg, res, err := internal.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := internal.NewLogger(os.Stderr, cfg.App)

	switch res.Status {
	case pkgconfig.Created:
		logger.Info("config file created with defaults", slog.String("path", configPath))
	case pkgconfig.Defaulted:
		logger.Warn("config file could not be parsed, using defaults",
			slog.String("path", configPath),
			slog.String("error", res.ParseErr.Error()))
	}
	return cfg, logger, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithLogger(logger),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "linkorg",
		Usage:   "Parse org and markdown reading notes into a heading tree of links",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "$XDG_CONFIG_HOME/linkorg/config.yaml",
				Value:       internal.DefaultConfigPath(),
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: commands(),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
