package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/harshdoesdev/instance-monitor/internal/app"
	"github.com/harshdoesdev/instance-monitor/internal/config"
	"github.com/harshdoesdev/instance-monitor/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "instance-monitor",
		Usage:   "A simple monitor for system metrics",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to an optional configuration file",
				Sources: cli.EnvVars("INSTANCE_MONITOR_CONFIG"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   config.DefaultPort,
				Usage:   "port to serve metrics on",
				Sources: cli.EnvVars("INSTANCE_MONITOR_PORT"),
			},
			&cli.StringFlag{
				Name:    "delay",
				Value:   config.DefaultSamplingInterval.String(),
				Usage:   "sampling interval (duration, or bare seconds)",
				Sources: cli.EnvVars("INSTANCE_MONITOR_DELAY"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "error",
				Usage:   "log level: debug, info, warn, error",
				Sources: cli.EnvVars("INSTANCE_MONITOR_LOG_LEVEL"),
			},
		},
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	levelErr := applyLogLevel(cmd, cfg)

	// Configure logging level
	var level slog.LevelVar
	level.Set(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: &level,
	}))
	slog.SetDefault(logger)

	if levelErr != nil {
		slog.Warn("falling back to default log level", "error", levelErr)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	slog.Info("starting instance-monitor", "version", version.String(), "config", configPath)

	// Setup graceful shutdown
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(shutdownCtx, cfg, app.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if configPath != "" {
		watcher := config.NewWatcher(configPath, logger)
		go func() {
			err := watcher.Watch(shutdownCtx, logLevelReloader(&level, cmd.IsSet("log-level")))
			if err != nil {
				slog.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	fmt.Printf("Listening at: http://0.0.0.0:%[1]d\nMetrics endpoint: http://0.0.0.0:%[1]d%[2]s\n",
		cfg.Server.Port, cfg.Server.Path)

	if err := application.Run(shutdownCtx); err != nil {
		return err
	}

	slog.Info("shutdown complete")
	return nil
}

// applyFlags overrides file configuration with explicitly set flags.
// Without a config file, flag defaults apply.
func applyFlags(cmd *cli.Command, cfg *config.Config) error {
	fromFile := cmd.String("config") != ""

	if cmd.IsSet("port") || !fromFile {
		cfg.Server.Port = cmd.Int("port")
	}

	if cmd.IsSet("delay") || !fromFile {
		interval, err := config.ParseInterval(cmd.String("delay"))
		if err != nil {
			return fmt.Errorf("invalid delay: %w", err)
		}
		cfg.Sampling.Interval = interval
	}

	return nil
}

// applyLogLevel sets the log level from the flag. An unknown level falls
// back to error and is returned so it can be reported once logging is up.
func applyLogLevel(cmd *cli.Command, cfg *config.Config) error {
	if !cmd.IsSet("log-level") && cmd.String("config") != "" {
		return nil
	}

	level, err := config.ParseLogLevel(cmd.String("log-level"))
	cfg.Log.Level = level
	return err
}

// logLevelReloader returns a reload callback that applies the file's log
// level. A level pinned by an explicit flag is left alone.
func logLevelReloader(level *slog.LevelVar, pinned bool) func(*config.Config) {
	return func(reloaded *config.Config) {
		if pinned {
			slog.Debug("log level pinned by flag, ignoring config file level", "level", level.Level())
			return
		}
		if reloaded.Log.Level != level.Level() {
			slog.Info("log level changed", "from", level.Level(), "to", reloaded.Log.Level)
			level.Set(reloaded.Log.Level)
		}
	}
}
