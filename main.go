package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	app "github.com/rocketscienceinc/tictactoe-history/internal"
	"github.com/rocketscienceinc/tictactoe-history/internal/config"
)

const (
	serviceName       = "tictactoe-history"
	configPathEnv     = "CONFIG_PATH"
	defaultConfigFile = "config.yml"
)

// main - loads the config, builds the logger and serves games until a signal arrives.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	conf := config.MustLoad(configPath())
	logger := newLogger(conf.LogLevel)

	if err := app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// configPath - returns CONFIG_PATH, or config.yml in the working directory.
func configPath() string {
	if path := os.Getenv(configPathEnv); path != "" {
		return path
	}

	baseDir, err := os.Getwd()
	if err != nil {
		panic(fmt.Errorf("failed to get current directory: %w", err))
	}

	return filepath.Join(baseDir, defaultConfigFile)
}

// newLogger - builds the JSON logger tagged with the service name.
func newLogger(logLevel string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(logLevel)})

	return slog.New(handler).With("service", serviceName)
}

// parseLevel - maps debug, info, warn and error to slog levels. Anything else is info.
func parseLevel(logLevel string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}
