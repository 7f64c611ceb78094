package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reglet-dev/scatslx/internal/infrastructure/config"
	"github.com/reglet-dev/scatslx/internal/infrastructure/container"
)

// CommandContext provides common command dependencies.
type CommandContext struct {
	Context   context.Context
	Container *container.Container
	Settings  *config.Settings
	Logger    *slog.Logger
}

// CommandHandler is a function that executes with initialized dependencies.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// withContainer wraps a command handler with settings resolution and
// container setup. The container is closed when the handler returns.
func withContainer(v *viper.Viper, handler CommandHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		settings, err := config.Load(v)
		if err != nil {
			return err
		}
		logger.Debug("settings resolved", "settings", settings.String())

		c, err := container.New(container.Options{
			Settings: settings,
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer func() {
			if err := c.Close(); err != nil {
				logger.Warn("failed to close resources", "error", err)
			}
		}()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		return handler(&CommandContext{
			Context:   ctx,
			Container: c,
			Settings:  settings,
			Logger:    logger,
		}, cmd, args)
	}
}
