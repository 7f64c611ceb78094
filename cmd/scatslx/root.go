package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apperrors "github.com/reglet-dev/scatslx/internal/application/errors"
	"github.com/reglet-dev/scatslx/internal/infrastructure/config"
)

// globalOptions are the persistent flags of the root command.
type globalOptions struct {
	cfgFile string
	verbose bool
	quiet   bool
}

// newRootCmd builds the command tree around its own viper instance.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "scatslx",
		Short: "Extract site and subsystem plan data from SCATS LX files",
		Long: `scatslx reads a SCATS LX configuration export and extracts, per site,
its subsystem and four phase plans and, per subsystem, its four link plans.
Plan tokens are decoded into offsets, phases and linked sites. Records are
joined on subsystem and can be drawn as a site-linkage graph when a
site-location table is supplied.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := setupLogging(cmd.ErrOrStderr(), opts.verbose, opts.quiet); err != nil {
				return err
			}
			return initConfig(v, opts.cfgFile)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.scatslx.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "only log errors")

	rootCmd.AddCommand(
		newExtractCmd(v),
		newDecodeCmd(),
		newInitCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// initConfig loads configuration from the config file and environment.
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return apperrors.NewConfigurationError("config", "failed to find home directory", err)
		}

		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".scatslx")
	}

	config.BindEnv(v)

	err := v.ReadInConfig()
	if err == nil {
		slog.Debug("using config file", "file", v.ConfigFileUsed())
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if cfgFile == "" && errors.As(err, &notFound) {
		return nil
	}
	return apperrors.NewConfigurationError("config", fmt.Sprintf("failed to read %s", v.ConfigFileUsed()), err)
}

func setupLogging(w io.Writer, verbose, quiet bool) error {
	if verbose && quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}

	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}

	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}
