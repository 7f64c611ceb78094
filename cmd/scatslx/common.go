package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reglet-dev/scatslx/internal/infrastructure/output"
)

// CommonOptions contains output and execution flags not kept in settings.
type CommonOptions struct {
	Timeout time.Duration
}

// DefaultCommonOptions returns sensible defaults.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Timeout: 2 * time.Minute,
	}
}

// RegisterFlags adds common flags to a cobra command.
func (opts *CommonOptions) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout,
		"Global timeout for the whole run (0 to disable)")
}

// ApplyToContext applies timeout to context.
func (opts *CommonOptions) ApplyToContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return ctx, func() {}
}

// bindFlag binds a flag to a settings key.
func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind %s to %s: %v", flag, key, err))
	}
}

// validateFormat checks a format name against the formatter factory.
func validateFormat(factory *output.FormatterFactory, format string) error {
	if !slices.Contains(factory.SupportedFormats(), format) {
		return fmt.Errorf("invalid format: %s (valid: %v)", format, factory.SupportedFormats())
	}
	return nil
}
