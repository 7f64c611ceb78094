package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/reglet-dev/scatslx/internal/infrastructure/config"
	"github.com/reglet-dev/scatslx/internal/infrastructure/output"
)

type initOptions struct {
	path          string
	format        string
	noInteractive bool
}

func newInitCmd() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default scatslx config file",
		Long: `Write a settings file with the default tags, search limits and output
options. On a terminal the core values are asked for first; use
--no-interactive to write the defaults directly. An existing file is never
overwritten.`,
		Example: `  scatslx init
  scatslx init --format toml --path scatslx.toml --no-interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.path, "path", "", "Config file to write (default is $HOME/.scatslx.yaml)")
	cmd.Flags().StringVar(&opts.format, "format", config.TemplateYAML, "File format: yaml or toml")
	cmd.Flags().BoolVar(&opts.noInteractive, "no-interactive", false, "Disable interactive prompts")
	return cmd
}

func runInit(w io.Writer, opts *initOptions) error {
	path := opts.path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to find home directory: %w", err)
		}
		path = filepath.Join(home, ".scatslx."+opts.format)
	}

	settings := config.Defaults()
	if !opts.noInteractive && term.IsTerminal(int(os.Stdin.Fd())) { //nolint:gosec // G115: fd fits in int
		if err := promptSettings(&settings); err != nil {
			return err
		}
	}

	if err := config.WriteTemplate(path, opts.format, settings); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return fmt.Errorf("%w (remove it first to regenerate)", err)
		}
		return err
	}

	fmt.Fprintf(w, "✓ Config written to %s\n", path)
	return nil
}

// promptSettings asks for the values most often changed from the defaults.
func promptSettings(s *config.Settings) error {
	searchLimit := strconv.Itoa(s.SearchLimit)
	skipLines := strconv.Itoa(s.SkipInitialLines)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Search limit").
				Description("Lines searched around each site or subsystem anchor").
				Value(&searchLimit).
				Validate(atLeast(1)),
			huh.NewInput().
				Title("Skip initial lines").
				Description("Header lines ignored by the subsystem pass").
				Value(&skipLines).
				Validate(atLeast(0)),
			huh.NewConfirm().
				Title("Strict mode?").
				Description("Abort on the first non-numeric id").
				Value(&s.Strict),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Site-location CSV").
				Description("Leave empty to skip the link graph").
				Value(&s.Sites.Path),
			huh.NewSelect[string]().
				Title("Default output format").
				Options(huh.NewOptions(output.NewFormatterFactory().SupportedFormats()...)...).
				Value(&s.Output.Format),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	// Validated by the form
	s.SearchLimit, _ = strconv.Atoi(searchLimit)
	s.SkipInitialLines, _ = strconv.Atoi(skipLines)
	return nil
}

func atLeast(lo int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n < lo {
			return fmt.Errorf("enter a whole number >= %d", lo)
		}
		return nil
	}
}
