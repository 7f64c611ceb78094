// Package container provides dependency injection for the application.
package container

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/scatslx/internal/application/ports"
	"github.com/reglet-dev/scatslx/internal/application/services"
	"github.com/reglet-dev/scatslx/internal/domain/repositories"
	"github.com/reglet-dev/scatslx/internal/infrastructure/config"
	"github.com/reglet-dev/scatslx/internal/infrastructure/lxfile"
	"github.com/reglet-dev/scatslx/internal/infrastructure/metrics"
	"github.com/reglet-dev/scatslx/internal/infrastructure/output"
	"github.com/reglet-dev/scatslx/internal/infrastructure/persistence/memory"
	"github.com/reglet-dev/scatslx/internal/infrastructure/persistence/sqlite"
	"github.com/reglet-dev/scatslx/internal/infrastructure/sites"
)

// Container holds all application dependencies.
type Container struct {
	settings         *config.Settings
	reader           *lxfile.Reader
	repository       repositories.ExtractionRepository
	metrics          *metrics.Recorder
	formatters       *output.FormatterFactory
	extractLXUseCase *services.ExtractLXUseCase
	logger           *slog.Logger
	closers          []ports.Closer
}

// Options configure the container.
type Options struct {
	Settings *config.Settings
	Logger   *slog.Logger
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	settings := opts.Settings
	if settings == nil {
		d := config.Defaults()
		settings = &d
	}

	reader, err := lxfile.NewReader(settings.Input.Encoding)
	if err != nil {
		return nil, err
	}

	c := &Container{
		settings:   settings,
		reader:     reader,
		formatters: output.NewFormatterFactory(),
		logger:     opts.Logger,
	}

	// In-memory unless a database path is configured
	if settings.Output.DB != "" {
		repo, err := sqlite.New(settings.Output.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to open run database: %w", err)
		}
		c.repository = repo
		c.closers = append(c.closers, repo)
		opts.Logger.Debug("storing runs in SQLite", "path", settings.Output.DB)
	} else {
		c.repository = memory.NewExtractionRepository()
	}

	var recorder ports.MetricsRecorder
	if settings.Output.MetricsFile != "" {
		c.metrics = metrics.NewRecorder()
		recorder = c.metrics
	}

	c.extractLXUseCase = services.NewExtractLXUseCase(
		reader,
		sites.NewCSVLoader(),
		c.repository,
		recorder,
		opts.Logger,
	)

	return c, nil
}

// ExtractLXUseCase returns the extraction use case.
func (c *Container) ExtractLXUseCase() *services.ExtractLXUseCase {
	return c.extractLXUseCase
}

// Settings returns the resolved settings.
func (c *Container) Settings() *config.Settings {
	return c.settings
}

// Repository returns the run repository.
func (c *Container) Repository() repositories.ExtractionRepository {
	return c.repository
}

// Formatters returns the output formatter factory.
func (c *Container) Formatters() *output.FormatterFactory {
	return c.formatters
}

// WriteMetrics writes the metrics textfile when one is configured.
func (c *Container) WriteMetrics() error {
	if c.metrics == nil {
		return nil
	}
	return c.metrics.WriteToTextfile(c.settings.Output.MetricsFile)
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Close releases resources held by adapters.
func (c *Container) Close() error {
	var errs []error
	for _, closer := range c.closers {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}
