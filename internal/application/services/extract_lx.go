// Package services contains application use cases.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reglet-dev/scatslx/internal/application/dto"
	apperrors "github.com/reglet-dev/scatslx/internal/application/errors"
	"github.com/reglet-dev/scatslx/internal/application/ports"
	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/extraction"
	"github.com/reglet-dev/scatslx/internal/domain/repositories"
	"github.com/reglet-dev/scatslx/internal/domain/services"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// ExtractLXUseCase orchestrates the complete LX extraction workflow.
// This is a pure application layer component that depends only on ports.
type ExtractLXUseCase struct {
	source     ports.LXSource
	locations  ports.SiteLocationLoader
	repository repositories.ExtractionRepository
	metrics    ports.MetricsRecorder
	logger     *slog.Logger
}

// NewExtractLXUseCase creates a new extraction use case. locations,
// repository and metrics are optional.
func NewExtractLXUseCase(
	source ports.LXSource,
	locations ports.SiteLocationLoader,
	repository repositories.ExtractionRepository,
	metrics ports.MetricsRecorder,
	logger *slog.Logger,
) *ExtractLXUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &ExtractLXUseCase{
		source:     source,
		locations:  locations,
		repository: repository,
		metrics:    metrics,
		logger:     logger,
	}
}

// Execute runs the complete extraction workflow. In strict mode the
// first non-numeric id aborts the run with an error wrapping
// *entities.FieldError.
func (uc *ExtractLXUseCase) Execute(ctx context.Context, req dto.ExtractRequest) (*dto.ExtractResponse, error) {
	startTime := time.Now()

	// 1. Validate options and filter
	if err := req.Extraction.Validate(); err != nil {
		return nil, apperrors.NewValidationError("extraction", err.Error())
	}
	var filter *services.RecordFilter
	if req.Filters.FilterExpression != "" {
		f, err := services.CompileRecordFilter(req.Filters.FilterExpression)
		if err != nil {
			return nil, apperrors.NewValidationError("filter", "invalid filter expression", err.Error())
		}
		filter = f
	}

	// 2. Load the LX buffer
	uc.logger.Info("reading LX file", "path", req.SourcePath)
	lines, err := uc.source.ReadLines(ctx, req.SourcePath)
	if err != nil {
		return nil, apperrors.NewExtractionError(req.SourcePath, "failed to read LX file", err)
	}
	uc.logger.Debug("LX file loaded", "lines", len(lines))

	result := extraction.NewResult(req.SourcePath, req.Extraction.Strict)
	result.ToolVersion = req.Metadata.ToolVersion
	result.Filter = req.Filters.FilterExpression

	// 3. Run both passes
	out, err := services.NewExtractionDriver(req.Extraction).Run(ctx, lines)
	uc.logEntries("site", out.SiteErrors)
	uc.logEntries("subsystem", out.SubsystemErrors)
	if err != nil {
		uc.logger.Error("extraction aborted", "path", req.SourcePath, "error", err)
		return nil, apperrors.NewExtractionError(req.SourcePath, "extraction aborted", err)
	}
	uc.logger.Info("site pass complete", "sites", len(out.Sites), "errors", len(out.SiteErrors))
	uc.logger.Info("subsystem pass complete", "subsystems", len(out.Subsystems), "errors", len(out.SubsystemErrors))

	result.Sites = out.Sites
	result.Subsystems = out.Subsystems
	result.SiteErrors = out.SiteErrors
	result.SubsystemErrors = out.SubsystemErrors

	// 4. Join and filter
	rows := services.JoinRecords(out.Sites, out.Subsystems)
	joined := len(rows)
	if filter != nil {
		rows, err = filter.Apply(rows)
		if err != nil {
			return nil, apperrors.NewValidationError("filter", "filter evaluation failed", err.Error())
		}
	}
	result.Rows = rows

	// 5. Link graph
	if err := uc.buildLinkGraph(ctx, req.Locations, result); err != nil {
		return nil, err
	}

	result.Finalize()

	// 6. Persist and record
	if uc.repository != nil {
		if err := uc.repository.Save(ctx, result); err != nil {
			return nil, fmt.Errorf("failed to save extraction: %w", err)
		}
	}
	var warnings []string
	if uc.metrics != nil {
		if err := uc.metrics.RecordExtraction(result); err != nil {
			uc.logger.Warn("failed to record metrics", "error", err)
			warnings = append(warnings, fmt.Sprintf("metrics not written: %v", err))
		}
	}

	uc.logger.Info("extraction complete",
		"extraction_id", result.ExtractionID.String(),
		"rows", result.Summary.Rows,
		"edges", result.Summary.Edges,
		"errors", len(result.Errors()),
		"duration", result.Duration)

	return &dto.ExtractResponse{
		Result: result,
		Metadata: dto.ResponseMetadata{
			RequestID:   req.Metadata.RequestID,
			ProcessedAt: time.Now(),
			Duration:    time.Since(startTime),
		},
		Diagnostics: dto.Diagnostics{
			Warnings:    warnings,
			LineCount:   len(lines),
			FilteredOut: joined - len(rows),
		},
	}, nil
}

func (uc *ExtractLXUseCase) buildLinkGraph(ctx context.Context, opts dto.LocationOptions, result *extraction.Result) error {
	if opts.Path == "" || uc.locations == nil {
		return nil
	}

	locations, locErrs, err := uc.locations.LoadLocations(ctx, opts)
	if err != nil {
		return apperrors.NewConfigurationError("sites", "failed to load site locations", err)
	}
	uc.logEntries("location", locErrs)

	graph := services.BuildLinkGraph(result.Rows, locations)
	result.LocationsLoaded = true
	result.LocationErrors = locErrs
	result.Edges = graph.Edges
	for _, row := range graph.Unlocated {
		result.Unlocated = append(result.Unlocated, row.Site.SiteID)
	}

	uc.logger.Info("link graph built", "locations", len(locations), "edges", len(graph.Edges), "unlocated", len(graph.Unlocated))
	for n := 1; n <= values.PlansPerRecord; n++ {
		uc.logger.Debug("link layer", "plan", n, "edges", len(graph.EdgesForPlan(n)))
	}
	return nil
}

// logEntries reports recorded errors. Missing anchors are expected and
// logged at debug level.
func (uc *ExtractLXUseCase) logEntries(pass string, entries []entities.ErrorEntry) {
	for _, e := range entries {
		level := slog.LevelWarn
		if e.Kind == values.ErrAnchorNotFound {
			level = slog.LevelDebug
		}
		uc.logger.Log(context.Background(), level, e.Message,
			"pass", pass, "entity", e.EntityID, "kind", e.Kind.String(), "line", e.Line)
	}
}
