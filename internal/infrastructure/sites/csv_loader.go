// Package sites loads the site-location table used by the link graph.
package sites

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/reglet-dev/scatslx/internal/application/dto"
	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// Default column names of the site-location table.
const (
	DefaultIDColumn = "Equipment_ID"
	DefaultXColumn  = "Longitude"
	DefaultYColumn  = "Latitude"
)

// CSVLoader reads site locations from a CSV file with a header row.
type CSVLoader struct{}

// NewCSVLoader creates a new CSV loader.
func NewCSVLoader() *CSVLoader {
	return &CSVLoader{}
}

// LoadLocations reads the table at opts.Path. Rows with a non-numeric id or
// coordinate, and repeated ids, are reported and skipped.
func (l *CSVLoader) LoadLocations(ctx context.Context, opts dto.LocationOptions) ([]entities.SiteLocation, []entities.ErrorEntry, error) {
	root, err := os.OpenRoot(filepath.Dir(opts.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sites directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(filepath.Base(opts.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sites file: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	return l.LoadFromReader(ctx, file, opts)
}

// LoadFromReader reads site locations from r.
func (l *CSVLoader) LoadFromReader(ctx context.Context, r io.Reader, opts dto.LocationOptions) ([]entities.SiteLocation, []entities.ErrorEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sites header: %w", err)
	}
	cols, err := resolveColumns(header, opts)
	if err != nil {
		return nil, nil, err
	}

	var (
		locations []entities.SiteLocation
		errs      []entities.ErrorEntry
	)
	seen := make(map[values.SiteID]bool)

	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read sites table: %w", err)
		}
		line, _ := reader.FieldPos(0)

		loc, entry, ok := cols.parse(record, line)
		if !ok {
			errs = append(errs, entry)
			continue
		}
		if seen[loc.ID] {
			errs = append(errs, entities.ErrorEntry{
				EntityID: loc.ID.String(),
				Kind:     values.ErrInvalidSiteLocation,
				Message:  "duplicate site id; first location kept",
				Line:     line,
			})
			continue
		}
		seen[loc.ID] = true
		locations = append(locations, loc)
	}

	return locations, errs, nil
}

type columns struct {
	id, x, y int
}

func resolveColumns(header []string, opts dto.LocationOptions) (columns, error) {
	names := [3]string{
		withDefault(opts.IDColumn, DefaultIDColumn),
		withDefault(opts.XColumn, DefaultXColumn),
		withDefault(opts.YColumn, DefaultYColumn),
	}

	var idx [3]int
	for i, name := range names {
		idx[i] = -1
		for j, h := range header {
			if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == name {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return columns{}, fmt.Errorf("sites table has no %q column", name)
		}
	}
	return columns{id: idx[0], x: idx[1], y: idx[2]}, nil
}

func (c columns) parse(record []string, line int) (entities.SiteLocation, entities.ErrorEntry, bool) {
	invalid := func(entity, msg string) (entities.SiteLocation, entities.ErrorEntry, bool) {
		return entities.SiteLocation{}, entities.ErrorEntry{
			EntityID: entity,
			Kind:     values.ErrInvalidSiteLocation,
			Message:  msg,
			Line:     line,
		}, false
	}

	if len(record) <= max(c.id, c.x, c.y) {
		return invalid(fmt.Sprintf("row %d", line), "row has too few columns")
	}

	rawID := strings.TrimSpace(record[c.id])
	id, err := values.ParseSiteID(rawID)
	if err != nil {
		return invalid(rawID, fmt.Sprintf("non-numeric site id %q", rawID))
	}

	x, errX := strconv.ParseFloat(strings.TrimSpace(record[c.x]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(record[c.y]), 64)
	if errX != nil || errY != nil {
		return invalid(id.String(), fmt.Sprintf("non-numeric coordinate (%q, %q)", record[c.x], record[c.y]))
	}

	return entities.SiteLocation{ID: id, Point: entities.Point{X: x, Y: y}}, entities.ErrorEntry{}, true
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
