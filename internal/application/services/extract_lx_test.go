package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/scatslx/internal/application/dto"
	apperrors "github.com/reglet-dev/scatslx/internal/application/errors"
	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/extraction"
	"github.com/reglet-dev/scatslx/internal/domain/services"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

type fakeSource struct {
	lines []string
	err   error
}

func (f *fakeSource) ReadLines(_ context.Context, _ string) ([]string, error) {
	return f.lines, f.err
}

type fakeLocations struct {
	locations []entities.SiteLocation
	errs      []entities.ErrorEntry
}

func (f *fakeLocations) LoadLocations(_ context.Context, _ dto.LocationOptions) ([]entities.SiteLocation, []entities.ErrorEntry, error) {
	return f.locations, f.errs, nil
}

type fakeRepository struct {
	saved []*extraction.Result
}

func (f *fakeRepository) Save(_ context.Context, r *extraction.Result) error {
	f.saved = append(f.saved, r)
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, _ values.ExtractionID) (*extraction.Result, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRepository) FindBySource(_ context.Context, _ string, _ int) ([]*extraction.Result, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRepository) FindBetween(_ context.Context, _ string, _, _ time.Time) ([]*extraction.Result, error) {
	return nil, errors.New("not implemented")
}

type fakeMetrics struct {
	recorded int
	err      error
}

func (f *fakeMetrics) RecordExtraction(_ *extraction.Result) error {
	f.recorded++
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLX() []string {
	lines := make([]string, 10)
	return append(lines,
		"INT=202!S#=6!PP1=5SL101^2!PP2=0,0F!",
		"PP3=0,0F!PP4=0,0F!",
		"INT=101!S#=5!PP1=0,0F!PP2=0,0F!",
		"PP3=0,0F!PP4=0,0F!",
		"INT=303!S#=5!PP1=0,0F!PP2=0,0F!",
		"PP3=0,0F!PP4=0,0F!",
		"SS=5!",
		"LP1=6,30B202!",
		"LP2=0!",
		"LP3=0!",
		"LP4=0!",
	)
}

func testRequest() dto.ExtractRequest {
	return dto.ExtractRequest{
		SourcePath: "test.lx",
		Extraction: services.DefaultExtractionOptions(),
		Metadata:   dto.RequestMetadata{RequestID: "req-1", ToolVersion: "test"},
	}
}

func TestExtractLXUseCase_Execute(t *testing.T) {
	repo := &fakeRepository{}
	metrics := &fakeMetrics{}
	locations := &fakeLocations{locations: []entities.SiteLocation{
		{ID: 101, Point: entities.Point{X: 1, Y: 1}},
		{ID: 202, Point: entities.Point{X: 2, Y: 2}},
	}}
	uc := NewExtractLXUseCase(&fakeSource{lines: testLX()}, locations, repo, metrics, testLogger())

	req := testRequest()
	req.Locations = dto.LocationOptions{Path: "sites.csv"}
	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	result := resp.Result
	assert.Equal(t, "req-1", resp.Metadata.RequestID)
	assert.Equal(t, 21, resp.Diagnostics.LineCount)
	assert.Equal(t, "test", result.ToolVersion)

	require.Len(t, result.Rows, 3)
	assert.Equal(t, values.SiteID(101), result.Rows[0].Site.SiteID)
	assert.Equal(t, values.SiteID(202), result.Rows[1].Site.SiteID)
	assert.Nil(t, result.Rows[1].Subsystem, "subsystem 6 has no SS record")
	assert.NotNil(t, result.Rows[0].Subsystem)

	assert.True(t, result.LocationsLoaded)
	assert.Equal(t, []values.SiteID{303}, result.Unlocated)
	// 101 -LP1-> 202 and 202 -SL1-> 101
	assert.Len(t, result.Edges, 2)
	assert.Equal(t, 2, result.Summary.Edges)

	assert.Len(t, repo.saved, 1)
	assert.Equal(t, 1, metrics.recorded)
	assert.Empty(t, resp.Diagnostics.Warnings)
}

func TestExtractLXUseCase_Filter(t *testing.T) {
	uc := NewExtractLXUseCase(&fakeSource{lines: testLX()}, nil, nil, nil, testLogger())

	req := testRequest()
	req.Filters.FilterExpression = "pp_linked"
	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Result.Rows, 1)
	assert.Equal(t, values.SiteID(202), resp.Result.Rows[0].Site.SiteID)
	assert.Equal(t, 2, resp.Diagnostics.FilteredOut)
	assert.False(t, resp.Result.LocationsLoaded)
}

func TestExtractLXUseCase_InvalidFilter(t *testing.T) {
	uc := NewExtractLXUseCase(&fakeSource{lines: testLX()}, nil, nil, nil, testLogger())

	req := testRequest()
	req.Filters.FilterExpression = "site_id +"
	_, err := uc.Execute(context.Background(), req)

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "filter", verr.Field)
}

func TestExtractLXUseCase_InvalidOptions(t *testing.T) {
	uc := NewExtractLXUseCase(&fakeSource{}, nil, nil, nil, testLogger())

	req := testRequest()
	req.Extraction.SearchLimit = 0
	_, err := uc.Execute(context.Background(), req)

	var verr *apperrors.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestExtractLXUseCase_ReadFailure(t *testing.T) {
	cause := errors.New("no such file")
	uc := NewExtractLXUseCase(&fakeSource{err: cause}, nil, nil, nil, testLogger())

	_, err := uc.Execute(context.Background(), testRequest())
	assert.ErrorIs(t, err, cause)

	var xerr *apperrors.ExtractionError
	assert.True(t, errors.As(err, &xerr))
}

func TestExtractLXUseCase_StrictAbort(t *testing.T) {
	lines := testLX()
	lines[12] = "INT=1O1!S#=5!PP1=0,0F!PP2=0,0F!"

	repo := &fakeRepository{}
	uc := NewExtractLXUseCase(&fakeSource{lines: lines}, nil, repo, nil, testLogger())

	req := testRequest()
	req.Extraction.Strict = true
	_, err := uc.Execute(context.Background(), req)
	require.Error(t, err)

	var fe *entities.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "site_id", fe.Field)
	assert.Equal(t, "1O1", fe.EntityID)
	assert.Empty(t, repo.saved)
}

func TestExtractLXUseCase_NonStrictRecordsErrors(t *testing.T) {
	lines := testLX()
	lines[12] = "INT=1O1!S#=5!PP1=0,0F!PP2=0,0F!"

	uc := NewExtractLXUseCase(&fakeSource{lines: lines}, nil, nil, nil, testLogger())
	resp, err := uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Len(t, resp.Result.Rows, 2)
	require.Len(t, resp.Result.SiteErrors, 1)
	assert.Equal(t, values.ErrNonNumericSiteID, resp.Result.SiteErrors[0].Kind)
	assert.Equal(t, 13, resp.Result.SiteErrors[0].Line)
	assert.True(t, resp.Result.HasErrors())
}

func TestExtractLXUseCase_MetricsFailureIsWarning(t *testing.T) {
	metrics := &fakeMetrics{err: errors.New("read-only")}
	uc := NewExtractLXUseCase(&fakeSource{lines: testLX()}, nil, nil, metrics, testLogger())

	resp, err := uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Len(t, resp.Diagnostics.Warnings, 1)
}

func TestDecodeToken(t *testing.T) {
	resp, err := DecodeToken(dto.DecodeRequest{Kind: values.PlanKindPhase, Token: "5SL1073^2"})
	require.NoError(t, err)
	assert.Equal(t, [5]string{"5", "5", "1", "2", "1073"}, resp.Tuple)
	assert.Equal(t, "5SL1073^2", resp.Canonical)
	assert.Empty(t, resp.Issues)

	resp, err = DecodeToken(dto.DecodeRequest{Kind: values.PlanKindLink, Token: "6,10A"})
	require.NoError(t, err)
	require.Len(t, resp.Issues, 1)
	assert.Equal(t, values.ErrNonNumericLinkage, resp.Issues[0].Kind)
	assert.Empty(t, resp.Canonical)

	_, err = DecodeToken(dto.DecodeRequest{Kind: values.PlanKindLink, Token: "6,10A", Strict: true})
	assert.ErrorIs(t, err, services.ErrNonNumericLinkage)

	_, err = DecodeToken(dto.DecodeRequest{Kind: "XX", Token: "0"})
	assert.Error(t, err)
}
