package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// sampleLX is a small LX export: a header region, two sites and two
// subsystems.
func sampleLX() []string {
	return []string{
		"LX!VERSION=6.9!",
		"REGION=NORTH!",
		"SS=99!",
		"",
		"",
		"",
		"",
		"",
		"",
		"",
		"INT=101!S#=5!PP1=0,0F!PP2=0,0F!",
		"PP3=0,0F!PP4=0,0F!",
		"INT=202!S#=6!PP1=5SL101^2!PP2=0,0F!",
		"PP3=0,0F!PP4=0,0F!",
		"SS=5!",
		"LP1=6,30B202!",
		"LP2=0!",
		"LP3=0!",
		"LP4=0!",
		"SS=6!",
		"LP1=6,30B101!",
		"LP2=0!",
		"LP3=0!",
		"LP4=0!",
	}
}

func TestExtractionDriver_Run(t *testing.T) {
	out, err := NewExtractionDriver(DefaultExtractionOptions()).Run(context.Background(), sampleLX())
	require.NoError(t, err)

	require.Len(t, out.Sites, 2)
	assert.Equal(t, values.SiteID(101), out.Sites[0].SiteID)
	assert.Equal(t, values.SiteID(202), out.Sites[1].SiteID)
	assert.Equal(t, values.LinkedTo(101), out.Sites[1].Plan(1).Offset.Link)

	// SS=99 sits inside the header region and is not an anchor.
	require.Len(t, out.Subsystems, 2)
	assert.Equal(t, values.SubsystemID(5), out.Subsystems[0].SubsystemID)
	assert.Equal(t, values.SubsystemID(6), out.Subsystems[1].SubsystemID)

	assert.Empty(t, out.SiteErrors)
	assert.Empty(t, out.SubsystemErrors)
	assert.Zero(t, out.ErrorCount())
}

func TestExtractionDriver_NonStrictCollectsErrors(t *testing.T) {
	lines := sampleLX()
	lines[12] = "INT=2O2!S#=6!PP1=5SL101^2!PP2=0,0F!"
	lines[15] = "LP1=6,30BXYZ!"

	out, err := NewExtractionDriver(DefaultExtractionOptions()).Run(context.Background(), lines)
	require.NoError(t, err)

	assert.Len(t, out.Sites, 1)
	assert.Equal(t, []values.ErrorKind{values.ErrNonNumericSiteID}, kindsOf(out.SiteErrors))
	assert.Len(t, out.Subsystems, 2)
	assert.Equal(t, []values.ErrorKind{values.ErrNonNumericLinkage}, kindsOf(out.SubsystemErrors))
	assert.Equal(t, values.InvalidLinkage(), out.Subsystems[0].Link(1).Offset.Link)
}

func TestExtractionDriver_StrictHalts(t *testing.T) {
	lines := sampleLX()
	lines[15] = "LP1=6,30BXYZ!"

	opts := DefaultExtractionOptions()
	opts.Strict = true
	_, err := NewExtractionDriver(opts).Run(context.Background(), lines)
	require.Error(t, err)

	var fe *entities.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "5", fe.EntityID)
	assert.Equal(t, "LP1", fe.Field)
}

func TestExtractionDriver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractionDriver(DefaultExtractionOptions()).Run(ctx, sampleLX())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractionDriver_StrictReportsSitePassFirst(t *testing.T) {
	lines := make([]string, 0, 20020)
	for range 10 {
		lines = append(lines, "")
	}
	lines = append(lines, "SS=xx!", "LP1=0!")
	// The subsystem failure sits far ahead of the site failure in the file.
	for range 20000 {
		lines = append(lines, "REM=filler!")
	}
	lines = append(lines, "INT=zz!S#=5!PP1=0,0F!PP2=0,0F!")

	opts := DefaultExtractionOptions()
	opts.Strict = true
	driver := NewExtractionDriver(opts)

	for range 20 {
		_, err := driver.Run(context.Background(), lines)
		require.Error(t, err)

		var fe *entities.FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "site_id", fe.Field)
		assert.Equal(t, "zz", fe.EntityID)
	}
}

func TestExtractionDriver_StrictSubsystemFailure(t *testing.T) {
	lines := sampleLX()
	lines[14] = "SS=5x!"

	opts := DefaultExtractionOptions()
	opts.Strict = true
	out, err := NewExtractionDriver(opts).Run(context.Background(), lines)
	require.Error(t, err)

	var fe *entities.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "subsystem_id", fe.Field)
	assert.Len(t, out.Sites, 2, "site pass completes")
}

func TestExtractionDriver_SkipBoundary(t *testing.T) {
	opts := DefaultExtractionOptions()

	lines := make([]string, opts.SkipInitialLines)
	lines[opts.SkipInitialLines-1] = "SS=7!"
	lines = append(lines, "SS=8!", "LP1=0!", "LP2=0!", "LP3=0!", "LP4=0!")

	out, err := NewExtractionDriver(opts).Run(context.Background(), lines)
	require.NoError(t, err)

	// The first anchor at index SkipInitialLines is read; the one before it is not.
	require.Len(t, out.Subsystems, 1)
	assert.Equal(t, values.SubsystemID(8), out.Subsystems[0].SubsystemID)
	assert.Equal(t, opts.SkipInitialLines+1, out.Subsystems[0].Line, "lines are 1-based")
}
