package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/extraction"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

func slot(name, raw string, offset entities.PlanOffset) entities.PlanSlot {
	return entities.PlanSlot{Name: name, Raw: raw, Offset: offset, Found: true}
}

func plainOffset() entities.PlanOffset {
	return entities.PlanOffset{OffsetLow: "0", OffsetHigh: "0", Phase: "F", Link: values.Unlinked()}
}

func createTestResult() *extraction.Result {
	result := extraction.NewResultWithID(
		values.MustParseExtractionID("123e4567-e89b-12d3-a456-426614174000"),
		"testdata/site.lx", false)
	result.StartTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	result.ToolVersion = "1.2.3"

	sub5 := values.SubsystemID(5)
	a := entities.SiteRecord{SiteID: 101, SubsystemID: &sub5, Line: 11}
	for i := range a.Plans {
		a.Plans[i] = slot(values.PlanKindPhase.SlotName(i+1), "0,0F", plainOffset())
	}
	b := entities.SiteRecord{SiteID: 202, Line: 13}
	for i := range b.Plans {
		b.Plans[i] = entities.EmptySlot(values.PlanKindPhase.SlotName(i + 1))
	}
	b.Plans[0] = slot("PP1", "5SL101^2", entities.PlanOffset{
		OffsetLow: "5", OffsetHigh: "5", Phase: "2", StartOfPhase: true, Slaved: true, Link: values.LinkedTo(101),
	})

	sub := entities.SubsystemRecord{SubsystemID: 5, Line: 20}
	sub.Links[0] = slot("LP1", "6,30B202", entities.PlanOffset{OffsetLow: "6", OffsetHigh: "30", Phase: "B", Link: values.LinkedTo(202)})
	sub.Links[1] = slot("LP2", "0", entities.NoLinksFallback())
	sub.Links[2] = slot("LP3", "6,10A", entities.PlanOffset{OffsetLow: "6", OffsetHigh: "10", Phase: "A", Link: values.InvalidLinkage()})
	sub.Links[3] = entities.EmptySlot("LP4")

	result.Sites = []entities.SiteRecord{a, b}
	result.Subsystems = []entities.SubsystemRecord{sub}
	result.Rows = []entities.JoinedRecord{{Site: a, Subsystem: &sub}, {Site: b}}
	result.LocationsLoaded = true
	result.Edges = []entities.LinkEdge{{
		Kind: entities.EdgeLink, Plan: 1, From: 101, To: 202,
		FromPoint: entities.Point{X: 1, Y: 2}, ToPoint: entities.Point{X: 3, Y: 4},
	}}
	result.SiteErrors = []entities.ErrorEntry{
		{EntityID: "202", Kind: values.ErrAnchorNotFound, Message: "subsystem \"S#=\" not found within 20 lines", Line: 13},
	}
	result.SubsystemErrors = []entities.ErrorEntry{
		{EntityID: "5", Kind: values.ErrNonNumericLinkage, Message: "LP3: non-numeric linked site", Line: 23},
	}
	result.Finalize()
	return result
}

func TestFormatterFactory(t *testing.T) {
	f := NewFormatterFactory()
	for _, format := range f.SupportedFormats() {
		formatter, err := f.Create(format, &bytes.Buffer{}, Options{})
		require.NoError(t, err, format)
		assert.NotNil(t, formatter)
	}

	_, err := f.Create("junit", &bytes.Buffer{}, Options{})
	assert.Error(t, err)
	assert.True(t, f.IsBinary("msgpack"))
	assert.False(t, f.IsBinary("json"))
}

func TestTableFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewTableFormatter(&buf)
	formatter.EnableColor = false

	require.NoError(t, formatter.Format(createTestResult()))
	out := buf.String()

	assert.Contains(t, out, "LX file: testdata/site.lx")
	assert.Contains(t, out, "SITE")
	assert.Contains(t, out, "5SL101^2→101")
	assert.Contains(t, out, "6,30B202→202")
	assert.Contains(t, out, "6,10A→invalid")
	assert.Contains(t, out, "LP1 101 → 202")
	assert.Contains(t, out, "non_numeric_linkage 5 (line 23)")
	assert.Contains(t, out, "Errors:       2")
	assert.NotContains(t, out, "\x1b[")
}

func TestTableFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewTableFormatter(&buf)
	formatter.EnableColor = false

	result := extraction.NewResult("empty.lx", false)
	result.Finalize()
	require.NoError(t, formatter.Format(result))
	assert.Contains(t, buf.String(), "No sites extracted.")
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf, true).Format(createTestResult()))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", raw["extraction_id"])

	rows := raw["rows"].([]any)
	require.Len(t, rows, 2)
	site := rows[1].(map[string]any)["site"].(map[string]any)
	assert.Nil(t, site["subsystem_id"])
	pp1 := site["plans"].([]any)[0].(map[string]any)
	offset := pp1["offset"].(map[string]any)
	assert.EqualValues(t, 101, offset["linked_site_id"])
	assert.Equal(t, true, offset["offset_start_flag"])
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(&buf).Format(createTestResult()))

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "testdata/site.lx", raw["source_path"])
	assert.Contains(t, buf.String(), "linked_site_id: -2")
}

func TestSARIFFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSARIFFormatter(&buf, "", "").Format(createTestResult()))

	report, err := sarif.FromBytes(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, report.Validate())
	require.Len(t, report.Runs, 1)

	run := report.Runs[0]
	assert.Equal(t, "scatslx", *run.Tool.Driver.Name)
	assert.Equal(t, "1.2.3", *run.Tool.Driver.Version)
	assert.Len(t, run.Tool.Driver.Rules, len(values.AllErrorKinds()))
	require.Len(t, run.Results, 2)

	linkage := run.Results[1]
	assert.Equal(t, "non_numeric_linkage", *linkage.RuleID)
	assert.Equal(t, "error", linkage.Level)
	require.Len(t, linkage.Locations, 1)
	assert.Equal(t, 23, *linkage.Locations[0].PhysicalLocation.Region.StartLine)

	assert.Equal(t, "note", run.Results[0].Level)
}

func TestMsgpackFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMsgpackFormatter(&buf).Format(createTestResult()))

	var raw map[string]any
	require.NoError(t, msgpack.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "testdata/site.lx", raw["source_path"])

	rows := raw["rows"].([]any)
	require.Len(t, rows, 2)
	first := rows[0].(map[string]any)
	assert.EqualValues(t, 101, first["site_id"])
	assert.Equal(t, "6,30B202", first["LP1_data"])
	assert.EqualValues(t, 202, first["LP1_slaved"])

	edges := raw["edges"].([]any)
	require.Len(t, edges, 1)
	assert.Equal(t, "LP1", edges[0].(map[string]any)["layer"])
}

func TestFlattenRow(t *testing.T) {
	result := createTestResult()

	flat := FlattenRow(result.Rows[0])
	assert.Equal(t, 101, flat["site_id"])
	assert.Equal(t, 5, flat["subsystem_id"])
	assert.Equal(t, "0,0F", flat["PP1_data"])
	assert.Equal(t, "0", flat["PP1_phaseStart"])
	assert.Equal(t, "F", flat["PP1_phase"])
	assert.Equal(t, -1, flat["PP1_slaved"])
	assert.Equal(t, "0", flat["LP2_offset1"])
	assert.Equal(t, 0, flat["LP2_slaved"])
	assert.Equal(t, -2, flat["LP3_slaved"])
	assert.Equal(t, "-1", flat["LP4_data"])
	assert.Len(t, flat, 2+8*6)

	flat = FlattenRow(result.Rows[1])
	assert.Equal(t, -1, flat["subsystem_id"])
	assert.Equal(t, "1", flat["PP1_phaseStart"])
	assert.Equal(t, 101, flat["PP1_slaved"])
	assert.Equal(t, "-1", flat["PP2_data"])
	assert.Equal(t, "-1", flat["LP1_data"])
	assert.Equal(t, -1, flat["LP1_slaved"])
}
