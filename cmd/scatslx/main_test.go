package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/reglet-dev/scatslx/internal/domain/entities"
)

// runCLI executes a fresh command tree with an isolated home directory.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeLX writes a minimal LX file: ten header lines, two sites and one
// subsystem. Site 202 has no subsystem field.
func writeLX(t *testing.T, dir string) string {
	t.Helper()
	lines := []string{
		"h0", "h1", "h2", "h3", "h4", "h5", "h6", "h7", "h8", "h9",
		"INT=101!S#=5!PP1=0,0F!PP2=5SL202^2!",
		"PP3=0,0F!PP4=0,0F!",
		"INT=202!PP1=0,0F!PP2=0,0F!",
		"PP3=0,0F!PP4=0,0F!",
		"SS=5!LP1=6,30B202!",
		"LP2=0!",
		"LP3=0!",
		"LP4=0!",
	}
	path := filepath.Join(dir, "site.lx")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func TestDecode_Table(t *testing.T) {
	out, _, err := runCLI(t, "decode", "5SL1073^2")
	require.NoError(t, err)
	assert.Contains(t, out, "linked_site     1073")
	assert.Contains(t, out, "tuple           (5, 5, 1, 2, 1073)")
	assert.Contains(t, out, "canonical       5SL1073^2")
}

func TestDecode_JSON(t *testing.T) {
	out, _, err := runCLI(t, "decode", "30,30B1073", "--kind", "lp", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Kind  string    `json:"kind"`
		Tuple [5]string `json:"tuple"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "LP", resp.Kind)
	assert.Equal(t, [5]string{"30", "30", "0", "B", "1073"}, resp.Tuple)
}

func TestDecode_Errors(t *testing.T) {
	_, _, err := runCLI(t, "decode", "0,0F", "--kind", "xx")
	assert.ErrorContains(t, err, "invalid plan kind")

	_, _, err = runCLI(t, "decode", "5SLabc^2", "--strict")
	assert.Error(t, err)

	out, _, err := runCLI(t, "decode", "5SLabc^2")
	require.NoError(t, err)
	assert.Contains(t, out, "linked_site     invalid")
}

func TestExtract_JSON(t *testing.T) {
	dir := t.TempDir()
	lx := writeLX(t, dir)

	out, _, err := runCLI(t, "extract", lx, "--format", "json", "--quiet")
	require.NoError(t, err)

	var result struct {
		Rows []entities.JoinedRecord `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Rows, 2)
	assert.EqualValues(t, 101, result.Rows[0].Site.SiteID)
	require.NotNil(t, result.Rows[0].Subsystem)
	assert.EqualValues(t, 202, result.Rows[0].LinkPlanLink(1).Sentinel())
	assert.Nil(t, result.Rows[1].Subsystem)
}

func TestExtract_FilterAndFailOnErrors(t *testing.T) {
	dir := t.TempDir()
	lx := writeLX(t, dir)

	out, _, err := runCLI(t, "extract", lx, "--format", "json", "--filter", "has_subsystem", "--quiet")
	require.NoError(t, err)
	var result struct {
		Rows []entities.JoinedRecord `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Rows, 1)
	assert.EqualValues(t, 101, result.Rows[0].Site.SiteID)

	_, _, err = runCLI(t, "extract", lx, "--fail-on-errors", "--quiet")
	assert.ErrorContains(t, err, "error entries")

	_, _, err = runCLI(t, "extract", lx, "--filter", "site_id +", "--quiet")
	assert.ErrorContains(t, err, "filter")
}

func TestExtract_OutputFileAndStores(t *testing.T) {
	dir := t.TempDir()
	lx := writeLX(t, dir)
	sitesPath := filepath.Join(dir, "sites.csv")
	require.NoError(t, os.WriteFile(sitesPath,
		[]byte("Equipment_ID,Longitude,Latitude\n101,151.2,-33.8\n202,151.3,-33.9\n"), 0o600))

	outPath := filepath.Join(dir, "site.msgpack")
	dbPath := filepath.Join(dir, "runs.db")
	metricsPath := filepath.Join(dir, "scatslx.prom")

	_, _, err := runCLI(t, "extract", lx,
		"--format", "msgpack", "-o", outPath,
		"--sites", sitesPath, "--db", dbPath, "--metrics-file", metricsPath, "--quiet")
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var export map[string]any
	require.NoError(t, msgpack.Unmarshal(data, &export))
	assert.Len(t, export["rows"], 2)
	assert.Len(t, export["edges"], 2, "LP1 101->202 and SL2 101->202")

	assert.FileExists(t, dbPath)
	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "scatslx_records_total")
}

func TestExtract_Strict(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.lx")
	require.NoError(t, os.WriteFile(path, []byte("INT=abc!S#=5!PP1=0,0F!PP2=0,0F!\nPP3=0,0F!PP4=0,0F!\n"), 0o600))

	_, _, err := runCLI(t, "extract", path, "--quiet")
	require.NoError(t, err)

	_, _, err = runCLI(t, "extract", path, "--strict", "--quiet")
	assert.Error(t, err)
}

func TestExtract_InvalidSettings(t *testing.T) {
	dir := t.TempDir()
	lx := writeLX(t, dir)

	_, _, err := runCLI(t, "extract", lx, "--format", "xml")
	assert.Error(t, err)

	_, _, err = runCLI(t, "extract", lx, "--search-limit", "0")
	assert.ErrorContains(t, err, "validation failed")

	_, _, err = runCLI(t, "extract", lx, "--verbose", "--quiet")
	assert.ErrorContains(t, err, "mutually exclusive")

	_, _, err = runCLI(t, "extract", filepath.Join(dir, "missing.lx"), "--quiet")
	assert.ErrorContains(t, err, "failed to read LX file")
}

func TestExtract_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	lx := writeLX(t, dir)
	cfg := filepath.Join(dir, "scatslx.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("version: 1.0.0\noutput:\n  format: yaml\n"), 0o600))

	out, _, err := runCLI(t, "extract", lx, "--config", cfg, "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "source_path: ")

	_, _, err = runCLI(t, "extract", lx, "--config", filepath.Join(dir, "none.yaml"))
	assert.ErrorContains(t, err, "configuration error")
}

func TestInit_NoInteractive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scatslx.toml")

	out, _, err := runCLI(t, "init", "--no-interactive", "--format", "toml", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Config written to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "search_limit = 20")

	_, _, err = runCLI(t, "init", "--no-interactive", "--format", "toml", "--path", path)
	assert.ErrorContains(t, err, "already exists")
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "scatslx version dev"))

	out, _, err = runCLI(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"go_version"`)
}
