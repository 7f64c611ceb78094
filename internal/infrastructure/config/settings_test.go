package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/reglet-dev/scatslx/internal/application/errors"
	"github.com/reglet-dev/scatslx/internal/domain/services"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, s.Version)
	assert.Equal(t, 20, s.SearchLimit)
	assert.Equal(t, 10, s.SkipInitialLines)
	assert.Equal(t, "table", s.Output.Format)
	assert.Equal(t, services.DefaultExtractionOptions(), s.ExtractionOptions())
	assert.Equal(t, "Equipment_ID", s.LocationOptions().IDColumn)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scatslx.yaml")
	content := `version: 1.2.0
strict: true
search_limit: 30
tags:
  site: "SITE="
sites:
  path: sites.csv
output:
  format: sarif
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	s, err := Load(v)
	require.NoError(t, err)
	assert.True(t, s.Strict)
	assert.Equal(t, 30, s.SearchLimit)
	assert.Equal(t, "SITE=", s.Tags.Site)
	assert.Equal(t, "S#=", s.Tags.Subsystem, "unset nested keys keep defaults")
	assert.Equal(t, "sites.csv", s.LocationOptions().Path)
	assert.Equal(t, "sarif", s.Output.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SCATSLX_SEARCH_LIMIT", "7")
	t.Setenv("SCATSLX_TAGS_LINK_PLAN", "LK")

	v := viper.New()
	BindEnv(v)

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 7, s.SearchLimit)
	assert.Equal(t, "LK", s.Tags.LinkPlan)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		field string
	}{
		{"zero search limit", "search_limit", 0, "settings"},
		{"negative skip", "skip_initial_lines", -1, "settings"},
		{"empty tag", "tags.subsystem", "", "settings"},
		{"unknown format", "output.format", "xml", "settings"},
		{"unknown encoding", "input.encoding", "ebcdic", "settings"},
		{"future version", "version", "2.0.0", "version"},
		{"bad version", "version", "one", "version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			var validationErr *apperrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestValidateSettings_Details(t *testing.T) {
	s := Defaults()
	s.SearchLimit = 0
	s.Tags.Site = "IN!T"

	err := ValidateSettings(&s)
	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	joined := strings.Join(validationErr.Details, "\n")
	assert.Contains(t, joined, "/search_limit")
	assert.Contains(t, joined, "/tags/site")
}

func TestCheckVersion(t *testing.T) {
	assert.NoError(t, CheckVersion("1.0.0"))
	assert.NoError(t, CheckVersion("1.9.3"))
	assert.Error(t, CheckVersion("0.9.0"))
	assert.Error(t, CheckVersion("2.0.0"))
	assert.Error(t, CheckVersion(""))
}

func TestWriteTemplate_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", ".scatslx.yaml")
	require.NoError(t, WriteTemplate(path, TemplateYAML, Defaults()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Settings
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, Defaults(), decoded)

	err = WriteTemplate(path, TemplateYAML, Defaults())
	assert.ErrorIs(t, err, ErrConfigExists)
}

func TestWriteTemplate_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scatslx.toml")
	s := Defaults()
	s.Strict = true
	require.NoError(t, WriteTemplate(path, TemplateTOML, s))

	var decoded Settings
	_, err := toml.DecodeFile(path, &decoded)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	loaded, err := Load(v)
	require.NoError(t, err)
	assert.True(t, loaded.Strict)
}

func TestWriteTemplate_RejectsInvalid(t *testing.T) {
	s := Defaults()
	s.SearchLimit = -5
	err := WriteTemplate(filepath.Join(t.TempDir(), "x.yaml"), TemplateYAML, s)
	assert.Error(t, err)

	_, err = RenderTemplate(Defaults(), "ini")
	assert.ErrorContains(t, err, "unsupported template format")
}
