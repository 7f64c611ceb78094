// Package config loads scatslx settings from viper (flags, environment and
// config file), applies defaults and validates the result.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/reglet-dev/scatslx/internal/application/dto"
	apperrors "github.com/reglet-dev/scatslx/internal/application/errors"
	"github.com/reglet-dev/scatslx/internal/domain/services"
	"github.com/reglet-dev/scatslx/internal/infrastructure/lxfile"
	"github.com/reglet-dev/scatslx/internal/infrastructure/sites"
)

// CurrentVersion is the settings schema version written by init.
const CurrentVersion = "1.0.0"

// EnvPrefix prefixes environment overrides, e.g. SCATSLX_SEARCH_LIMIT.
const EnvPrefix = "SCATSLX"

// Settings is the full configuration of an extraction.
type Settings struct {
	Version          string         `mapstructure:"version" json:"version" yaml:"version" toml:"version"`
	Tags             TagSettings    `mapstructure:"tags" json:"tags" yaml:"tags" toml:"tags"`
	Input            InputSettings  `mapstructure:"input" json:"input" yaml:"input" toml:"input"`
	Sites            SitesSettings  `mapstructure:"sites" json:"sites" yaml:"sites" toml:"sites"`
	Output           OutputSettings `mapstructure:"output" json:"output" yaml:"output" toml:"output"`
	SearchLimit      int            `mapstructure:"search_limit" json:"search_limit" yaml:"search_limit" toml:"search_limit"`
	SkipInitialLines int            `mapstructure:"skip_initial_lines" json:"skip_initial_lines" yaml:"skip_initial_lines" toml:"skip_initial_lines"`
	Strict           bool           `mapstructure:"strict" json:"strict" yaml:"strict" toml:"strict"`
}

// TagSettings are the LX field markers.
type TagSettings struct {
	Site          string `mapstructure:"site" json:"site" yaml:"site" toml:"site"`
	Subsystem     string `mapstructure:"subsystem" json:"subsystem" yaml:"subsystem" toml:"subsystem"`
	PhasePlan     string `mapstructure:"phase_plan" json:"phase_plan" yaml:"phase_plan" toml:"phase_plan"`
	SubsystemData string `mapstructure:"subsystem_data" json:"subsystem_data" yaml:"subsystem_data" toml:"subsystem_data"`
	LinkPlan      string `mapstructure:"link_plan" json:"link_plan" yaml:"link_plan" toml:"link_plan"`
}

// InputSettings describe how the LX file is read.
type InputSettings struct {
	Encoding string `mapstructure:"encoding" json:"encoding" yaml:"encoding" toml:"encoding"`
}

// SitesSettings locate the site-location table.
type SitesSettings struct {
	Path     string `mapstructure:"path" json:"path" yaml:"path" toml:"path"`
	IDColumn string `mapstructure:"id_column" json:"id_column" yaml:"id_column" toml:"id_column"`
	XColumn  string `mapstructure:"x_column" json:"x_column" yaml:"x_column" toml:"x_column"`
	YColumn  string `mapstructure:"y_column" json:"y_column" yaml:"y_column" toml:"y_column"`
}

// OutputSettings select where results go.
type OutputSettings struct {
	Format      string `mapstructure:"format" json:"format" yaml:"format" toml:"format"`
	Path        string `mapstructure:"path" json:"path" yaml:"path" toml:"path"`
	DB          string `mapstructure:"db" json:"db" yaml:"db" toml:"db"`
	MetricsFile string `mapstructure:"metrics_file" json:"metrics_file" yaml:"metrics_file" toml:"metrics_file"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	opts := services.DefaultExtractionOptions()
	return Settings{
		Version: CurrentVersion,
		Tags: TagSettings{
			Site:          opts.Tags.Site,
			Subsystem:     opts.Tags.Subsystem,
			PhasePlan:     opts.Tags.PhasePlan,
			SubsystemData: opts.Tags.SubsystemData,
			LinkPlan:      opts.Tags.LinkPlan,
		},
		Input: InputSettings{Encoding: lxfile.EncodingUTF8},
		Sites: SitesSettings{
			IDColumn: sites.DefaultIDColumn,
			XColumn:  sites.DefaultXColumn,
			YColumn:  sites.DefaultYColumn,
		},
		Output:           OutputSettings{Format: "table"},
		SearchLimit:      opts.SearchLimit,
		SkipInitialLines: opts.SkipInitialLines,
	}
}

// SetDefaults registers Defaults on v so unset keys resolve.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("version", d.Version)
	v.SetDefault("strict", d.Strict)
	v.SetDefault("search_limit", d.SearchLimit)
	v.SetDefault("skip_initial_lines", d.SkipInitialLines)
	v.SetDefault("tags.site", d.Tags.Site)
	v.SetDefault("tags.subsystem", d.Tags.Subsystem)
	v.SetDefault("tags.phase_plan", d.Tags.PhasePlan)
	v.SetDefault("tags.subsystem_data", d.Tags.SubsystemData)
	v.SetDefault("tags.link_plan", d.Tags.LinkPlan)
	v.SetDefault("input.encoding", d.Input.Encoding)
	v.SetDefault("sites.path", d.Sites.Path)
	v.SetDefault("sites.id_column", d.Sites.IDColumn)
	v.SetDefault("sites.x_column", d.Sites.XColumn)
	v.SetDefault("sites.y_column", d.Sites.YColumn)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.db", d.Output.DB)
	v.SetDefault("output.metrics_file", d.Output.MetricsFile)
}

// BindEnv makes every key overridable from SCATSLX_ environment
// variables, with dots as underscores (tags.site is SCATSLX_TAGS_SITE).
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load resolves settings from v and validates them.
func Load(v *viper.Viper) (*Settings, error) {
	SetDefaults(v)

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, apperrors.NewConfigurationError("settings", "failed to decode settings", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the schema version and the settings document.
func (s *Settings) Validate() error {
	if err := CheckVersion(s.Version); err != nil {
		return err
	}
	return ValidateSettings(s)
}

// ExtractionOptions converts settings to the domain options.
func (s *Settings) ExtractionOptions() services.ExtractionOptions {
	return services.ExtractionOptions{
		Tags: services.Tags{
			Site:          s.Tags.Site,
			Subsystem:     s.Tags.Subsystem,
			PhasePlan:     s.Tags.PhasePlan,
			SubsystemData: s.Tags.SubsystemData,
			LinkPlan:      s.Tags.LinkPlan,
		},
		SearchLimit:      s.SearchLimit,
		SkipInitialLines: s.SkipInitialLines,
		Strict:           s.Strict,
	}
}

// LocationOptions converts the sites section to a loader request.
func (s *Settings) LocationOptions() dto.LocationOptions {
	return dto.LocationOptions{
		Path:     s.Sites.Path,
		IDColumn: s.Sites.IDColumn,
		XColumn:  s.Sites.XColumn,
		YColumn:  s.Sites.YColumn,
	}
}

// String is a short description for debug logs.
func (s *Settings) String() string {
	return fmt.Sprintf("version=%s strict=%t search_limit=%d skip_initial_lines=%d encoding=%s",
		s.Version, s.Strict, s.SearchLimit, s.SkipInitialLines, s.Input.Encoding)
}
