package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

func TestRecordFilter(t *testing.T) {
	slaved := entities.SiteRecord{SiteID: 2, SubsystemID: subsystemPtr(5)}
	slaved.Plans[0] = linkedSlot("PP1", values.LinkedTo(1))

	rows := []entities.JoinedRecord{
		{Site: entities.SiteRecord{SiteID: 1}},
		{Site: slaved},
		{Site: entities.SiteRecord{SiteID: 3, SubsystemID: subsystemPtr(6)}},
	}

	tests := []struct {
		expression string
		want       []values.SiteID
	}{
		{"site_id > 1", []values.SiteID{2, 3}},
		{"has_subsystem", []values.SiteID{2, 3}},
		{"!has_subsystem", []values.SiteID{1}},
		{"subsystem_id == -1", []values.SiteID{1}},
		{"pp_linked", []values.SiteID{2}},
		{"lp_linked", nil},
		{"subsystem_id in [5, 6] && !pp_linked", []values.SiteID{3}},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			f, err := CompileRecordFilter(tt.expression)
			require.NoError(t, err)

			kept, err := f.Apply(rows)
			require.NoError(t, err)

			var got []values.SiteID
			for _, row := range kept {
				got = append(got, row.Site.SiteID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileRecordFilter_Invalid(t *testing.T) {
	for _, e := range []string{"site_id +", "site_id", "unknown_var == 1"} {
		_, err := CompileRecordFilter(e)
		assert.Error(t, err, e)
	}
}
