package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterPolicy(t *testing.T) {
	policy := NewFilterPolicy([]string{"VERGUNP", " bewonerp "})

	tests := []struct {
		name   string
		zone   ZoneSchedule
		reason string
	}{
		{"paid public zone", ZoneSchedule{UsageID: "BETAALDP", Price: 2.5}, ""},
		{"no usage type", ZoneSchedule{Price: 2.5}, ""},
		{"permit zone", ZoneSchedule{UsageID: "VERGUNP", Price: 2.5}, FilterRestrictedUsage},
		{"case insensitive", ZoneSchedule{UsageID: "BewonerP", Price: 2.5}, FilterRestrictedUsage},
		{"free zone", ZoneSchedule{UsageID: "BETAALDP"}, FilterZeroPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Check(tt.zone)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrZoneFiltered)
			var fe *FilteredError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.reason, fe.Reason)
		})
	}
}
