package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegions_Embedded(t *testing.T) {
	r, err := LoadRegions("")
	require.NoError(t, err)

	assert.Equal(t, []string{"363", "599", "518", "344", "268", "307"}, r.ManagerIDs())
	assert.Equal(t, "Amsterdam", r.City("363"))
	assert.Equal(t, "Unknown", r.City("999"))
	assert.Equal(t, Coordinate{Lat: 52.3676, Lng: 4.9041}, r.Center("363"))
	assert.Equal(t, r.DefaultCenter, r.Center("999"))
	assert.Equal(t, "12100", r.Aliases["363_T12B"])
	assert.Contains(t, r.ExcludedUsageTypes, "VERGUNP")
	assert.Len(t, r.ExcludedUsageTypes, 16)
}

func TestLoadRegions_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_center: {lat: 52.0, lng: 5.0}
managers:
  - id: "1"
    city: Testdorp
`), 0o600))

	r, err := LoadRegions(path)
	require.NoError(t, err)

	m, ok := r.Manager("1")
	require.True(t, ok)
	assert.Nil(t, m.Center)
	assert.Equal(t, Coordinate{Lat: 52.0, Lng: 5.0}, r.Center("1"))
	assert.NotNil(t, r.Aliases)
}

func TestParseRegions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"not yaml", "managers: [", "parse regions"},
		{"no managers", "aliases: {}", "at least one manager"},
		{"missing id", "managers:\n  - city: X\n", "manager id is required"},
		{"duplicate", "managers:\n  - id: \"1\"\n  - id: \"1\"\n", "duplicate manager"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRegions([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRegions_MissingFile(t *testing.T) {
	_, err := LoadRegions(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
