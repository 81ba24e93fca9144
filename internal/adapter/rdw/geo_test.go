package rdw

import (
	"encoding/json"
	"testing"

	"github.com/couchcryptid/parking-tariff-etl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLng float64
		wantLat float64
		wantOK  bool
	}{
		{"point", `{"type":"Point","coordinates":[4.9,52.3]}`, 4.9, 52.3, true},
		{"polygon", `{"type":"Polygon","coordinates":[[[4.1,52.1],[4.2,52.2]]]}`, 4.1, 52.1, true},
		{"multipolygon", `{"type":"MultiPolygon","coordinates":[[[[5.5,51.5],[5.6,51.6]]]]}`, 5.5, 51.5, true},
		{"empty coordinates", `{"type":"Point","coordinates":[]}`, 0, 0, false},
		{"no coordinates", `{"type":"Point"}`, 0, 0, false},
		{"short pair", `{"coordinates":[4.9]}`, 0, 0, false},
		{"not json", `garbage`, 0, 0, false},
		{"absent", ``, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lng, lat, ok := firstCoordinate(json.RawMessage(tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.wantLng, lng, 1e-9)
			assert.InDelta(t, tt.wantLat, lat, 1e-9)
		})
	}
}

func TestLocate(t *testing.T) {
	regions, err := config.LoadRegions("")
	require.NoError(t, err)

	t.Run("center with jitter", func(t *testing.T) {
		// rune sum of "T12B" is 249
		geo := locate(Area{ManagerID: "363", AreaID: "T12B"}, regions)
		assert.InDelta(t, 52.3676-0.0004, geo.Lat, 1e-9)
		assert.InDelta(t, 4.9041-13*0.0006, geo.Lng, 1e-9)
	})

	t.Run("jitter is deterministic", func(t *testing.T) {
		a := locate(Area{ManagerID: "599", AreaID: "X7"}, regions)
		b := locate(Area{ManagerID: "599", AreaID: "X7"}, regions)
		assert.Equal(t, a, b)
	})

	t.Run("geometry far from center", func(t *testing.T) {
		area := Area{ManagerID: "363", AreaID: "A2", Geometry: json.RawMessage(`{"coordinates":[4.8,52.5]}`)}
		geo := locate(area, regions)
		assert.InDelta(t, 52.5, geo.Lat, 1e-9)
		assert.InDelta(t, 4.8, geo.Lng, 1e-9)
	})

	t.Run("unknown manager uses default center", func(t *testing.T) {
		geo := locate(Area{ManagerID: "999", AreaID: "Q"}, regions)
		assert.InDelta(t, 52.0907, geo.Lat, 1e-9)
		assert.InDelta(t, 5.1214, geo.Lng, 1e-9)
	})
}
