package rdw

import (
	"encoding/json"
	"math"

	"github.com/couchcryptid/parking-tariff-etl/internal/config"
	"github.com/couchcryptid/parking-tariff-etl/internal/domain"
)

// jitterRadius is the latitude distance from a city center within which a
// zone is considered to sit on the center and gets spread out.
const jitterRadius = 0.1

// locate places a zone on the map: the first coordinate of its geometry, or
// the manager's center. Zones close to a configured center are jittered by a
// hash of their id so pins do not stack.
func locate(area Area, regions *config.Regions) domain.Geo {
	center := regions.Center(area.ManagerID)
	geo := domain.Geo{Lat: center.Lat, Lng: center.Lng}
	if lng, lat, ok := firstCoordinate(area.Geometry); ok {
		geo = domain.Geo{Lat: lat, Lng: lng}
	}

	m, ok := regions.Manager(area.ManagerID)
	if !ok || m.Center == nil {
		return geo
	}
	if math.Abs(geo.Lat-m.Center.Lat) < jitterRadius {
		h := 0
		for _, r := range area.AreaID {
			h += int(r)
		}
		geo.Lat += float64(h%100-50) * 0.0004
		geo.Lng += float64((h*13)%100-50) * 0.0006
	}
	return geo
}

// firstCoordinate digs the first [lon, lat] pair out of a GeoJSON geometry of
// any nesting depth.
func firstCoordinate(raw json.RawMessage) (lng, lat float64, ok bool) {
	if len(raw) == 0 {
		return 0, 0, false
	}
	var g struct {
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(raw, &g); err != nil || len(g.Coordinates) == 0 {
		return 0, 0, false
	}

	c := g.Coordinates
	for {
		var nested []json.RawMessage
		if err := json.Unmarshal(c, &nested); err != nil || len(nested) == 0 {
			return 0, 0, false
		}
		var pair []float64
		if err := json.Unmarshal(c, &pair); err == nil {
			if len(pair) < 2 {
				return 0, 0, false
			}
			return pair[0], pair[1], true
		}
		c = nested[0]
	}
}
