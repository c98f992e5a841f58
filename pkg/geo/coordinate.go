package geo

import (
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
)

type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`

	// ID is the external id of the row, or its row position when the input
	// has no id column.
	ID     string `json:"id"`
	Row    int    `json:"row"`
	Region string `json:"region,omitempty"`
}

func NewCoordinate(lon, lat float64) Coordinate {
	return Coordinate{
		Lon: lon,
		Lat: lat,
	}
}

// Valid reports whether lat/lon are finite and inside the WGS84 range.
func (c Coordinate) Valid() bool {
	return s2.LatLngFromDegrees(c.Lat, c.Lon).IsValid()
}

// String formats the coordinate the way OSRM expects it in a path: lon,lat.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

// JoinCoordinates returns lon,lat;lon,lat;...
func JoinCoordinates(coords []Coordinate) string {
	var sb strings.Builder
	sb.Grow(len(coords) * 24)
	for i, c := range coords {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(c.String())
	}
	return sb.String()
}

func IDs(coords []Coordinate) []string {
	ids := make([]string, len(coords))
	for i, c := range coords {
		ids[i] = c.ID
	}
	return ids
}
