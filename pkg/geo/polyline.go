package geo

import (
	"github.com/twpayne/go-polyline"
)

// EncodePolyline encodes coords with precision 5, the format OSRM accepts as
// polyline(...) in place of a lon,lat list.
func EncodePolyline(coords []Coordinate) string {
	latlons := make([][]float64, len(coords))
	for i, c := range coords {
		latlons[i] = []float64{c.Lat, c.Lon}
	}
	return string(polyline.EncodeCoords(latlons))
}

// DecodePolyline is the inverse of EncodePolyline, up to the 1e-5 degree
// precision of the encoding.
func DecodePolyline(s string) ([]Coordinate, error) {
	latlons, _, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, err
	}
	coords := make([]Coordinate, len(latlons))
	for i, ll := range latlons {
		coords[i] = NewCoordinate(ll[1], ll[0])
	}
	return coords, nil
}
