package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatches(t *testing.T) {
	coords := make([]Coordinate, 700)
	for i := range coords {
		coords[i] = NewCoordinate(-70+float64(i)*0.001, -27)
	}

	testCases := []struct {
		name        string
		n           int
		size        int
		wantLens    []int
		wantOffsets []int
	}{
		{
			name:        "700 in chunks of 300",
			n:           700,
			size:        300,
			wantLens:    []int{300, 300, 100},
			wantOffsets: []int{0, 300, 600},
		},
		{
			name:        "exact multiple",
			n:           600,
			size:        300,
			wantLens:    []int{300, 300},
			wantOffsets: []int{0, 300},
		},
		{
			name:        "smaller than batch",
			n:           4,
			size:        300,
			wantLens:    []int{4},
			wantOffsets: []int{0},
		},
		{
			name: "empty",
			n:    0,
			size: 300,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			bs := Batches(coords[:tt.n], tt.size)
			require.Len(t, bs, len(tt.wantLens))
			for i, b := range bs {
				assert.Equal(t, tt.wantLens[i], b.Len())
				assert.Equal(t, tt.wantOffsets[i], b.Offset)
				assert.Equal(t, coords[b.Offset], b.Coords[0])
			}
		})
	}
}

func TestJoinCoordinates(t *testing.T) {
	coords := []Coordinate{NewCoordinate(-70.4, -27.36), NewCoordinate(-69.1234567, -26)}
	assert.Equal(t, "-70.4,-27.36;-69.1234567,-26", JoinCoordinates(coords))
}

func TestValid(t *testing.T) {
	testCases := []struct {
		name  string
		coord Coordinate
		want  bool
	}{
		{"copiapo", NewCoordinate(-70.33, -27.37), true},
		{"lat out of range", NewCoordinate(-70, -91), false},
		{"lon out of range", NewCoordinate(181, 10), false},
		{"nan", NewCoordinate(math.NaN(), 10), false},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coord.Valid())
		})
	}
}

func TestPolylineRoundTrip(t *testing.T) {
	coords := []Coordinate{
		NewCoordinate(-70.33012, -27.36679),
		NewCoordinate(-71.62963, -33.04720),
		NewCoordinate(-68.90123, -22.45678),
	}

	decoded, err := DecodePolyline(EncodePolyline(coords))
	require.NoError(t, err)
	require.Len(t, decoded, len(coords))
	for i := range coords {
		assert.InDelta(t, coords[i].Lon, decoded[i].Lon, 1e-5)
		assert.InDelta(t, coords[i].Lat, decoded[i].Lat, 1e-5)
	}
}
