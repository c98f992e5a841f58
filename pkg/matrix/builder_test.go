package matrix

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/dataset"
	da "github.com/Arturo-Amberg/TrabajoTesis/pkg/datastructure"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/geo"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/npz"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/osrm"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/osrm/osrmtest"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	unreachable = 360000.0
	failure     = 999999.0
)

func newClient(baseURL string) *osrm.Client {
	return osrm.NewClient(util.OSRMConfig{
		BaseURL:      baseURL,
		Profile:      "driving",
		TableTimeout: 10 * time.Second,
		RouteTimeout: 5 * time.Second,
		RouteRetries: 3,
	}, unreachable, zap.NewNop())
}

func newBuilder(fetcher Fetcher, batchSize, workers int) *Builder {
	return NewBuilder(fetcher, util.MatrixConfig{
		BatchSize:          batchSize,
		Workers:            workers,
		UnreachableMinutes: unreachable,
		FailureMinutes:     failure,
		MinRegionSize:      2,
	}, zap.NewNop())
}

func mineSites(n int) []geo.Coordinate {
	coords := make([]geo.Coordinate, n)
	for i := range coords {
		coords[i] = geo.NewCoordinate(-70+float64(i)*0.001, -27+float64(i%7)*0.01)
	}
	return coords
}

func tenMinutesPerStep(from, to geo.Coordinate) *float64 {
	d := math.Abs(from.Lon-to.Lon) * 600
	return &d
}

func TestBuildChunkedFourPoints(t *testing.T) {
	srv := osrmtest.NewServer(tenMinutesPerStep)
	defer srv.Close()

	coords := make([]geo.Coordinate, 4)
	for i := range coords {
		coords[i] = geo.NewCoordinate(float64(i), 0)
	}

	m, report, err := newBuilder(newClient(srv.URL), 300, 1).BuildChunked(context.Background(), coords, coords)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Requests)
	assert.Empty(t, report.Failures)

	want := [][]float32{
		{0, 10, 20, 30},
		{10, 0, 10, 20},
		{20, 10, 0, 10},
		{30, 20, 10, 0},
	}
	for i := range want {
		assert.Equal(t, want[i], m.Row(i))
	}
}

func TestBuildChunkedMatchesSingleRequest(t *testing.T) {
	srv := osrmtest.NewServer(osrmtest.Manhattan)
	defer srv.Close()

	coords := mineSites(700)
	client := newClient(srv.URL)

	whole, report, err := newBuilder(client, 700, 1).BuildChunked(context.Background(), coords, coords)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Requests)

	testCases := []struct {
		name    string
		workers int
	}{
		{name: "sequential", workers: 1},
		{name: "four workers", workers: 4},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			chunked, report, err := newBuilder(client, 300, tt.workers).BuildChunked(context.Background(), coords, coords)
			require.NoError(t, err)
			assert.Equal(t, 9, report.Requests)
			assert.Empty(t, report.Failures)

			rows, cols := chunked.Shape()
			assert.Equal(t, 700, rows)
			assert.Equal(t, 700, cols)
			assert.True(t, whole.Equal(chunked))
		})
	}
}

func TestBuildChunkedRectangular(t *testing.T) {
	srv := osrmtest.NewServer(osrmtest.Manhattan)
	defer srv.Close()

	sites := mineSites(25)
	ports := []geo.Coordinate{geo.NewCoordinate(-70.4, -23.65), geo.NewCoordinate(-71.6, -33.04)}

	m, report, err := newBuilder(newClient(srv.URL), 10, 1).BuildChunked(context.Background(), sites, ports)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Requests)

	rows, cols := m.Shape()
	require.Equal(t, 25, rows)
	require.Equal(t, 2, cols)
	for i, s := range sites {
		for j, p := range ports {
			assert.InDelta(t, *osrmtest.Manhattan(s, p)/60, float64(m.At(i, j)), 1e-2)
		}
	}
}

func TestBuildChunkedContinuesAfterURITooLong(t *testing.T) {
	// with one worker chunk (1,1) of the 3x3 grid is the fifth request.
	srv := osrmtest.NewServer(osrmtest.Manhattan, osrmtest.WithStatus(func(req osrmtest.Request) int {
		if req.Seq == 4 {
			return http.StatusRequestURITooLong
		}
		return 0
	}))
	defer srv.Close()

	ref := osrmtest.NewServer(osrmtest.Manhattan)
	defer ref.Close()

	coords := mineSites(700)
	m, report, err := newBuilder(newClient(srv.URL), 300, 1).BuildChunked(context.Background(), coords, coords)
	require.NoError(t, err)
	want, _, err := newBuilder(newClient(ref.URL), 300, 1).BuildChunked(context.Background(), coords, coords)
	require.NoError(t, err)

	assert.Equal(t, 9, report.Requests)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "bad_status(414)", report.Failures[0].Kind)
	assert.Equal(t, 300, report.Failures[0].RowOffset)
	assert.Equal(t, 300, report.Failures[0].ColOffset)
	assert.Equal(t, 300*300, report.FailedCells())
	assert.Equal(t, 300*300, m.Count(failure))

	for i := 0; i < 700; i++ {
		for j := 0; j < 700; j++ {
			inFailed := i >= 300 && i < 600 && j >= 300 && j < 600
			if inFailed {
				assert.Equal(t, float32(failure), m.At(i, j))
			} else if m.At(i, j) != want.At(i, j) {
				t.Fatalf("cell (%d,%d) = %v, want %v", i, j, m.At(i, j), want.At(i, j))
			}
		}
	}
}

func TestBuildChunkedIsReproducible(t *testing.T) {
	srv := osrmtest.NewServer(osrmtest.Manhattan)
	defer srv.Close()

	coords := mineSites(50)
	for i := range coords {
		coords[i].ID = string(rune('A'+i%26)) + "-" + string(rune('0'+i%10))
	}

	run := func() []byte {
		m, _, err := newBuilder(newClient(srv.URL), 20, 1).BuildChunked(context.Background(), coords, coords)
		require.NoError(t, err)

		var buf bytes.Buffer
		w, err := npz.NewWriter(&buf, npz.CompressionDeflate)
		require.NoError(t, err)
		require.NoError(t, WriteFull(w, m, geo.IDs(coords)))
		require.NoError(t, w.Close())
		return buf.Bytes()
	}

	first := run()
	assert.Equal(t, first, run())

	ar, err := npz.Read(bytes.NewReader(first), int64(len(first)))
	require.NoError(t, err)
	a, ok := ar.Get(KeyMatrix)
	require.True(t, ok)
	assert.Equal(t, []int{50, 50}, a.Shape)
	ids, ok := ar.Get(KeyIDs)
	require.True(t, ok)
	got, err := ids.Strings()
	require.NoError(t, err)
	assert.Equal(t, geo.IDs(coords), got)
}

func TestBuildChunkedCancelled(t *testing.T) {
	srv := osrmtest.NewServer(osrmtest.Manhattan)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, _, err := newBuilder(newClient(srv.URL), 10, 1).BuildChunked(ctx, mineSites(30), mineSites(30))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, m)
	assert.Empty(t, srv.Requests())
}

func TestBuildRegions(t *testing.T) {
	vi := []geo.Coordinate{geo.NewCoordinate(-70.35, -34.08), geo.NewCoordinate(-70.9, -34.5)}
	srv := osrmtest.NewServer(osrmtest.Manhattan, osrmtest.WithStatus(func(req osrmtest.Request) int {
		if len(req.Coords) > 0 && req.Coords[0].Lon == vi[0].Lon {
			return http.StatusRequestURITooLong
		}
		return 0
	}))
	defer srv.Close()

	iii := mineSites(3)
	for i := range iii {
		iii[i].ID = []string{"10", "14", "15"}[i]
	}
	regions := []dataset.Region{
		{Name: "II", Coords: []geo.Coordinate{geo.NewCoordinate(-69.07, -24.27)}},
		{Name: "III", Coords: iii},
		{Name: "VI", Coords: vi},
	}

	out, report, err := newBuilder(newClient(srv.URL), 300, 1).BuildRegions(context.Background(), regions)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "III", out[0].Name)
	assert.Equal(t, "III_matrix", out[0].MatrixKey())
	assert.Equal(t, "III_ids", out[0].IDsKey())
	assert.Equal(t, []string{"10", "14", "15"}, out[0].IDs)
	rows, cols := out[0].Matrix.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)

	assert.Equal(t, []string{"II"}, report.Skipped)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "VI", report.Failures[0].Scope)
	assert.Equal(t, 4, report.FailedCells())
	assert.Equal(t, 2, report.Requests)

	var buf bytes.Buffer
	w, err := npz.NewWriter(&buf, npz.CompressionBzip2)
	require.NoError(t, err)
	require.NoError(t, WriteRegions(w, out))
	require.NoError(t, w.Close())

	ar, err := npz.Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, []string{"III_ids", "III_matrix"}, ar.Names())
}

func TestBuildPortTimes(t *testing.T) {
	ports := []geo.Coordinate{geo.NewCoordinate(-70.4, -23.65), geo.NewCoordinate(-71.6, -33.04)}
	ports[0].ID = "Antofagasta"
	ports[1].ID = "Valparaiso"
	sites := mineSites(4)

	// the route from site 2 to Valparaiso always times out on the server side.
	srv := osrmtest.NewServer(osrmtest.Manhattan, osrmtest.WithStatus(func(req osrmtest.Request) int {
		if req.Service == "route" && req.Coords[0].Lon == sites[2].Lon && req.Coords[1].Lon == ports[1].Lon {
			return http.StatusGatewayTimeout
		}
		return 0
	}))
	defer srv.Close()

	b := newBuilder(newClient(srv.URL), 300, 1)

	byRoute, report, err := b.BuildPortTimes(context.Background(), sites, ports, PortMethodRoute)
	require.NoError(t, err)
	require.Len(t, byRoute, 2)
	assert.Equal(t, failure, byRoute[1][2])
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "Tiempo_Prt_Valparaiso", report.Failures[0].Scope)
	// the failing pair was tried three times.
	assert.Len(t, srv.Requests(), 10)

	byTable, _, err := b.BuildPortTimes(context.Background(), sites, ports, PortMethodTable)
	require.NoError(t, err)
	for p := range ports {
		for i, s := range sites {
			want := *osrmtest.Manhattan(s, ports[p]) / 60
			assert.InDelta(t, want, byTable[p][i], 1e-2)
			if !(p == 1 && i == 2) {
				assert.InDelta(t, want, byRoute[p][i], 1e-9)
			}
		}
	}

	_, _, err = b.BuildPortTimes(context.Background(), sites, ports, "walk")
	assert.Error(t, err)
}

type fixedFetcher struct {
	m *da.DurationMatrix
}

func (f fixedFetcher) Table(ctx context.Context, req osrm.TableRequest) (*da.DurationMatrix, error) {
	return f.m, nil
}

func (f fixedFetcher) Route(ctx context.Context, from, to geo.Coordinate) (float64, error) {
	return 0, nil
}

func TestBuildChunkedRejectsWrongShape(t *testing.T) {
	testCases := []struct {
		name  string
		block *da.DurationMatrix
	}{
		{name: "undersized block", block: da.NewDurationMatrix(2, 2)},
		{name: "oversized block", block: da.NewDurationMatrix(4, 3)},
		{name: "no block", block: nil},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(fixedFetcher{m: tt.block}, 3, 1)

			m, report, err := b.BuildChunked(context.Background(), mineSites(3), mineSites(3))
			require.NoError(t, err)
			require.Len(t, report.Failures, 1)
			assert.Equal(t, "malformed_response", report.Failures[0].Kind)
			assert.Equal(t, 9, report.FailedCells())
			assert.Equal(t, 9, m.Count(failure))
			assert.Equal(t, 0, m.Count(0))
		})
	}
}
