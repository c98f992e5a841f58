package usecases

import (
	"bytes"
	"errors"
	"testing"

	da "github.com/Arturo-Amberg/TrabajoTesis/pkg/datastructure"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/npz"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildArchive(t *testing.T, write func(w *npz.Writer)) *npz.Archive {
	t.Helper()
	var buf bytes.Buffer
	w, err := npz.NewWriter(&buf, npz.CompressionDeflate)
	require.NoError(t, err)
	write(w)
	require.NoError(t, w.Close())

	ar, err := npz.Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return ar
}

func regionArchive(t *testing.T) *npz.Archive {
	iii, err := da.NewDurationMatrixFromData(2, 2, []float32{0, 12.5, 13, 0})
	require.NoError(t, err)
	vi, err := da.NewDurationMatrixFromData(3, 3, []float32{
		0, 360000, 999999,
		4, 0, 5,
		6, 7, 0,
	})
	require.NoError(t, err)

	return buildArchive(t, func(w *npz.Writer) {
		require.NoError(t, w.WriteMatrix("III_matrix", iii))
		require.NoError(t, w.WriteStrings("III_ids", []string{"10", "14"}))
		require.NoError(t, w.WriteMatrix("VI_matrix", vi))
		require.NoError(t, w.WriteStrings("VI_ids", []string{"7", "8", "9"}))
	})
}

func TestMatrixServiceTravelTime(t *testing.T) {
	ms, err := NewMatrixService(zap.NewNop(), regionArchive(t), 360000, 999999)
	require.NoError(t, err)

	testCases := []struct {
		name    string
		region  string
		from    string
		to      string
		want    TravelTime
		wantErr error
	}{
		{
			name:   "ok",
			region: "III", from: "10", to: "14",
			want: TravelTime{Region: "III", From: "10", To: "14", Minutes: 12.5, Status: StatusOK},
		},
		{
			name:   "unreachable",
			region: "VI", from: "7", to: "8",
			want: TravelTime{Region: "VI", From: "7", To: "8", Minutes: 360000, Status: StatusUnreachable},
		},
		{
			name:   "failed",
			region: "VI", from: "7", to: "9",
			want: TravelTime{Region: "VI", From: "7", To: "9", Minutes: 999999, Status: StatusFailed},
		},
		{name: "unknown region", region: "XV", from: "1", to: "2", wantErr: util.ErrNotFound},
		{name: "unknown id", region: "III", from: "10", to: "99", wantErr: util.ErrNotFound},
		{name: "ambiguous region", region: "", from: "10", to: "14", wantErr: util.ErrBadParamInput},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ms.TravelTime(tt.region, tt.from, tt.to)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatrixServiceWholeSetWithoutIDs(t *testing.T) {
	m, err := da.NewDurationMatrixFromData(2, 2, []float32{0, 3, 4, 0})
	require.NoError(t, err)
	ar := buildArchive(t, func(w *npz.Writer) {
		require.NoError(t, w.WriteMatrix("matrix", m))
	})

	ms, err := NewMatrixService(zap.NewNop(), ar, 360000, 999999)
	require.NoError(t, err)

	got, err := ms.TravelTime("", "1", "0")
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.Minutes)

	assert.Equal(t, []MatrixInfo{{Region: "", Rows: 2, Cols: 2, HasIDs: false}}, ms.Matrices())
}

func TestMatrixServiceMatrices(t *testing.T) {
	ms, err := NewMatrixService(zap.NewNop(), regionArchive(t), 360000, 999999)
	require.NoError(t, err)

	assert.Equal(t, []MatrixInfo{
		{Region: "III", Rows: 2, Cols: 2, HasIDs: true},
		{Region: "VI", Rows: 3, Cols: 3, HasIDs: true},
	}, ms.Matrices())
}

func TestMatrixServiceRejectsBadArchive(t *testing.T) {
	m, err := da.NewDurationMatrixFromData(2, 2, []float32{0, 3, 4, 0})
	require.NoError(t, err)

	testCases := []struct {
		name  string
		write func(w *npz.Writer)
	}{
		{
			name: "no matrix",
			write: func(w *npz.Writer) {
				require.NoError(t, w.WriteStrings("ids", []string{"a"}))
			},
		},
		{
			name: "ids length mismatch",
			write: func(w *npz.Writer) {
				require.NoError(t, w.WriteMatrix("matrix", m))
				require.NoError(t, w.WriteStrings("ids", []string{"a", "b", "c"}))
			},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMatrixService(zap.NewNop(), buildArchive(t, tt.write), 360000, 999999)
			assert.ErrorIs(t, err, util.ErrBadParamInput)
		})
	}
}
