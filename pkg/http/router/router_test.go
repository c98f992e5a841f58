package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	http_server "github.com/Arturo-Amberg/TrabajoTesis/pkg/http/server"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/http/usecases"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMatrixService struct {
	panicOn string
}

func (f fakeMatrixService) TravelTime(region, from, to string) (usecases.TravelTime, error) {
	if from == f.panicOn {
		panic("boom")
	}
	if region == "XV" {
		return usecases.TravelTime{}, util.WrapErrorf(usecases.ErrRegionNotFound, util.ErrNotFound, "region %q not found", region)
	}
	return usecases.TravelTime{Region: "III", From: from, To: to, Minutes: 12.5, Status: usecases.StatusOK}, nil
}

func (f fakeMatrixService) Matrices() []usecases.MatrixInfo {
	return []usecases.MatrixInfo{{Region: "III", Rows: 2, Cols: 2, HasIDs: true}}
}

func newHandler(useRateLimit bool, burst int) http.Handler {
	config := http_server.Config{RateLimit: 0.001, Burst: burst}
	return NewAPI(zap.NewNop()).Handler(config, useRateLimit, fakeMatrixService{panicOn: "panic"})
}

func TestRoutes(t *testing.T) {
	h := newHandler(false, 0)

	testCases := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "travel time",
			target:     "/api/travelTime?from=10&to=14&region=III",
			wantStatus: http.StatusOK,
			wantBody: map[string]any{"data": map[string]any{
				"region": "III", "from": "10", "to": "14", "minutes": 12.5, "status": "ok",
			}},
		},
		{
			name:       "missing to",
			target:     "/api/travelTime?from=10",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown region",
			target:     "/api/travelTime?from=10&to=14&region=XV",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "matrices",
			target:     "/api/matrices",
			wantStatus: http.StatusOK,
			wantBody: map[string]any{"data": []any{
				map[string]any{"region": "III", "rows": 2.0, "cols": 2.0, "has_ids": true},
			}},
		},
		{
			name:       "panic is recovered",
			target:     "/api/travelTime?from=panic&to=14",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "unknown route",
			target:     "/api/route",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != nil {
				var got map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, tt.wantBody, got)
			}
		})
	}
}

func TestBadRequestHasErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(false, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/travelTime", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var got struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "BAD_REQUEST", got.Error.Code)
	assert.Contains(t, got.Error.Message, "validation error")
}

func TestHeartbeat(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(false, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ".", rec.Body.String())
}

func TestLimit(t *testing.T) {
	h := newHandler(true, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/matrices", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRealIP(t *testing.T) {
	var got string
	h := RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.1.2.3, 172.16.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "10.1.2.3", got)
}

func TestLimitZeroMeansUnlimited(t *testing.T) {
	h := NewAPI(zap.NewNop()).Handler(http_server.Config{RateLimit: 0, Burst: 0}, true, fakeMatrixService{})

	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/matrices", nil))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
}
