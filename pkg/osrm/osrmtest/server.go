// Package osrmtest provides an in-process OSRM stand-in for tests.
package osrmtest

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/geo"
)

// DurationFunc returns the travel time in seconds from one coordinate to
// another, or nil when the pair is unroutable.
type DurationFunc func(from, to geo.Coordinate) *float64

// StatusFunc lets a test reject a request. Returning 0 serves it normally.
type StatusFunc func(req Request) int

// Request is a decoded table or route call.
type Request struct {
	Service      string
	Coords       []geo.Coordinate
	Sources      []int
	Destinations []int
	URLLength    int
	Seq          int
}

type Server struct {
	*httptest.Server

	durations DurationFunc
	status    StatusFunc

	mu       sync.Mutex
	requests []Request
}

type Option func(*Server)

func WithStatus(fn StatusFunc) Option {
	return func(s *Server) {
		s.status = fn
	}
}

func NewServer(durations DurationFunc, opts ...Option) *Server {
	s := &Server{durations: durations}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Requests returns the calls served so far, rejected ones included.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Manhattan is a deterministic duration function: 1 degree of |dlon|+|dlat|
// is 3600 seconds.
func Manhattan(from, to geo.Coordinate) *float64 {
	d := (math.Abs(from.Lon-to.Lon) + math.Abs(from.Lat-to.Lat)) * 3600
	return &d
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "InvalidUrl", "message": err.Error()})
		return
	}

	s.mu.Lock()
	req.Seq = len(s.requests)
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.status != nil {
		if code := s.status(req); code != 0 {
			writeJSON(w, code, map[string]string{"code": "Rejected", "message": http.StatusText(code)})
			return
		}
	}

	switch req.Service {
	case "table":
		writeJSON(w, http.StatusOK, map[string]any{"code": "Ok", "durations": s.table(req)})
	case "route":
		d := s.durations(req.Coords[0], req.Coords[len(req.Coords)-1])
		if d == nil {
			writeJSON(w, http.StatusOK, map[string]any{"code": "NoRoute", "routes": []any{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"code":   "Ok",
			"routes": []map[string]float64{{"duration": *d, "distance": 0}},
		})
	}
}

func (s *Server) table(req Request) [][]*float64 {
	sources, destinations := req.Sources, req.Destinations
	if sources == nil {
		sources = allIndices(len(req.Coords))
	}
	if destinations == nil {
		destinations = allIndices(len(req.Coords))
	}

	durations := make([][]*float64, len(sources))
	for i, si := range sources {
		durations[i] = make([]*float64, len(destinations))
		for j, dj := range destinations {
			durations[i][j] = s.durations(req.Coords[si], req.Coords[dj])
		}
	}
	return durations
}

// parseRequest reads /{service}/v1/{profile}/{coordinates}?query. The query
// is split by hand because net/url rejects ';' inside values.
func parseRequest(r *http.Request) (Request, error) {
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 4)
	if len(parts) != 4 || (parts[0] != "table" && parts[0] != "route") {
		return Request{}, fmt.Errorf("unsupported path %q", r.URL.Path)
	}

	req := Request{Service: parts[0], URLLength: len(r.URL.String())}
	coords, err := parseCoordinates(parts[3])
	if err != nil {
		return Request{}, err
	}
	req.Coords = coords

	for _, kv := range strings.Split(r.URL.RawQuery, "&") {
		key, val, _ := strings.Cut(kv, "=")
		switch key {
		case "sources":
			req.Sources, err = parseIndices(val, len(coords))
		case "destinations":
			req.Destinations, err = parseIndices(val, len(coords))
		}
		if err != nil {
			return Request{}, err
		}
	}
	return req, nil
}

func parseCoordinates(s string) ([]geo.Coordinate, error) {
	if strings.HasPrefix(s, "polyline(") && strings.HasSuffix(s, ")") {
		return geo.DecodePolyline(strings.TrimSuffix(strings.TrimPrefix(s, "polyline("), ")"))
	}

	pairs := strings.Split(s, ";")
	coords := make([]geo.Coordinate, len(pairs))
	for i, p := range pairs {
		lonStr, latStr, ok := strings.Cut(p, ",")
		if !ok {
			return nil, fmt.Errorf("invalid coordinate %q", p)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return nil, err
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return nil, err
		}
		coords[i] = geo.NewCoordinate(lon, lat)
	}
	return coords, nil
}

func parseIndices(s string, n int) ([]int, error) {
	fields := strings.Split(s, ";")
	idx := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		if v < 0 || v >= n {
			return nil, fmt.Errorf("index %d out of range", v)
		}
		idx[i] = v
	}
	return idx, nil
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
