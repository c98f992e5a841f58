package osrm

// TableResponse is the body of /table/v1. A nil entry marks a pair OSRM could
// not route between.
type TableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message,omitempty"`
	Durations [][]*float64 `json:"durations"`
}

// RouteResponse is the part of the /route/v1 body read by the client.
type RouteResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message,omitempty"`
	Routes  []Route `json:"routes"`
}

type Route struct {
	Duration *float64 `json:"duration"`
	Distance float64  `json:"distance"`
}
