package osrm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
)

// Failure kinds. Every error returned by Client carries exactly one of them as
// its code, see Kind.
var (
	ErrTimeout           = errors.New("osrm request timed out")
	ErrBadStatus         = errors.New("osrm responded with a non-200 status")
	ErrMalformedResponse = errors.New("osrm response is malformed")
	ErrConnectionFailure = errors.New("osrm connection failed")
)

// StatusError is the origin of every ErrBadStatus error.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// Kind returns the failure kind of err, or nil when err did not come from
// the client.
func Kind(err error) error {
	var e *util.Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return nil
}

// StatusCode returns the HTTP status carried by an ErrBadStatus error, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// KindName is used as a log field and in run reports.
func KindName(err error) string {
	switch Kind(err) {
	case ErrTimeout:
		return "timeout"
	case ErrBadStatus:
		return fmt.Sprintf("bad_status(%d)", StatusCode(err))
	case ErrMalformedResponse:
		return "malformed_response"
	case ErrConnectionFailure:
		return "connection_failure"
	default:
		return "unknown"
	}
}

// Retryable reports whether a point-to-point lookup should be attempted
// again. Oversized requests (400, 414) and malformed bodies are permanent.
func Retryable(err error) bool {
	switch Kind(err) {
	case ErrTimeout, ErrConnectionFailure:
		return true
	case ErrBadStatus:
		code := StatusCode(err)
		return code >= 500 || code == http.StatusTooManyRequests
	default:
		return false
	}
}

func transportError(err error, endpoint string) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return util.WrapErrorf(err, ErrTimeout, "%s request timed out", endpoint)
	}
	return util.WrapErrorf(err, ErrConnectionFailure, "%s request failed", endpoint)
}
