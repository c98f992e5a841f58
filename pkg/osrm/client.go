package osrm

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"go.uber.org/zap"
)

const maxLoggedBody = 512

type Client struct {
	log        *zap.Logger
	httpClient *http.Client
	pacer      Pacer

	baseURL  string
	profile  string
	polyline bool

	tableTimeout time.Duration
	routeTimeout time.Duration
	routeRetries int
	retryDelay   time.Duration

	unreachableMinutes float64
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithPacer(p Pacer) Option {
	return func(c *Client) {
		c.pacer = p
	}
}

// NewClient builds a client for the OSRM instance described by cfg. Null
// durations are reported as unreachableMinutes.
func NewClient(cfg util.OSRMConfig, unreachableMinutes float64, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		log:                log,
		httpClient:         &http.Client{},
		pacer:              NewPacer(cfg.MinInterval),
		baseURL:            strings.TrimRight(cfg.BaseURL, "/"),
		profile:            cfg.Profile,
		polyline:           cfg.Polyline,
		tableTimeout:       cfg.TableTimeout,
		routeTimeout:       cfg.RouteTimeout,
		routeRetries:       cfg.RouteRetries,
		retryDelay:         cfg.RetryDelay,
		unreachableMinutes: unreachableMinutes,
	}
	if c.routeRetries < 1 {
		c.routeRetries = 1
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get issues one paced GET and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, endpoint, url string, timeout time.Duration) ([]byte, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, transportError(err, endpoint)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, util.WrapErrorf(err, ErrConnectionFailure, "unable to build %s request", endpoint)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("osrm connection failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, transportError(err, endpoint)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err, endpoint)
	}

	if resp.StatusCode != http.StatusOK {
		c.logBadStatus(endpoint, resp.StatusCode, body, len(url))
		return nil, util.WrapErrorf(&StatusError{Code: resp.StatusCode, Body: truncate(body)}, ErrBadStatus,
			"%s request rejected", endpoint)
	}
	return body, nil
}

func (c *Client) logBadStatus(endpoint string, code int, body []byte, urlLen int) {
	fields := []zap.Field{
		zap.String("endpoint", endpoint),
		zap.Int("status", code),
		zap.Int("url_length", urlLen),
	}
	switch code {
	case http.StatusBadRequest:
		c.log.Warn("osrm rejected the request, too many points? check osrm-routed --max-table-size",
			append(fields, zap.String("message", truncate(body)))...)
	case http.StatusRequestURITooLong:
		c.log.Warn("osrm rejected the request, URI too long for the coordinate list", fields...)
	default:
		c.log.Warn("osrm responded with an error", append(fields, zap.String("message", truncate(body)))...)
	}
}

func truncate(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "..."
	}
	return string(body)
}
