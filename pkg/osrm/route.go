package osrm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/geo"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"go.uber.org/zap"
)

func (c *Client) RouteURL(from, to geo.Coordinate) string {
	return c.baseURL + "/route/v1/" + c.profile + "/" +
		c.coordinatePath([]geo.Coordinate{from, to}) + "?overview=false"
}

// Route returns the driving time in minutes between two points. Transient
// failures are retried up to the configured count with a fixed delay.
func (c *Client) Route(ctx context.Context, from, to geo.Coordinate) (float64, error) {
	var err error
	for attempt := 1; attempt <= c.routeRetries; attempt++ {
		var minutes float64
		minutes, err = c.route(ctx, from, to)
		if err == nil {
			return minutes, nil
		}
		if ctx.Err() != nil || !Retryable(err) || attempt == c.routeRetries {
			break
		}
		c.log.Debug("retrying osrm route", zap.Int("attempt", attempt), zap.String("kind", KindName(err)))
		if err := sleep(ctx, c.retryDelay); err != nil {
			return 0, transportError(err, "route")
		}
	}
	return 0, err
}

func (c *Client) route(ctx context.Context, from, to geo.Coordinate) (float64, error) {
	body, err := c.get(ctx, "route", c.RouteURL(from, to), c.routeTimeout)
	if err != nil {
		return 0, err
	}

	var resp RouteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, util.WrapErrorf(err, ErrMalformedResponse, "unable to decode route response")
	}
	if len(resp.Routes) == 0 || resp.Routes[0].Duration == nil {
		return 0, util.WrapErrorf(nil, ErrMalformedResponse, "route response has no duration (code %q)", resp.Code)
	}
	return util.SecondsToMinutes(*resp.Routes[0].Duration), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
