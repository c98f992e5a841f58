package osrm

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	da "github.com/Arturo-Amberg/TrabajoTesis/pkg/datastructure"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/geo"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"go.uber.org/zap"
)

// TableRequest asks for the durations from every source to every
// destination. With no destinations the matrix is the symmetric
// sources x sources one.
type TableRequest struct {
	Sources      []geo.Coordinate
	Destinations []geo.Coordinate
}

func (r TableRequest) Shape() (int, int) {
	if len(r.Destinations) == 0 {
		return len(r.Sources), len(r.Sources)
	}
	return len(r.Sources), len(r.Destinations)
}

// TableURL serializes req for /table/v1. Rectangular requests send the
// sources followed by the destinations, with explicit index lists.
func (c *Client) TableURL(req TableRequest) string {
	coords := req.Sources
	if len(req.Destinations) > 0 {
		coords = make([]geo.Coordinate, 0, len(req.Sources)+len(req.Destinations))
		coords = append(coords, req.Sources...)
		coords = append(coords, req.Destinations...)
	}

	var sb strings.Builder
	sb.WriteString(c.baseURL)
	sb.WriteString("/table/v1/")
	sb.WriteString(c.profile)
	sb.WriteByte('/')
	sb.WriteString(c.coordinatePath(coords))
	sb.WriteByte('?')
	if len(req.Destinations) > 0 {
		n := len(req.Sources)
		sb.WriteString("sources=")
		writeIndexRange(&sb, 0, n)
		sb.WriteString("&destinations=")
		writeIndexRange(&sb, n, n+len(req.Destinations))
		sb.WriteByte('&')
	}
	sb.WriteString("annotations=duration")
	return sb.String()
}

func (c *Client) coordinatePath(coords []geo.Coordinate) string {
	if c.polyline {
		return "polyline(" + url.PathEscape(geo.EncodePolyline(coords)) + ")"
	}
	return geo.JoinCoordinates(coords)
}

func writeIndexRange(sb *strings.Builder, from, to int) {
	for i := from; i < to; i++ {
		if i > from {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.Itoa(i))
	}
}

// Table fetches the duration matrix for req in minutes. Unroutable pairs are
// set to the client's unreachable value. The returned error, if any, has one
// of the failure kinds as its code.
func (c *Client) Table(ctx context.Context, req TableRequest) (*da.DurationMatrix, error) {
	rows, cols := req.Shape()
	if rows == 0 || cols == 0 {
		return da.NewDurationMatrix(rows, cols), nil
	}

	u := c.TableURL(req)
	c.log.Debug("requesting osrm table", zap.Int("sources", rows), zap.Int("destinations", cols),
		zap.Int("url_length", len(u)))

	body, err := c.get(ctx, "table", u, c.tableTimeout)
	if err != nil {
		return nil, err
	}

	var resp TableResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, util.WrapErrorf(err, ErrMalformedResponse, "unable to decode table response")
	}
	return c.durationsToMinutes(resp.Durations, rows, cols)
}

func (c *Client) durationsToMinutes(durations [][]*float64, rows, cols int) (*da.DurationMatrix, error) {
	if durations == nil {
		return nil, util.WrapErrorf(nil, ErrMalformedResponse, "table response has no durations")
	}
	if len(durations) != rows {
		return nil, util.WrapErrorf(nil, ErrMalformedResponse, "table response has %d rows, want %d", len(durations), rows)
	}

	m := da.NewDurationMatrix(rows, cols)
	unreachable := float32(c.unreachableMinutes)
	for i, row := range durations {
		if len(row) != cols {
			return nil, util.WrapErrorf(nil, ErrMalformedResponse, "table response row %d has %d columns, want %d",
				i, len(row), cols)
		}
		for j, sec := range row {
			if sec == nil {
				m.Set(i, j, unreachable)
				continue
			}
			m.Set(i, j, float32(util.SecondsToMinutes(*sec)))
		}
	}
	return m, nil
}
