package matrix

import (
	"context"
	"fmt"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/geo"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/osrm"
	"go.uber.org/zap"
)

const (
	PortMethodRoute = "route"
	PortMethodTable = "table"
)

// PortColumn names the output column holding travel times to a port.
func PortColumn(port geo.Coordinate) string {
	return "Tiempo_Prt_" + port.ID
}

// BuildPortTimes returns, for every port, the driving minutes from each site
// to that port: times[p][i] is site i to port p. Method route asks for one
// route per pair, method table asks for batched one-to-many tables.
func (b *Builder) BuildPortTimes(ctx context.Context, sites, ports []geo.Coordinate, method string) ([][]float64, *Report, error) {
	switch method {
	case PortMethodRoute:
		return b.portTimesByRoute(ctx, sites, ports)
	case PortMethodTable:
		return b.portTimesByTable(ctx, sites, ports)
	default:
		return nil, nil, fmt.Errorf("unknown port method %q", method)
	}
}

func (b *Builder) portTimesByRoute(ctx context.Context, sites, ports []geo.Coordinate) ([][]float64, *Report, error) {
	report := &Report{}
	times := make([][]float64, len(ports))

	for p, port := range ports {
		b.log.Sugar().Infof("calculating %s (%d/%d)", PortColumn(port), p+1, len(ports))
		times[p] = make([]float64, len(sites))
		for i, site := range sites {
			if err := ctx.Err(); err != nil {
				return nil, report, err
			}

			report.addRequest()
			minutes, err := b.fetcher.Route(ctx, site, port)
			if err != nil {
				if ctx.Err() != nil {
					return nil, report, ctx.Err()
				}
				minutes = b.failureMinutes
				report.addFailure(Failure{Scope: PortColumn(port), RowOffset: i, ColOffset: p, Rows: 1, Cols: 1, Err: err})
				b.log.Warn("route failed", zap.String("site", site.ID), zap.String("port", port.ID),
					zap.String("kind", osrm.KindName(err)), zap.Error(err))
			}
			times[p][i] = minutes
		}
	}
	return times, report, nil
}

func (b *Builder) portTimesByTable(ctx context.Context, sites, ports []geo.Coordinate) ([][]float64, *Report, error) {
	m, report, err := b.BuildChunked(ctx, sites, ports)
	if err != nil {
		return nil, report, err
	}

	times := make([][]float64, len(ports))
	for p := range ports {
		times[p] = make([]float64, len(sites))
		for i := range sites {
			times[p][i] = float64(m.At(i, p))
		}
	}
	return times, report, nil
}
