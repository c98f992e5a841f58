package matrix

import (
	"context"
	"time"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/dataset"
	da "github.com/Arturo-Amberg/TrabajoTesis/pkg/datastructure"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/geo"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/osrm"
	"go.uber.org/zap"
)

const bigRegion = 1000

type RegionMatrix struct {
	Name   string
	Matrix *da.DurationMatrix
	IDs    []string
}

// MatrixKey and IDsKey name the region's arrays in an archive.
func (r RegionMatrix) MatrixKey() string {
	return r.Name + "_matrix"
}

func (r RegionMatrix) IDsKey() string {
	return r.Name + "_ids"
}

// BuildSymmetric fetches the full matrix of coords with a single request.
func (b *Builder) BuildSymmetric(ctx context.Context, coords []geo.Coordinate) (*da.DurationMatrix, error) {
	return b.fetcher.Table(ctx, osrm.TableRequest{Sources: coords})
}

// BuildRegions computes one symmetric matrix per region, in the order given.
// Regions smaller than the minimum size are skipped; regions whose request
// fails are left out of the result.
func (b *Builder) BuildRegions(ctx context.Context, regions []dataset.Region) ([]RegionMatrix, *Report, error) {
	report := &Report{}
	out := make([]RegionMatrix, 0, len(regions))

	for i, region := range regions {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		n := len(region.Coords)
		if n < b.minRegionSize {
			b.log.Debug("skipping small region", zap.String("region", region.Name), zap.Int("coordinates", n))
			report.addSkipped(region.Name)
			continue
		}

		start := time.Now()
		report.addRequest()
		m, err := b.BuildSymmetric(ctx, region.Coords)
		if err != nil {
			if ctx.Err() != nil {
				return nil, report, ctx.Err()
			}
			report.addFailure(Failure{Scope: region.Name, Rows: n, Cols: n, Err: err})
			b.log.Warn("region failed, left out of the output", zap.String("region", region.Name),
				zap.Int("coordinates", n), zap.String("kind", osrm.KindName(err)), zap.Error(err))
			continue
		}

		out = append(out, RegionMatrix{Name: region.Name, Matrix: m, IDs: geo.IDs(region.Coords)})
		if n > bigRegion {
			b.log.Info("processed big region", zap.String("region", region.Name), zap.Int("coordinates", n),
				zap.Duration("elapsed", time.Since(start)))
		}
		b.log.Sugar().Infof("region %s done (%d/%d)", region.Name, i+1, len(regions))
	}
	return out, report, nil
}
