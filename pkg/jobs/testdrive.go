package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/dataset"
	da "github.com/Arturo-Amberg/TrabajoTesis/pkg/datastructure"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/geo"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/npz"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/osrm"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"go.uber.org/zap"
)

// RegionPlaceholder in the output path is replaced by the region name.
const RegionPlaceholder = "{region}"

// TestDriveFile is the archive path for region, "matrix_{region}.npz" by
// default.
func TestDriveFile(pattern, region string) string {
	return strings.ReplaceAll(pattern, RegionPlaceholder, region)
}

type TestDriveResult struct {
	Region  string
	Matrix  *da.DurationMatrix
	Stats   da.MatrixStats
	File    string
	Bytes   int64
	Elapsed time.Duration
}

// TestDrive fetches the symmetric matrix of a single region in one request,
// to check the server copes with it before a full run. Unlike the batch
// jobs, a failed request is returned as an error.
func TestDrive(ctx context.Context, cfg *util.Config, log *zap.Logger, opts ...osrm.Option) (*TestDriveResult, error) {
	table, err := loadMines(cfg, log)
	if err != nil {
		return nil, err
	}

	region := cfg.Matrix.TargetRegion
	coords := dataset.FilterRegion(table.Coords, region)
	if len(coords) < cfg.Matrix.MinRegionSize {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "region %q has %d coordinates, need at least %d",
			region, len(coords), cfg.Matrix.MinRegionSize)
	}

	client := osrm.NewClient(cfg.OSRM, cfg.Matrix.UnreachableMinutes, log, opts...)
	url := client.TableURL(osrm.TableRequest{Sources: coords})
	log.Info("requesting region matrix", zap.String("region", region), zap.Int("coordinates", len(coords)),
		zap.Int("url_bytes", len(url)), zap.Int("coordinate_bytes", len(geo.JoinCoordinates(coords))))

	start := time.Now()
	m, err := client.Table(ctx, osrm.TableRequest{Sources: coords})
	if err != nil {
		log.Error("test drive failed", zap.String("kind", osrm.KindName(err)), zap.Error(err))
		return nil, err
	}
	res := &TestDriveResult{Region: region, Matrix: m, Stats: m.Stats(), Elapsed: time.Since(start)}
	log.Info("matrix received", zap.Duration("elapsed", res.Elapsed),
		zap.Float64("min", res.Stats.Min), zap.Float64("max", res.Stats.Max), zap.Float64("mean", res.Stats.Mean))

	res.File = TestDriveFile(cfg.Output.File, region)
	res.Bytes, err = writeArchive(res.File, cfg.Output.Compression, func(w *npz.Writer) error {
		return w.WriteMatrix("matrix", m)
	})
	if err != nil {
		return nil, err
	}
	log.Info("archive written", zap.String("file", res.File), zap.Int64("bytes", res.Bytes))
	return res, nil
}
