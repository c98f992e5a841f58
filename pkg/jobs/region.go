package jobs

import (
	"context"
	"time"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/dataset"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/matrix"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/npz"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/osrm"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"go.uber.org/zap"
)

// RegionMatrices builds one symmetric matrix per region and writes them all
// to a single archive as <region>_matrix / <region>_ids.
func RegionMatrices(ctx context.Context, cfg *util.Config, log *zap.Logger, opts ...osrm.Option) (*matrix.Report, error) {
	table, err := loadMines(cfg, log)
	if err != nil {
		return nil, err
	}
	if !table.HasColumn(cfg.Dataset.RegionColumn) {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "input has no %q column", cfg.Dataset.RegionColumn)
	}

	regions := dataset.GroupByRegion(table.Coords)
	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = r.Name
	}
	log.Info("regions found", zap.Int("count", len(regions)), zap.Strings("regions", names))

	start := time.Now()
	out, report, err := newBuilder(cfg, log, opts...).BuildRegions(ctx, regions)
	if err != nil {
		return report, err
	}
	log.Info("region matrices built", zap.Int("regions", len(out)), zap.Duration("elapsed", time.Since(start)))

	size, err := writeArchive(cfg.Output.File, cfg.Output.Compression, func(w *npz.Writer) error {
		return matrix.WriteRegions(w, out)
	})
	if err != nil {
		return report, err
	}
	log.Info("archive written", zap.String("file", cfg.Output.File), zap.Int64("bytes", size))
	logReport(log, report)
	return report, nil
}
