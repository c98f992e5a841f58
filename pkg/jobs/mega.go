package jobs

import (
	"context"
	"time"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/geo"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/matrix"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/npz"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/osrm"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"go.uber.org/zap"
)

// MegaMatrix builds the N x N matrix of every mine site in chunks and writes
// it as "matrix" with the site ids as "ids".
func MegaMatrix(ctx context.Context, cfg *util.Config, log *zap.Logger, opts ...osrm.Option) (*matrix.Report, error) {
	table, err := loadMines(cfg, log)
	if err != nil {
		return nil, err
	}
	coords := table.Coords

	b := newBuilder(cfg, log, opts...)
	rowBatches, colBatches := b.GridSize(len(coords), len(coords))
	log.Sugar().Infof("building %dx%d matrix (%d cells) in a %dx%d grid of %d-coordinate batches",
		len(coords), len(coords), len(coords)*len(coords), rowBatches, colBatches, cfg.Matrix.BatchSize)

	start := time.Now()
	m, report, err := b.BuildChunked(ctx, coords, coords)
	if err != nil {
		return report, err
	}
	log.Info("matrix built", zap.Duration("elapsed", time.Since(start)))

	size, err := writeArchive(cfg.Output.File, cfg.Output.Compression, func(w *npz.Writer) error {
		return matrix.WriteFull(w, m, geo.IDs(coords))
	})
	if err != nil {
		return report, err
	}
	log.Info("archive written", zap.String("file", cfg.Output.File), zap.Int64("bytes", size))
	logReport(log, report)
	return report, nil
}
