// Package jobs holds the batch runs behind the cmd/ binaries: load the input
// table, build the matrices against OSRM and write the output once at the end.
package jobs

import (
	"os"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/dataset"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/matrix"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/npz"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/osrm"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"go.uber.org/zap"
)

func newBuilder(cfg *util.Config, log *zap.Logger, opts ...osrm.Option) *matrix.Builder {
	client := osrm.NewClient(cfg.OSRM, cfg.Matrix.UnreachableMinutes, log, opts...)
	return matrix.NewBuilder(client, cfg.Matrix, log)
}

func loadMines(cfg *util.Config, log *zap.Logger) (*dataset.Table, error) {
	table, err := dataset.ReadTable(cfg.Dataset.MinesFile, dataset.Columns{
		Lon:    cfg.Dataset.LonColumn,
		Lat:    cfg.Dataset.LatColumn,
		ID:     cfg.Dataset.IDColumn,
		Region: cfg.Dataset.RegionColumn,
	})
	if err != nil {
		return nil, err
	}
	log.Info("input loaded", zap.String("file", cfg.Dataset.MinesFile),
		zap.Int("rows", len(table.Records)), zap.Int("coordinates", len(table.Coords)),
		zap.Int("dropped", table.Dropped))
	return table, nil
}

// writeArchive writes an npz file and returns its size in bytes.
func writeArchive(path, compression string, write func(w *npz.Writer) error) (int64, error) {
	w, err := npz.Create(path, compression)
	if err != nil {
		return 0, err
	}
	if err := write(w); err != nil {
		_ = w.Close()
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func logReport(log *zap.Logger, report *matrix.Report) {
	log.Info("run summary",
		zap.Int("requests", report.Requests),
		zap.Int("failures", len(report.Failures)),
		zap.Int("failed_cells", report.FailedCells()),
		zap.Strings("skipped", report.Skipped))
	for _, f := range report.Failures {
		log.Warn("failed request", zap.String("scope", f.Scope), zap.Int("row_offset", f.RowOffset),
			zap.Int("col_offset", f.ColOffset), zap.Int("rows", f.Rows), zap.Int("cols", f.Cols),
			zap.String("kind", f.Kind))
	}
}
