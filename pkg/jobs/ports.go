package jobs

import (
	"context"
	"time"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/dataset"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/matrix"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/osrm"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"go.uber.org/zap"
)

func loadPorts(cfg *util.Config, log *zap.Logger) (*dataset.Table, error) {
	if cfg.Dataset.PortsFile == "" {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "dataset.ports_file is not set")
	}
	ports, err := dataset.ReadTable(cfg.Dataset.PortsFile, dataset.Columns{
		Lon: cfg.Dataset.PortLonColumn,
		Lat: cfg.Dataset.PortLatColumn,
		ID:  cfg.Dataset.PortNameColumn,
	})
	if err != nil {
		return nil, err
	}
	log.Info("ports loaded", zap.String("file", cfg.Dataset.PortsFile), zap.Int("ports", len(ports.Coords)),
		zap.Int("dropped", ports.Dropped))
	return ports, nil
}

// PortTimes adds one Tiempo_Prt_<port> column per port to the mines table,
// holding the driving minutes from each site to that port, and writes the
// table to the output file. Rows without usable coordinates get an empty
// cell, failed lookups get the failure value.
func PortTimes(ctx context.Context, cfg *util.Config, log *zap.Logger, opts ...osrm.Option) (*matrix.Report, error) {
	table, err := loadMines(cfg, log)
	if err != nil {
		return nil, err
	}
	ports, err := loadPorts(cfg, log)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	times, report, err := newBuilder(cfg, log, opts...).BuildPortTimes(ctx, table.Coords, ports.Coords, cfg.Matrix.PortMethod)
	if err != nil {
		return report, err
	}
	log.Info("port times computed", zap.Int("ports", len(ports.Coords)), zap.Duration("elapsed", time.Since(start)))

	for p, port := range ports.Coords {
		values := make([]string, len(table.Records))
		for i, site := range table.Coords {
			values[site.Row] = dataset.FormatMinutes(times[p][i])
		}
		if err := table.AppendColumn(matrix.PortColumn(port), values); err != nil {
			return report, err
		}
	}

	if err := table.WriteFile(cfg.Output.File); err != nil {
		return report, err
	}
	log.Info("travel times saved", zap.String("file", cfg.Output.File))
	logReport(log, report)
	return report, nil
}
