package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/jobs"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/logger"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "config file (yaml, toml or json)")
	region     = flag.String("region", "", "region to fetch, overrides matrix.target_region")
)

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck // ignore

	cfg, err := util.Load(*configPath, map[string]any{
		"osrm.table_timeout": "300s",
		"output.file":        "matrix_" + jobs.RegionPlaceholder + ".npz",
	})
	if err != nil {
		log.Fatal("unable to load config", zap.Error(err))
	}
	if *region != "" {
		cfg.Matrix.TargetRegion = *region
	}

	log, _ = logger.WithRun(log, "testdrive")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := jobs.TestDrive(ctx, cfg, log)
	if err != nil {
		log.Fatal("test drive failed", zap.Error(err))
	}
	log.Sugar().Infof("test drive of region %s done: %dx%d matrix in %s, saved to %s (%d bytes)",
		res.Region, res.Matrix.Rows(), res.Matrix.Cols(), res.Elapsed, res.File, res.Bytes)
}
