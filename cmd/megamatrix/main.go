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
	input      = flag.String("input", "", "mine sites csv, overrides dataset.mines_file")
	output     = flag.String("output", "", "npz archive, overrides output.file")
	batchSize  = flag.Int("batch_size", 0, "coordinates per table request, overrides matrix.batch_size")
)

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck // ignore

	cfg, err := util.Load(*configPath, map[string]any{
		"osrm.table_timeout": "60s",
		"output.file":        "matrix_chile_mega.npz",
	})
	if err != nil {
		log.Fatal("unable to load config", zap.Error(err))
	}
	if *input != "" {
		cfg.Dataset.MinesFile = *input
	}
	if *output != "" {
		cfg.Output.File = *output
	}
	if *batchSize > 0 {
		cfg.Matrix.BatchSize = *batchSize
	}

	log, _ = logger.WithRun(log, "megamatrix")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := jobs.MegaMatrix(ctx, cfg, log); err != nil {
		log.Fatal("mega matrix failed", zap.Error(err))
	}
	log.Info("mega matrix done")
}
