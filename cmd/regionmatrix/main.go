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
)

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck // ignore

	// a whole region goes in one request, big ones take minutes to answer.
	cfg, err := util.Load(*configPath, map[string]any{
		"osrm.table_timeout": "600s",
		"output.file":        "matrices_chile_complete.npz",
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

	log, _ = logger.WithRun(log, "regionmatrix")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := jobs.RegionMatrices(ctx, cfg, log); err != nil {
		log.Fatal("region matrices failed", zap.Error(err))
	}
	log.Info("region matrices done")
}
