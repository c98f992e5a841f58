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
	method     = flag.String("method", "", "route or table, overrides matrix.port_method")
)

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck // ignore

	// the public demo server bans clients that do not pace their requests.
	cfg, err := util.Load(*configPath, map[string]any{
		"osrm.base_url":      "https://router.project-osrm.org",
		"osrm.min_interval":  "100ms",
		"dataset.mines_file": "df_15c.csv",
		"dataset.ports_file": "puertos.csv",
		"output.file":        "minas_con_tiempos_puertos.csv",
	})
	if err != nil {
		log.Fatal("unable to load config", zap.Error(err))
	}
	if *method != "" {
		cfg.Matrix.PortMethod = *method
	}

	log, _ = logger.WithRun(log, "porttimes")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := jobs.PortTimes(ctx, cfg, log); err != nil {
		log.Fatal("port times failed", zap.Error(err))
	}
	log.Info("port times done", zap.String("file", cfg.Output.File))
}
