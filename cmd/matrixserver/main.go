package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/http"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/http/usecases"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/logger"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/npz"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"go.uber.org/zap"
)

var (
	configPath   = flag.String("config", "", "config file (yaml, toml or json)")
	archive      = flag.String("archive", "", "npz archive to serve, overrides server.archive")
	useRateLimit = flag.Bool("rate_limit", true, "limit requests per second to server.rate_limit")
)

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck // ignore

	cfg, err := util.Load(*configPath, nil)
	if err != nil {
		log.Fatal("unable to load config", zap.Error(err))
	}
	if *archive != "" {
		cfg.Server.Archive = *archive
	}

	ar, err := npz.Open(cfg.Server.Archive)
	if err != nil {
		log.Fatal("unable to open archive", zap.String("file", cfg.Server.Archive), zap.Error(err))
	}
	matrixService, err := usecases.NewMatrixService(log, ar, cfg.Matrix.UnreachableMinutes, cfg.Matrix.FailureMinutes)
	if err != nil {
		log.Fatal("unable to index archive", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := http.NewServer(log)
	if err := api.Use(ctx, cfg.Server, *useRateLimit, matrixService); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
	log.Info("matrix server stopped")
}
