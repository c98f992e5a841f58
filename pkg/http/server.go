package http

import (
	"context"
	"errors"

	http_router "github.com/Arturo-Amberg/TrabajoTesis/pkg/http/router"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/http/router/controllers"
	http_server "github.com/Arturo-Amberg/TrabajoTesis/pkg/http/server"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use serves the lookup API until ctx is cancelled. A cancelled ctx is a
// clean shutdown and returns nil.
func (s *Server) Use(
	ctx context.Context,
	cfg util.ServerConfig,
	useRateLimit bool,
	matrixService controllers.MatrixService,
) error {
	config := http_server.Config{
		Port:      cfg.Port,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
	}

	api := http_router.NewAPI(s.Log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Run(gctx, config, useRateLimit, matrixService)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
