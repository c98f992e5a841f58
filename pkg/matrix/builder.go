package matrix

import (
	"context"

	da "github.com/Arturo-Amberg/TrabajoTesis/pkg/datastructure"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/geo"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/osrm"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"go.uber.org/zap"
)

// Fetcher is the routing service as seen by the builder. *osrm.Client
// implements it.
type Fetcher interface {
	Table(ctx context.Context, req osrm.TableRequest) (*da.DurationMatrix, error)
	Route(ctx context.Context, from, to geo.Coordinate) (float64, error)
}

// Builder assembles full duration matrices from bounded routing requests.
// Failed requests never abort a build: the builder fills the affected cells
// with the failure value, or leaves a region out, and records it in the
// Report.
type Builder struct {
	log     *zap.Logger
	fetcher Fetcher

	batchSize      int
	workers        int
	failureMinutes float64
	minRegionSize  int
}

func NewBuilder(fetcher Fetcher, cfg util.MatrixConfig, log *zap.Logger) *Builder {
	b := &Builder{
		log:            log,
		fetcher:        fetcher,
		batchSize:      cfg.BatchSize,
		workers:        cfg.Workers,
		failureMinutes: cfg.FailureMinutes,
		minRegionSize:  cfg.MinRegionSize,
	}
	if b.batchSize < 1 {
		b.batchSize = 1
	}
	if b.workers < 1 {
		b.workers = 1
	}
	if b.minRegionSize < 1 {
		b.minRegionSize = 1
	}
	return b
}

func (b *Builder) FailureMinutes() float64 {
	return b.failureMinutes
}
