package matrix

import (
	"context"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/concurrent"
	da "github.com/Arturo-Amberg/TrabajoTesis/pkg/datastructure"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/geo"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/osrm"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/util"
	"go.uber.org/zap"
)

type chunk struct {
	src geo.Batch
	dst geo.Batch
}

// GridSize is the number of row and column batches BuildChunked will use.
func (b *Builder) GridSize(sources, destinations int) (int, int) {
	return (sources + b.batchSize - 1) / b.batchSize, (destinations + b.batchSize - 1) / b.batchSize
}

// BuildChunked computes the |sources| x |destinations| matrix with one table
// request per pair of batches. Only a cancelled ctx makes it return an error.
func (b *Builder) BuildChunked(ctx context.Context, sources, destinations []geo.Coordinate) (*da.DurationMatrix, *Report, error) {
	report := &Report{}
	m := da.NewDurationMatrix(len(sources), len(destinations))

	srcBatches := geo.Batches(sources, b.batchSize)
	dstBatches := geo.Batches(destinations, b.batchSize)
	chunks := make([]chunk, 0, len(srcBatches)*len(dstBatches))
	for _, sb := range srcBatches {
		for _, db := range dstBatches {
			chunks = append(chunks, chunk{src: sb, dst: db})
		}
	}

	total := len(chunks)
	rowBatches, colBatches := len(srcBatches), len(dstBatches)
	b.log.Info("building chunked matrix",
		zap.Int("sources", len(sources)), zap.Int("destinations", len(destinations)),
		zap.Int("row_batches", rowBatches), zap.Int("col_batches", colBatches),
		zap.Int("workers", b.workers))

	done := concurrent.Run(b.workers, chunks, func(c chunk) bool {
		return b.fetchChunk(ctx, m, c, report)
	})

	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	fetched := 0
	for _, ok := range done {
		if ok {
			fetched++
		}
	}
	b.log.Info("chunked matrix done", zap.Int("chunks", total), zap.Int("failed_chunks", total-fetched),
		zap.Int("failed_cells", report.FailedCells()))
	return m, report, nil
}

// fetchChunk writes one block of m. The blocks of different chunks are
// disjoint, so concurrent calls need no locking on m.
func (b *Builder) fetchChunk(ctx context.Context, m *da.DurationMatrix, c chunk, report *Report) bool {
	if util.StopConcurrentOperation(ctx) {
		return false
	}

	report.addRequest()
	sub, err := b.fetcher.Table(ctx, osrm.TableRequest{Sources: c.src.Coords, Destinations: c.dst.Coords})
	if err == nil {
		err = checkBlock(sub, c)
	}
	if err == nil {
		err = m.SetBlock(c.src.Offset, c.dst.Offset, sub)
	}
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		m.FillBlock(c.src.Offset, c.dst.Offset, c.src.Len(), c.dst.Len(), float32(b.failureMinutes))
		report.addFailure(Failure{
			Scope:     "chunk",
			RowOffset: c.src.Offset,
			ColOffset: c.dst.Offset,
			Rows:      c.src.Len(),
			Cols:      c.dst.Len(),
			Err:       err,
		})
		b.log.Warn("chunk failed, filled with failure value",
			zap.Int("row_offset", c.src.Offset), zap.Int("col_offset", c.dst.Offset),
			zap.String("kind", osrm.KindName(err)), zap.Error(err))
		return false
	}

	b.log.Debug("chunk done", zap.Int("row_offset", c.src.Offset), zap.Int("col_offset", c.dst.Offset))
	return true
}

// checkBlock rejects a block that would not cover the chunk exactly.
func checkBlock(sub *da.DurationMatrix, c chunk) error {
	if sub == nil {
		return util.WrapErrorf(nil, osrm.ErrMalformedResponse, "no block returned for chunk at (%d,%d)",
			c.src.Offset, c.dst.Offset)
	}
	if rows, cols := sub.Shape(); rows != c.src.Len() || cols != c.dst.Len() {
		return util.WrapErrorf(nil, osrm.ErrMalformedResponse, "block is %dx%d, chunk at (%d,%d) is %dx%d",
			rows, cols, c.src.Offset, c.dst.Offset, c.src.Len(), c.dst.Len())
	}
	return nil
}
