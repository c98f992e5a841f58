package geo

import "github.com/Arturo-Amberg/TrabajoTesis/pkg/util"

// Batch is a contiguous slice of a coordinate set together with its position
// in the full set.
type Batch struct {
	Offset int
	Coords []Coordinate
}

func (b Batch) Len() int {
	return len(b.Coords)
}

// Batches partitions coords into consecutive batches of at most size
// coordinates. The last batch may be shorter.
func Batches(coords []Coordinate, size int) []Batch {
	if size <= 0 || len(coords) == 0 {
		return nil
	}
	bs := make([]Batch, 0, (len(coords)+size-1)/size)
	for i := 0; i < len(coords); i += size {
		bs = append(bs, Batch{
			Offset: i,
			Coords: coords[i:util.MinInt(i+size, len(coords))],
		})
	}
	return bs
}
