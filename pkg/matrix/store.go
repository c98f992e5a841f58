package matrix

import (
	da "github.com/Arturo-Amberg/TrabajoTesis/pkg/datastructure"
	"github.com/Arturo-Amberg/TrabajoTesis/pkg/npz"
)

const (
	KeyMatrix = "matrix"
	KeyIDs    = "ids"
)

// WriteFull stores a whole-set matrix as "matrix" plus its row ids as "ids".
// ids may be nil.
func WriteFull(w *npz.Writer, m *da.DurationMatrix, ids []string) error {
	if err := w.WriteMatrix(KeyMatrix, m); err != nil {
		return err
	}
	if ids == nil {
		return nil
	}
	return w.WriteStrings(KeyIDs, ids)
}

// WriteRegions stores every region under <region>_matrix and <region>_ids.
func WriteRegions(w *npz.Writer, regions []RegionMatrix) error {
	for _, r := range regions {
		if err := w.WriteMatrix(r.MatrixKey(), r.Matrix); err != nil {
			return err
		}
		if err := w.WriteStrings(r.IDsKey(), r.IDs); err != nil {
			return err
		}
	}
	return nil
}
