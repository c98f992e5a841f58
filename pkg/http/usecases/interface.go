package usecases

import "github.com/Arturo-Amberg/TrabajoTesis/pkg/npz"

// MatrixArchive is the read side of an npz archive.
type MatrixArchive interface {
	Names() []string
	Get(name string) (*npz.Array, bool)
}
