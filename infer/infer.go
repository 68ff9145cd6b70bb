// Package infer is the boundary to the external feature-extraction and
// inference stage. This repo never looks inside the model; it only
// consumes tiles and confidence vectors through these interfaces.
package infer

import (
	"context"
	"errors"

	"github.com/snapscore/melodex/constants"
)

var ErrNotReady = errors.New("inference engine not initialized")

// Tile is one fixed-size numeric feature patch cut from the source
// image, in left-to-right reading order.
type Tile struct {
	Features []float32

	// Row is the vertical staff-line index of the patch, -1 when the
	// extractor does not know it.
	Row int

	// Seq is the position of the tile among all extracted tiles and
	// doubles as the detection timestamp, in beats.
	Seq int
}

// Extractor turns a source image into feature tiles. Image selection and
// decoding live entirely on the other side of this interface.
type Extractor interface {
	Extract(ctx context.Context, image string) ([]Tile, error)
}

// Engine scores a batch of tiles, one confidence vector per tile. A call
// covers the whole batch or fails as a whole; the pipeline treats a
// failed batch as recoverable.
type Engine interface {
	Infer(ctx context.Context, tiles []Tile) ([][]float32, error)

	// Ready reports whether the engine can serve Infer calls. A run
	// against a non-ready engine aborts before any batch is dispatched.
	Ready() bool
}

// PitchForIndex maps a confidence-vector index to a pitch: index 0 is
// the lowest pitch the model scores, ascending one semitone per index,
// wrapping if the vector is longer than the pitch range. The mapping is
// a configuration constant, not something read off the model output.
func PitchForIndex(index int) int {
	span := constants.MaxPitch - constants.MinPitch + 1
	return constants.MinPitch + index%span
}
