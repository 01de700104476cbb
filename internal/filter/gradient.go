package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/anthonynsimon/bild/convolution"

	"github.com/ironsheep/canny-tools-mcp/internal/grid"
)

// ErrMultiChannel is returned by operations that only accept single-channel grids.
var ErrMultiChannel = errors.New("grid must have exactly one channel")

// sobelX and sobelY are the 3x3 Sobel operators. A unit step between two flat
// regions yields a gradient magnitude of 4.
var (
	sobelX = &convolution.Kernel{
		Matrix: []float64{
			-1, 0, 1,
			-2, 0, 2,
			-1, 0, 1,
		},
		Width:  3,
		Height: 3,
	}
	sobelY = &convolution.Kernel{
		Matrix: []float64{
			-1, -2, -1,
			0, 0, 0,
			1, 2, 1,
		},
		Width:  3,
		Height: 3,
	}
)

// Gradient computes the Sobel gradient of a single-channel grid.
//
// Returns:
//   - magnitude: sqrt(gx² + gy²) per pixel, always >= 0.
//   - orientation: atan2(gy, gx) in radians, in [-π, π]. gx is the derivative
//     along columns (left to right) and gy along rows (top to bottom), so a
//     vertical edge has orientation 0 or π and a horizontal edge ±π/2.
//   - error: ErrMultiChannel if g has more than one channel.
func Gradient(g *grid.Grid) (magnitude, orientation *grid.Grid, err error) {
	if g.Channels() != 1 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrMultiChannel, g.Channels())
	}

	gx, err := Convolve(g, sobelX)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute horizontal derivative: %w", err)
	}
	gy, err := Convolve(g, sobelY)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute vertical derivative: %w", err)
	}

	magnitude, _ = grid.New(g.Rows(), g.Cols(), 1)
	orientation, _ = grid.New(g.Rows(), g.Cols(), 1)
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			dx := gx.At(r, c, 0)
			dy := gy.At(r, c, 0)
			magnitude.Set(r, c, 0, math.Hypot(dx, dy))
			orientation.Set(r, c, 0, math.Atan2(dy, dx))
		}
	}
	return magnitude, orientation, nil
}
