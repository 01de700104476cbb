// Package filter implements the linear filters the edge detector is built on:
// 2-D convolution, Gaussian smoothing kernels and Sobel gradients.
//
// All filters operate on grid.Grid values and return grids with the same
// spatial extents as their input. Pixels outside the grid are treated as
// copies of the nearest border pixel (replicated borders), so a uniform image
// stays uniform after filtering.
package filter

import (
	"fmt"

	"github.com/anthonynsimon/bild/convolution"

	"github.com/ironsheep/canny-tools-mcp/internal/grid"
)

// Convolve applies kernel k to every channel of g and returns a new grid.
//
// As in bild's convolution package the kernel is applied without flipping,
// with its anchor at the center cell. k.At(x, y) addresses column x and row y
// of the kernel. The kernel must have odd, positive width and height.
func Convolve(g *grid.Grid, k convolution.Matrix) (*grid.Grid, error) {
	kw, kh := k.MaxX(), k.MaxY()
	if err := checkKernelShape(kh, kw); err != nil {
		return nil, err
	}

	rows, cols := g.Rows(), g.Cols()
	out, err := grid.New(rows, cols, g.Channels())
	if err != nil {
		return nil, fmt.Errorf("failed to allocate convolution output: %w", err)
	}

	ax, ay := kw/2, kh/2
	for ch := 0; ch < g.Channels(); ch++ {
		src := g.Plane(ch)
		dst := out.Plane(ch)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				var sum float64
				for ky := 0; ky < kh; ky++ {
					py := clamp(r+ky-ay, 0, rows-1)
					for kx := 0; kx < kw; kx++ {
						px := clamp(c+kx-ax, 0, cols-1)
						sum += src.At(py, px) * k.At(kx, ky)
					}
				}
				dst.Set(r, c, sum)
			}
		}
	}
	return out, nil
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
