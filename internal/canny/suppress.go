package canny

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/canny-tools-mcp/internal/grid"
)

// neighborPairs holds the two (dRow, dCol) offsets compared in each 45° bucket
// of the folded gradient orientation.
var neighborPairs = [4][2][2]int{
	{{0, -1}, {0, 1}},  // [0, 45): horizontal
	{{-1, -1}, {1, 1}}, // [45, 90): diagonal
	{{-1, 0}, {1, 0}},  // [90, 135): vertical
	{{-1, 1}, {1, -1}}, // [135, 180): anti-diagonal
}

// Suppress thins a gradient magnitude grid to one-pixel-wide ridges.
//
// Each pixel is compared against the two neighbors selected by its orientation
// (radians, any range). If either neighbor is strictly larger the pixel is
// zeroed in the output, otherwise it keeps its magnitude. Neighbors outside
// the grid count as zero.
//
// Decisions always read the unmodified input, so the result does not depend
// on the order pixels are visited. Rows are processed in parallel bands.
//
// Both grids must be single-channel with identical extents.
func Suppress(magnitude, orientation *grid.Grid) (*grid.Grid, error) {
	if magnitude.Channels() != 1 || orientation.Channels() != 1 {
		return nil, fmt.Errorf("%w: magnitude has %d, orientation has %d",
			ErrChannelDimensionMismatch, magnitude.Channels(), orientation.Channels())
	}
	if !magnitude.SameShape(orientation) {
		return nil, fmt.Errorf("%w: magnitude %dx%d, orientation %dx%d", grid.ErrShapeMismatch,
			magnitude.Rows(), magnitude.Cols(), orientation.Rows(), orientation.Cols())
	}

	out := magnitude.Clone()
	src := magnitude.Plane(0)
	dirs := orientation.Plane(0)
	dst := out.Plane(0)

	rows := magnitude.Rows()
	workers := runtime.GOMAXPROCS(0)
	band := (rows + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < rows; start += band {
		start := start
		end := min(start+band, rows)
		g.Go(func() error {
			suppressRows(src, dirs, dst, start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// suppressRows zeroes non-maximal pixels of dst in rows [start, end).
// src must not be written while this runs.
func suppressRows(src, dirs, dst *mat.Dense, start, end int) {
	_, cols := src.Dims()
	for r := start; r < end; r++ {
		for c := 0; c < cols; c++ {
			pair := neighborPairs[orientationBucket(dirs.At(r, c))]
			center := src.At(r, c)
			a := sampleNeighbor(src, r, c, pair[0][0], pair[0][1])
			b := sampleNeighbor(src, r, c, pair[1][0], pair[1][1])
			if a > center || b > center {
				dst.Set(r, c, 0)
			}
		}
	}
}

// orientationBucket folds an angle in radians into [0°, 180°) and returns the
// index of its 45° bucket. Bucket boundaries are lower-inclusive.
func orientationBucket(theta float64) int {
	deg := foldDegrees(theta)
	switch {
	case deg < 45:
		return 0
	case deg < 90:
		return 1
	case deg < 135:
		return 2
	default:
		return 3
	}
}

// foldDegrees converts radians to degrees in [0, 180). A gradient and its
// opposite describe the same edge. Non-finite angles fold to 0.
func foldDegrees(theta float64) float64 {
	deg := theta * (180 / math.Pi)
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	deg = math.Mod(deg, 180)
	if deg < 0 {
		deg += 180
	}
	if deg >= 180 {
		deg -= 180
	}
	return deg
}

// sampleNeighbor returns the value at (r+dr, c+dc), or 0 when that position
// lies outside the plane.
func sampleNeighbor(m *mat.Dense, r, c, dr, dc int) float64 {
	rows, cols := m.Dims()
	nr, nc := r+dr, c+dc
	if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
		return 0
	}
	return m.At(nr, nc)
}
