package canny

import (
	"fmt"
	"image"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ironsheep/canny-tools-mcp/internal/grid"
)

// Mask is a binary edge map with the same extents as the image it came from.
// A Mask returned by Link or Apply is never modified afterwards.
type Mask struct {
	rows, cols int
	cells      []bool
}

func newMask(rows, cols int) *Mask {
	return &Mask{rows: rows, cols: cols, cells: make([]bool, rows*cols)}
}

// Rows returns the number of rows.
func (m *Mask) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Mask) Cols() int { return m.cols }

// At reports whether (r, c) is an edge pixel.
func (m *Mask) At(r, c int) bool { return m.cells[r*m.cols+c] }

func (m *Mask) set(r, c int, v bool) { m.cells[r*m.cols+c] = v }

// Count returns the number of edge pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.cells {
		if v {
			n++
		}
	}
	return n
}

// Points returns the edge pixels in raster order as image points
// (X = column, Y = row).
func (m *Mask) Points() []image.Point {
	pts := make([]image.Point, 0, m.Count())
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if m.At(r, c) {
				pts = append(pts, image.Point{X: c, Y: r})
			}
		}
	}
	return pts
}

// cell is a (row, col) coordinate in the linking search.
type cell struct {
	r, c int
}

// Link applies hysteresis thresholding to a suppressed magnitude grid.
//
// Magnitudes below lower are clamped to zero. Pixels at or above upper are
// strong edges and seed a depth-first search in raster order; a reached pixel
// joins the edge set when its clamped magnitude is strictly greater than
// lower. Pixels already promoted are never searched again.
//
// magnitude must be single-channel.
func Link(magnitude *grid.Grid, lower, upper float64) (*Mask, error) {
	if magnitude.Channels() != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrChannelDimensionMismatch, magnitude.Channels())
	}

	clamped := magnitude.Map(func(v float64) float64 {
		if v >= lower {
			return v
		}
		return 0
	})
	values := clamped.Plane(0)

	rows, cols := magnitude.Rows(), magnitude.Cols()
	mask := newMask(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			mask.set(r, c, values.At(r, c) >= upper)
		}
	}

	visited := mapset.NewThreadUnsafeSet[cell]()
	var stack []cell
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			seed := cell{r, c}
			if !mask.At(r, c) || visited.Contains(seed) {
				continue
			}
			visited.Add(seed)
			stack = append(stack[:0], expand(seed, rows, cols, visited)...)

			for len(stack) > 0 {
				next := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				// Candidates can be queued more than once before they are promoted.
				if visited.Contains(next) || values.At(next.r, next.c) <= lower {
					continue
				}
				visited.Add(next)
				mask.set(next.r, next.c, true)
				stack = append(stack, expand(next, rows, cols, visited)...)
			}
		}
	}
	return mask, nil
}

// expand lists the unvisited neighbors of at that the linking search may step
// to: the three cells in the row above and the three in the row below, where
// they exist.
func expand(at cell, rows, cols int, visited mapset.Set[cell]) []cell {
	out := make([]cell, 0, 6)
	add := func(n cell) {
		if !visited.Contains(n) {
			out = append(out, n)
		}
	}

	r, c := at.r, at.c
	if r > 0 {
		if c > 0 {
			add(cell{r - 1, c - 1})
		}
		if c < cols-1 {
			add(cell{r - 1, c + 1})
		}
		add(cell{r - 1, c})
	}
	if r < rows-1 {
		if c > 0 {
			add(cell{r + 1, c - 1})
		}
		if c < cols-1 {
			add(cell{r + 1, c + 1})
		}
		add(cell{r + 1, c})
	}
	return out
}
