// Package grid provides the multi-channel floating-point pixel container used by
// the filter and edge detection packages.
//
// A Grid is a rows × cols × channels array of float64 values. Each channel is
// stored as its own gonum dense matrix ("plane"), indexed by (row, col). Row 0
// is the top of the image and column 0 is the leftmost pixel.
//
// Intensity values produced by the imaging package are normalized to [0, 1],
// but Grid itself places no constraint on the range.
package grid

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmpty is returned when a grid would have no rows, columns or channels.
	ErrEmpty = errors.New("grid must have at least one row, column and channel")

	// ErrShapeMismatch is returned when planes or rows disagree on their extents.
	ErrShapeMismatch = errors.New("grid shape mismatch")
)

// Grid is a rows × cols × channels array of float64 values.
type Grid struct {
	rows, cols int
	planes     []*mat.Dense
}

// New allocates a zero-filled grid.
func New(rows, cols, channels int) (*Grid, error) {
	if rows <= 0 || cols <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: got %dx%dx%d", ErrEmpty, rows, cols, channels)
	}
	planes := make([]*mat.Dense, channels)
	for i := range planes {
		planes[i] = mat.NewDense(rows, cols, nil)
	}
	return &Grid{rows: rows, cols: cols, planes: planes}, nil
}

// FromPlanes builds a grid with one channel per plane. The planes are copied,
// so later changes to them do not affect the grid.
func FromPlanes(planes ...*mat.Dense) (*Grid, error) {
	if len(planes) == 0 {
		return nil, ErrEmpty
	}
	rows, cols := planes[0].Dims()
	g := &Grid{rows: rows, cols: cols, planes: make([]*mat.Dense, len(planes))}
	for i, p := range planes {
		r, c := p.Dims()
		if r != rows || c != cols {
			return nil, fmt.Errorf("%w: plane %d is %dx%d, want %dx%d", ErrShapeMismatch, i, r, c, rows, cols)
		}
		g.planes[i] = mat.DenseCopyOf(p)
	}
	return g, nil
}

// FromRows builds a single-channel grid from row-major values.
// All rows must have the same, non-zero length.
func FromRows(values [][]float64) (*Grid, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, ErrEmpty
	}
	cols := len(values[0])
	data := make([]float64, 0, len(values)*cols)
	for i, row := range values {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShapeMismatch, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return &Grid{
		rows:   len(values),
		cols:   cols,
		planes: []*mat.Dense{mat.NewDense(len(values), cols, data)},
	}, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Channels returns the number of channels.
func (g *Grid) Channels() int { return len(g.planes) }

// At returns the value at (r, c) in channel ch.
func (g *Grid) At(r, c, ch int) float64 {
	return g.planes[ch].At(r, c)
}

// Set stores v at (r, c) in channel ch.
func (g *Grid) Set(r, c, ch int, v float64) {
	g.planes[ch].Set(r, c, v)
}

// Plane returns the matrix backing channel ch. The matrix is shared with the
// grid; callers that only read from it need not copy it.
func (g *Grid) Plane(ch int) *mat.Dense {
	return g.planes[ch]
}

// Channel returns a single-channel copy of channel ch.
func (g *Grid) Channel(ch int) (*Grid, error) {
	if ch < 0 || ch >= len(g.planes) {
		return nil, fmt.Errorf("channel %d out of range [0,%d)", ch, len(g.planes))
	}
	return &Grid{rows: g.rows, cols: g.cols, planes: []*mat.Dense{mat.DenseCopyOf(g.planes[ch])}}, nil
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	planes := make([]*mat.Dense, len(g.planes))
	for i, p := range g.planes {
		planes[i] = mat.DenseCopyOf(p)
	}
	return &Grid{rows: g.rows, cols: g.cols, planes: planes}
}

// SameShape reports whether o has the same row and column extents as g.
// Channel counts are not compared.
func (g *Grid) SameShape(o *Grid) bool {
	return g.rows == o.rows && g.cols == o.cols
}

// Map returns a new grid with fn applied to every value of every channel.
func (g *Grid) Map(fn func(v float64) float64) *Grid {
	out := g.Clone()
	for _, p := range out.planes {
		p.Apply(func(_, _ int, v float64) float64 { return fn(v) }, p)
	}
	return out
}

// Range returns the smallest and largest value stored in channel ch.
func (g *Grid) Range(ch int) (lo, hi float64) {
	data := g.planes[ch].RawMatrix().Data
	return floats.Min(data), floats.Max(data)
}

// Mean returns the arithmetic mean of channel ch.
func (g *Grid) Mean(ch int) float64 {
	return stat.Mean(g.planes[ch].RawMatrix().Data, nil)
}
