package grid

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNew(t *testing.T) {
	g, err := New(4, 3, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if g.Rows() != 4 || g.Cols() != 3 || g.Channels() != 2 {
		t.Errorf("shape: got %dx%dx%d, want 4x3x2", g.Rows(), g.Cols(), g.Channels())
	}
	for ch := 0; ch < 2; ch++ {
		for r := 0; r < 4; r++ {
			for c := 0; c < 3; c++ {
				if v := g.At(r, c, ch); v != 0 {
					t.Errorf("At(%d,%d,%d): got %v, want 0", r, c, ch, v)
				}
			}
		}
	}
}

func TestNew_Empty(t *testing.T) {
	tests := []struct {
		name                 string
		rows, cols, channels int
	}{
		{"no rows", 0, 3, 1},
		{"no cols", 3, 0, 1},
		{"no channels", 3, 3, 0},
		{"negative", -1, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rows, tt.cols, tt.channels)
			if !errors.Is(err, ErrEmpty) {
				t.Errorf("got %v, want ErrEmpty", err)
			}
		})
	}
}

func TestFromRows(t *testing.T) {
	g, err := FromRows([][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	if g.Rows() != 2 || g.Cols() != 3 || g.Channels() != 1 {
		t.Fatalf("shape: got %dx%dx%d, want 2x3x1", g.Rows(), g.Cols(), g.Channels())
	}
	if g.At(1, 2, 0) != 6 {
		t.Errorf("At(1,2,0): got %v, want 6", g.At(1, 2, 0))
	}
}

func TestFromRows_Ragged(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2}, {3}})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("got %v, want ErrShapeMismatch", err)
	}
	if _, err := FromRows(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("nil rows: got %v, want ErrEmpty", err)
	}
}

func TestFromPlanes(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	b := mat.NewDense(2, 2, []float64{5, 6, 7, 8})

	g, err := FromPlanes(a, b)
	if err != nil {
		t.Fatalf("FromPlanes failed: %v", err)
	}
	if g.Channels() != 2 {
		t.Errorf("Channels: got %d, want 2", g.Channels())
	}

	// Planes are copied
	a.Set(0, 0, 100)
	if g.At(0, 0, 0) != 1 {
		t.Errorf("grid changed with source plane: got %v, want 1", g.At(0, 0, 0))
	}

	_, err = FromPlanes(a, mat.NewDense(3, 2, nil))
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("mismatched planes: got %v, want ErrShapeMismatch", err)
	}
}

func TestChannel(t *testing.T) {
	g, _ := New(2, 2, 3)
	g.Set(1, 1, 2, 0.75)

	ch, err := g.Channel(2)
	if err != nil {
		t.Fatalf("Channel failed: %v", err)
	}
	if ch.Channels() != 1 {
		t.Errorf("Channels: got %d, want 1", ch.Channels())
	}
	if ch.At(1, 1, 0) != 0.75 {
		t.Errorf("At(1,1,0): got %v, want 0.75", ch.At(1, 1, 0))
	}

	if _, err := g.Channel(3); err == nil {
		t.Error("Channel(3) should fail on a 3-channel grid")
	}
}

func TestCloneAndMap(t *testing.T) {
	g, _ := FromRows([][]float64{{1, -2}, {3, -4}})

	clone := g.Clone()
	clone.Set(0, 0, 0, 9)
	if g.At(0, 0, 0) != 1 {
		t.Error("Clone shares storage with the original")
	}

	doubled := g.Map(func(v float64) float64 { return v * 2 })
	if doubled.At(1, 1, 0) != -8 {
		t.Errorf("Map: got %v, want -8", doubled.At(1, 1, 0))
	}
	if g.At(1, 1, 0) != -4 {
		t.Error("Map modified the original grid")
	}
}

func TestRange(t *testing.T) {
	g, _ := FromRows([][]float64{{0.5, -1}, {3, 2}})
	lo, hi := g.Range(0)
	if lo != -1 || hi != 3 {
		t.Errorf("Range: got (%v, %v), want (-1, 3)", lo, hi)
	}
}

func TestMean(t *testing.T) {
	g, _ := FromRows([][]float64{{0.5, -1}, {3, 1.5}})
	if got := g.Mean(0); got != 1 {
		t.Errorf("Mean: got %v, want 1", got)
	}
}

func TestSameShape(t *testing.T) {
	a, _ := New(3, 4, 1)
	b, _ := New(3, 4, 3)
	c, _ := New(4, 3, 1)

	if !a.SameShape(b) {
		t.Error("3x4x1 and 3x4x3 should share spatial shape")
	}
	if a.SameShape(c) {
		t.Error("3x4 and 4x3 should not share spatial shape")
	}
}
