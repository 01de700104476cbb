package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/canny-tools-mcp/internal/canny"
	"github.com/ironsheep/canny-tools-mcp/internal/grid"
)

func TestParseChannel(t *testing.T) {
	tests := []struct {
		input   string
		want    Channel
		wantErr bool
	}{
		{"", ChannelLuma, false},
		{"luma", ChannelLuma, false},
		{"red", ChannelRed, false},
		{"green", ChannelGreen, false},
		{"blue", ChannelBlue, false},
		{"alpha", "", true},
		{"Red", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseChannel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseChannel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToGrid_Channels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(2, 0, color.RGBA{0, 0, 255, 255})
	img.Set(0, 1, color.RGBA{255, 255, 255, 255})
	img.Set(1, 1, color.RGBA{0, 0, 0, 255})
	img.Set(2, 1, color.RGBA{0, 0, 0, 0}) // fully transparent

	tests := []struct {
		ch   Channel
		want [2][3]float64
	}{
		{ChannelLuma, [2][3]float64{{0.299, 0.587, 0.114}, {1, 0, 0}}},
		{ChannelRed, [2][3]float64{{1, 0, 0}, {1, 0, 0}}},
		{ChannelGreen, [2][3]float64{{0, 1, 0}, {1, 0, 0}}},
		{ChannelBlue, [2][3]float64{{0, 0, 1}, {1, 0, 0}}},
	}

	for _, tt := range tests {
		t.Run(string(tt.ch), func(t *testing.T) {
			g, err := ToGrid(img, tt.ch)
			if err != nil {
				t.Fatalf("ToGrid failed: %v", err)
			}
			if g.Rows() != 2 || g.Cols() != 3 || g.Channels() != 1 {
				t.Fatalf("shape: got %dx%dx%d, want 2x3x1", g.Rows(), g.Cols(), g.Channels())
			}
			for r := 0; r < 2; r++ {
				for c := 0; c < 3; c++ {
					if got := g.At(r, c, 0); math.Abs(got-tt.want[r][c]) > 1e-9 {
						t.Errorf("At(%d,%d): got %v, want %v", r, c, got, tt.want[r][c])
					}
				}
			}
		})
	}
}

func TestToGrid_Unpremultiplies(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 128})

	g, err := ToGrid(img, ChannelRed)
	if err != nil {
		t.Fatalf("ToGrid failed: %v", err)
	}
	if got := g.At(0, 0, 0); math.Abs(got-1) > 1e-9 {
		t.Errorf("half-transparent red: got %v, want 1", got)
	}
}

func TestToGrid_OffsetBounds(t *testing.T) {
	img := createInMemoryImage(6, 6, color.Black)
	img.Set(3, 2, color.White)
	sub := img.SubImage(image.Rect(2, 2, 5, 4))

	g, err := ToGrid(sub, ChannelLuma)
	if err != nil {
		t.Fatalf("ToGrid failed: %v", err)
	}
	if g.Rows() != 2 || g.Cols() != 3 {
		t.Fatalf("shape: got %dx%d, want 2x3", g.Rows(), g.Cols())
	}
	if got := g.At(0, 1, 0); math.Abs(got-1) > 1e-9 {
		t.Errorf("At(0,1): got %v, want 1", got)
	}
}

func TestToGrid_UnknownChannel(t *testing.T) {
	if _, err := ToGrid(createInMemoryImage(2, 2, color.White), Channel("alpha")); err == nil {
		t.Error("expected error for unknown channel")
	}
}

func TestToGrid_EmptyImage(t *testing.T) {
	if _, err := ToGrid(image.NewGray(image.Rect(0, 0, 0, 0)), ChannelLuma); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestMaskImage(t *testing.T) {
	mag, _ := grid.FromRows([][]float64{
		{0, 1, 0},
		{0, 0, 0},
	})
	mask, err := canny.Link(mag, 0.3, 0.7)
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}

	img := MaskImage(mask)
	if img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("bounds: got %v", img.Bounds())
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			want := uint8(0)
			if x == 1 && y == 0 {
				want = 255
			}
			if got := img.GrayAt(x, y).Y; got != want {
				t.Errorf("GrayAt(%d,%d): got %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestGridImage(t *testing.T) {
	g, _ := grid.FromRows([][]float64{
		{0, 2, 4},
		{-1, 1, 3},
	})

	img := GridImage(g)
	want := [2][3]uint8{{0, 128, 255}, {0, 64, 191}}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if got := img.GrayAt(x, y).Y; got != want[y][x] {
				t.Errorf("GrayAt(%d,%d): got %d, want %d", x, y, got, want[y][x])
			}
		}
	}

	zero, _ := grid.New(2, 2, 1)
	for _, v := range GridImage(zero).Pix {
		if v != 0 {
			t.Fatal("all-zero grid should render black")
		}
	}
}
