package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/canny-tools-mcp/internal/canny"
	"github.com/ironsheep/canny-tools-mcp/internal/grid"
)

// Channel selects which intensity an image is reduced to before edge
// detection.
type Channel string

// Supported channels.
const (
	ChannelLuma  Channel = "luma"
	ChannelRed   Channel = "red"
	ChannelGreen Channel = "green"
	ChannelBlue  Channel = "blue"
)

// ParseChannel validates a channel name. The empty string selects luma.
func ParseChannel(name string) (Channel, error) {
	switch ch := Channel(name); ch {
	case "":
		return ChannelLuma, nil
	case ChannelLuma, ChannelRed, ChannelGreen, ChannelBlue:
		return ch, nil
	default:
		return "", fmt.Errorf("unknown channel %q (want luma, red, green or blue)", name)
	}
}

// ToGrid reduces img to a single-channel grid with values in [0, 1].
//
// Row 0 of the grid is the top row of img.Bounds() and column 0 its leftmost
// pixel. Luma uses the ITU-R BT.601 weights 0.299R + 0.587G + 0.114B on
// un-premultiplied components; fully transparent pixels read as black.
func ToGrid(img image.Image, ch Channel) (*grid.Grid, error) {
	var pick func(c colorful.Color) float64
	switch ch {
	case ChannelLuma, "":
		pick = func(c colorful.Color) float64 { return 0.299*c.R + 0.587*c.G + 0.114*c.B }
	case ChannelRed:
		pick = func(c colorful.Color) float64 { return c.R }
	case ChannelGreen:
		pick = func(c colorful.Color) float64 { return c.G }
	case ChannelBlue:
		pick = func(c colorful.Color) float64 { return c.B }
	default:
		return nil, fmt.Errorf("unknown channel %q", ch)
	}

	bounds := img.Bounds()
	g, err := grid.New(bounds.Dy(), bounds.Dx(), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			c, ok := colorful.MakeColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			if !ok {
				continue
			}
			g.Set(y, x, 0, pick(c))
		}
	}
	return g, nil
}

// MaskImage renders an edge mask as a grayscale image with edges in white
// (255) and everything else black.
func MaskImage(mask *canny.Mask) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, mask.Cols(), mask.Rows()))
	for r := 0; r < mask.Rows(); r++ {
		for c := 0; c < mask.Cols(); c++ {
			if mask.At(r, c) {
				out.SetGray(c, r, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// GridImage renders channel 0 of g as a grayscale image, stretched so that
// the largest value maps to 255. A grid whose values are all zero renders
// black.
func GridImage(g *grid.Grid) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, g.Cols(), g.Rows()))
	_, hi := g.Range(0)
	if !(hi > 0) || math.IsInf(hi, 0) {
		return out
	}

	row := make([]float64, g.Cols())
	for r := 0; r < g.Rows(); r++ {
		for c := range row {
			row[c] = math.Max(g.At(r, c, 0), 0)
		}
		floats.Scale(255/hi, row)
		for c, v := range row {
			out.SetGray(c, r, color.Gray{Y: uint8(math.Round(v))})
		}
	}
	return out
}
