package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultOverlayColor is used when no overlay color is given.
const DefaultOverlayColor = "#ff0000"

// OverlayResult is the source image with detected edges painted over it,
// encoded as base64 PNG.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	EdgePixels  int    `json:"edge_pixels"`
	Color       string `json:"color"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EdgeOverlay runs Detect and paints every edge pixel of the analyzed region
// in colorHex ("#rrggbb"; empty selects DefaultOverlayColor). The rest of the
// region keeps its original colors.
func EdgeOverlay(img image.Image, opts EdgeOptions, colorHex string) (*OverlayResult, error) {
	if colorHex == "" {
		colorHex = DefaultOverlayColor
	}
	paint, err := colorful.Hex(colorHex)
	if err != nil {
		return nil, fmt.Errorf("invalid overlay color %q: %w", colorHex, err)
	}

	mask, err := Detect(img, opts)
	if err != nil {
		return nil, err
	}

	src, err := cropTo(img, opts.Region)
	if err != nil {
		return nil, err
	}
	canvas := imaging.Clone(src)

	r, g, b := paint.RGB255()
	ink := color.NRGBA{R: r, G: g, B: b, A: 255}
	for _, p := range mask.Points() {
		canvas.SetNRGBA(p.X, p.Y, ink)
	}

	encoded, err := encodePNG(canvas)
	if err != nil {
		return nil, fmt.Errorf("failed to encode overlay image: %w", err)
	}

	return &OverlayResult{
		Width:       canvas.Bounds().Dx(),
		Height:      canvas.Bounds().Dy(),
		EdgePixels:  mask.Count(),
		Color:       paint.Hex(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}
