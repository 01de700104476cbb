package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/canny-tools-mcp/internal/canny"
	"github.com/ironsheep/canny-tools-mcp/internal/filter"
)

// EdgeOptions selects what part of an image is analyzed and how.
type EdgeOptions struct {
	// Params configures the detector. The zero value uses the default kernel
	// with thresholds of 0, so callers normally pass canny.DefaultParameters()
	// or a value built from configuration.
	Params canny.Parameters

	// Channel is the intensity the image is reduced to. Empty means luma.
	Channel Channel

	// Region restricts detection to part of the image. Nil means the whole
	// image.
	Region *Region
}

// EdgeDetectResult is a binary edge image encoded as base64 PNG, white on
// black.
type EdgeDetectResult struct {
	// Width and Height of the output image, equal to the analyzed region.
	Width  int `json:"width"`
	Height int `json:"height"`

	// EdgePixels is the number of edge pixels found.
	EdgePixels int `json:"edge_pixels"`

	// EdgeDensity is EdgePixels divided by the number of pixels analyzed.
	EdgeDensity float64 `json:"edge_density"`

	// ThresholdLow and ThresholdHigh are the thresholds actually used, after
	// any reordering.
	ThresholdLow  float64 `json:"threshold_low"`
	ThresholdHigh float64 `json:"threshold_high"`

	// Region is the analyzed region, if one was given.
	Region *Region `json:"region,omitempty"`

	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Detect runs the Canny detector over img as described by opts and returns
// the edge mask. Mask coordinates are relative to the region's top-left
// corner.
func Detect(img image.Image, opts EdgeOptions) (*canny.Mask, error) {
	src, err := cropTo(img, opts.Region)
	if err != nil {
		return nil, err
	}

	intensity, err := ToGrid(src, opts.Channel)
	if err != nil {
		return nil, err
	}

	mask, err := canny.Apply(intensity, opts.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to detect edges: %w", err)
	}
	return mask, nil
}

// EdgeDetect runs Detect and encodes the mask as a PNG.
//
// Thresholds in opts.Params are compared against the Sobel gradient magnitude
// of the smoothed intensity. With intensities in [0, 1] a full-contrast step
// reaches about 2.2 after the default blur, so thresholds in [0, 1] pick up
// anything from faint to moderately strong edges.
func EdgeDetect(img image.Image, opts EdgeOptions) (*EdgeDetectResult, error) {
	mask, err := Detect(img, opts)
	if err != nil {
		return nil, err
	}

	encoded, err := encodePNG(MaskImage(mask))
	if err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}

	count := mask.Count()
	return &EdgeDetectResult{
		Width:         mask.Cols(),
		Height:        mask.Rows(),
		EdgePixels:    count,
		EdgeDensity:   float64(count) / float64(mask.Rows()*mask.Cols()),
		ThresholdLow:  opts.Params.Lower(),
		ThresholdHigh: opts.Params.Upper(),
		Region:        opts.Region,
		ImageBase64:   encoded,
		MimeType:      "image/png",
	}, nil
}

// GradientResult is a grayscale preview of the smoothed gradient magnitude,
// encoded as base64 PNG.
type GradientResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// MaxMagnitude is the largest gradient magnitude, which the preview maps
	// to white. Useful for choosing thresholds.
	MaxMagnitude float64 `json:"max_magnitude"`

	// MeanMagnitude is the average gradient magnitude.
	MeanMagnitude float64 `json:"mean_magnitude"`

	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Gradient smooths img with the kernel in opts.Params and renders the Sobel
// gradient magnitude before suppression and thresholding.
func Gradient(img image.Image, opts EdgeOptions) (*GradientResult, error) {
	src, err := cropTo(img, opts.Region)
	if err != nil {
		return nil, err
	}
	intensity, err := ToGrid(src, opts.Channel)
	if err != nil {
		return nil, err
	}

	blurred, err := filter.Convolve(intensity, opts.Params.Kernel())
	if err != nil {
		return nil, fmt.Errorf("failed to smooth image: %w", err)
	}
	magnitude, _, err := filter.Gradient(blurred)
	if err != nil {
		return nil, fmt.Errorf("failed to compute gradient: %w", err)
	}

	encoded, err := encodePNG(GridImage(magnitude))
	if err != nil {
		return nil, fmt.Errorf("failed to encode gradient image: %w", err)
	}

	_, hi := magnitude.Range(0)
	return &GradientResult{
		Width:         magnitude.Cols(),
		Height:        magnitude.Rows(),
		MaxMagnitude:  hi,
		MeanMagnitude: magnitude.Mean(0),
		ImageBase64:   encoded,
		MimeType:      "image/png",
	}, nil
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
