package canny

import (
	"errors"
	"fmt"

	"github.com/anthonynsimon/bild/convolution"

	"github.com/ironsheep/canny-tools-mcp/internal/filter"
	"github.com/ironsheep/canny-tools-mcp/internal/grid"
)

// ErrChannelDimensionMismatch is returned when a grid with more than one
// channel is given to the detector.
var ErrChannelDimensionMismatch = errors.New("edge detection requires a single-channel image")

// Default detector settings.
const (
	DefaultLowerThreshold = 0.3
	DefaultUpperThreshold = 0.7
	DefaultBlurSize       = 5
	DefaultBlurVariance   = 2.0
)

// Parameters configures a Canny run. Build one with NewBuilder; the zero value
// smooths with the default kernel and uses thresholds of 0.
type Parameters struct {
	kernel       *convolution.Kernel
	lower, upper float64
}

// DefaultParameters returns NewBuilder().Build().
func DefaultParameters() Parameters {
	return NewBuilder().Build()
}

// Kernel returns a copy of the smoothing kernel.
func (p Parameters) Kernel() *convolution.Kernel {
	if p.kernel == nil {
		return defaultKernel()
	}
	return copyKernel(p.kernel)
}

// Lower returns the lower hysteresis threshold.
func (p Parameters) Lower() float64 { return p.lower }

// Upper returns the upper hysteresis threshold. Upper is never below Lower.
func (p Parameters) Upper() float64 { return p.upper }

// Builder collects optional overrides for Parameters. Each method returns an
// updated copy, so a Builder can be shared as a template.
type Builder struct {
	kernel       *convolution.Kernel
	lower, upper *float64
}

// NewBuilder returns a Builder with nothing set.
func NewBuilder() Builder {
	return Builder{}
}

// LowerThreshold sets the lower hysteresis threshold.
func (b Builder) LowerThreshold(t float64) Builder {
	b.lower = &t
	return b
}

// UpperThreshold sets the upper hysteresis threshold.
func (b Builder) UpperThreshold(t float64) Builder {
	b.upper = &t
	return b
}

// Blur sets a Gaussian smoothing kernel of the given shape and per-axis
// covariance (see filter.GaussianKernel).
//
// If the kernel cannot be built, for example because the shape is even or a
// variance is not positive, the builder is returned unchanged and keeps
// whatever kernel it had before. Callers that need to know should validate
// with filter.GaussianKernel first.
func (b Builder) Blur(rows, cols int, covariance [2]float64) Builder {
	k, err := filter.GaussianKernel(rows, cols, covariance)
	if err != nil {
		return b
	}
	b.kernel = k
	return b
}

// Kernel sets an explicit smoothing kernel. The kernel is copied. A kernel
// that filter.Convolve rejects makes Apply fail.
func (b Builder) Kernel(k *convolution.Kernel) Builder {
	if k != nil {
		b.kernel = copyKernel(k)
	}
	return b
}

// Build fills unset fields with defaults and returns the Parameters.
// Thresholds given in the wrong order are swapped.
func (b Builder) Build() Parameters {
	p := Parameters{
		kernel: b.kernel,
		lower:  DefaultLowerThreshold,
		upper:  DefaultUpperThreshold,
	}
	if p.kernel == nil {
		p.kernel = defaultKernel()
	} else {
		p.kernel = copyKernel(p.kernel)
	}
	if b.lower != nil {
		p.lower = *b.lower
	}
	if b.upper != nil {
		p.upper = *b.upper
	}
	if p.upper < p.lower {
		p.lower, p.upper = p.upper, p.lower
	}
	return p
}

// Apply runs the Canny edge detector on a single-channel intensity grid and
// returns a new edge mask. img is not modified.
//
// Returns ErrChannelDimensionMismatch (wrapped) without doing any work when
// img has more than one channel. Smoothing or gradient failures are returned
// wrapped; there are no partial results.
func Apply(img *grid.Grid, params Parameters) (*Mask, error) {
	if img.Channels() > 1 {
		return nil, fmt.Errorf("%w: got %d channels", ErrChannelDimensionMismatch, img.Channels())
	}

	kernel := params.kernel
	if kernel == nil {
		kernel = defaultKernel()
	}

	blurred, err := filter.Convolve(img, kernel)
	if err != nil {
		return nil, fmt.Errorf("failed to smooth image: %w", err)
	}

	magnitude, orientation, err := filter.Gradient(blurred)
	if err != nil {
		return nil, fmt.Errorf("failed to compute gradient: %w", err)
	}

	suppressed, err := Suppress(magnitude, orientation)
	if err != nil {
		return nil, fmt.Errorf("failed to suppress non-maxima: %w", err)
	}

	return Link(suppressed, params.lower, params.upper)
}

// defaultKernel builds the 5x5 Gaussian with covariance [2.0, 2.0].
func defaultKernel() *convolution.Kernel {
	k, err := filter.GaussianKernel(DefaultBlurSize, DefaultBlurSize, [2]float64{DefaultBlurVariance, DefaultBlurVariance})
	if err != nil {
		panic(fmt.Sprintf("canny: default kernel: %v", err))
	}
	return k
}

func copyKernel(k *convolution.Kernel) *convolution.Kernel {
	return &convolution.Kernel{
		Matrix: append([]float64(nil), k.Matrix...),
		Width:  k.Width,
		Height: k.Height,
	}
}
