// Package canny implements the Canny edge detector over single-channel grids.
//
// The detector runs four stages:
//
//  1. Smoothing: the input is convolved with a kernel, by default a 5x5
//     Gaussian with covariance [2.0, 2.0].
//
//  2. Gradient: Sobel derivatives give a magnitude and an orientation per pixel.
//
//  3. Non-maximum suppression: each pixel is compared against the two
//     neighbors along its gradient direction and zeroed unless neither is
//     strictly larger. Orientations are folded into [0°, 180°) and bucketed
//     into horizontal, diagonal, vertical and anti-diagonal comparisons.
//
//  4. Hysteresis linking: pixels at or above the upper threshold are strong
//     edges. Starting from each strong edge in raster order, a depth-first
//     search promotes connected pixels whose magnitude exceeds the lower
//     threshold. Weak pixels that cannot be reached from a strong edge are
//     discarded.
//
// # Thresholds
//
// Thresholds are compared against the Sobel gradient magnitude. For
// intensities normalized to [0, 1], a black-to-white step has magnitude 4
// before smoothing and about 2.2 after the default blur, so the defaults
// (0.3, 0.7) treat steps of roughly a third of full contrast as strong edges.
//
// # Example
//
//	params := canny.NewBuilder().
//	    LowerThreshold(0.1).
//	    UpperThreshold(0.4).
//	    Blur(5, 5, [2]float64{1.4, 1.4}).
//	    Build()
//	mask, err := canny.Apply(intensity, params)
//	if errors.Is(err, canny.ErrChannelDimensionMismatch) {
//	    // convert to a single channel first
//	}
//
// # Thread Safety
//
// Apply, Suppress and Link hold no shared state and may be called
// concurrently. Parameters is immutable once built.
package canny
