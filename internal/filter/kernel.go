package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

var (
	// ErrInvalidKernel is returned for kernels with empty or even dimensions.
	ErrInvalidKernel = errors.New("kernel dimensions must be positive and odd")

	// ErrInvalidCovariance is returned when a Gaussian covariance is not
	// positive definite.
	ErrInvalidCovariance = errors.New("covariance must be positive definite")
)

// GaussianKernel builds a normalized smoothing kernel of the given shape.
//
// The kernel samples a zero-mean bivariate normal density with diagonal
// covariance diag(covariance[0], covariance[1]) at integer offsets from the
// kernel center. covariance[0] is the variance along rows (vertical) and
// covariance[1] the variance along columns (horizontal). The values are scaled
// to sum to 1, so smoothing preserves mean intensity.
//
// Parameters:
//   - rows, cols: Kernel height and width. Both must be positive and odd so
//     that the kernel has a center cell.
//   - covariance: Per-axis variances. Both must be strictly positive.
//
// A 1x1 kernel is always the identity [1].
func GaussianKernel(rows, cols int, covariance [2]float64) (*convolution.Kernel, error) {
	if err := checkKernelShape(rows, cols); err != nil {
		return nil, err
	}
	for _, v := range covariance {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: got %v", ErrInvalidCovariance, covariance)
		}
	}

	sigma := mat.NewSymDense(2, []float64{
		covariance[0], 0,
		0, covariance[1],
	})
	normal, ok := distmv.NewNormal([]float64{0, 0}, sigma, nil)
	if !ok {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidCovariance, covariance)
	}

	k := convolution.NewKernel(cols, rows)
	anchorY, anchorX := rows/2, cols/2
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			k.Matrix[y*cols+x] = normal.Prob([]float64{float64(y - anchorY), float64(x - anchorX)})
		}
	}

	sum := floats.Sum(k.Matrix)
	if sum <= 0 || math.IsNaN(sum) {
		return nil, fmt.Errorf("%w: kernel underflowed for %v", ErrInvalidCovariance, covariance)
	}
	for i := range k.Matrix {
		k.Matrix[i] /= sum
	}
	return k, nil
}

// IdentityKernel returns the 1x1 kernel [1]. Convolving with it leaves a grid
// unchanged.
func IdentityKernel() *convolution.Kernel {
	k := convolution.NewKernel(1, 1)
	k.Matrix[0] = 1
	return k
}

func checkKernelShape(rows, cols int) error {
	if rows <= 0 || cols <= 0 || rows%2 == 0 || cols%2 == 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidKernel, rows, cols)
	}
	return nil
}
