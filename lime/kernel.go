package lime

import (
	"math"

	"github.com/YuminosukeSato/limego/pkg/errors"
)

// KernelFunc converts a distance into a non-negative sample weight.
type KernelFunc func(distance, width float64) float64

// ExponentialKernel returns exp(-d²/width²). It is 1 at d = 0 and
// non-increasing in d; weights below e^-700 are flushed to 0.
func ExponentialKernel(distance, width float64) float64 {
	return errors.StabilizeExp(-(distance * distance) / (width * width))
}

// DefaultKernelWidth is 0.75·√numFeatures.
func DefaultKernelWidth(numFeatures int) float64 {
	return 0.75 * math.Sqrt(float64(numFeatures))
}
