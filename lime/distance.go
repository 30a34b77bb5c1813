package lime

import (
	"math"
	"strings"

	"github.com/YuminosukeSato/limego/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// DistanceFunc measures how far sample a is from the query b. Both vectors
// are z-scored unless distance normalization was disabled.
type DistanceFunc func(a, b []float64) float64

// Euclidean is the L2 distance.
func Euclidean(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// Manhattan is the L1 distance.
func Manhattan(a, b []float64) float64 {
	return floats.Distance(a, b, 1)
}

// Cosine is 1 - cos(a, b). Two zero vectors are at distance 0, a zero vector
// and a non-zero one at distance 1.
func Cosine(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	switch {
	case na == 0 && nb == 0:
		return 0
	case na == 0 || nb == 0:
		return 1
	}
	sim := floats.Dot(a, b) / (na * nb)
	return math.Max(0, 1-sim)
}

// DistanceByName resolves "euclidean", "manhattan" or "cosine".
func DistanceByName(name string) (DistanceFunc, error) {
	switch strings.ToLower(name) {
	case "", "euclidean":
		return Euclidean, nil
	case "manhattan":
		return Manhattan, nil
	case "cosine":
		return Cosine, nil
	default:
		return nil, errors.NewConfigurationError("lime.DistanceByName", "distance", "unknown distance", name)
	}
}
