package lime

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// sampleInto fills dst with the neighbourhood of query. Row 0 is the query
// itself; every other value of feature j is drawn from
// N(center[j], (scale·std[j])²). Values are drawn row by row from rng, so a
// fixed source yields the same matrix.
func sampleInto(dst *mat.Dense, rng *rand.Rand, query, center, std []float64, scale float64) {
	n, _ := dst.Dims()
	copy(dst.RawRowView(0), query)
	for i := 1; i < n; i++ {
		row := dst.RawRowView(i)
		for j := range row {
			row[j] = center[j] + rng.NormFloat64()*scale*std[j]
		}
	}
}

// columns copies the listed columns of X into a new matrix.
func columns(X mat.Matrix, idx []int) *mat.Dense {
	r, _ := X.Dims()
	out := mat.NewDense(r, len(idx), nil)
	for i := 0; i < r; i++ {
		row := out.RawRowView(i)
		for k, j := range idx {
			row[k] = X.At(i, j)
		}
	}
	return out
}
