package lime

import (
	"math"
	"slices"
	"sort"

	"github.com/YuminosukeSato/limego/linear"
	"github.com/YuminosukeSato/limego/metrics"
	"github.com/YuminosukeSato/limego/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// FeatureSelection names the strategy that picks the explanatory features.
type FeatureSelection string

const (
	// SelectionAuto uses forward selection for k <= 6 and highest weights above.
	SelectionAuto FeatureSelection = "auto"
	// SelectionForward greedily adds the feature that most lowers the
	// weighted residual sum of squares.
	SelectionForward FeatureSelection = "forward_selection"
	// SelectionHighestWeights keeps the k largest |coefficients| of a
	// weighted ridge fit on all features.
	SelectionHighestWeights FeatureSelection = "highest_weights"
	// SelectionLassoPath keeps the last support on a weighted lasso path
	// with at most k features.
	SelectionLassoPath FeatureSelection = "lasso_path"

	// SelectionAll is reported when k covers every feature and no selection
	// ran. It is not accepted as a request.
	SelectionAll FeatureSelection = "all"
)

const (
	autoForwardLimit     = 6
	highestWeightsAlpha  = 0.01
	lassoPathAlphaPoints = 100
)

// ParseFeatureSelection validates a selection name. The empty string means auto.
func ParseFeatureSelection(s string) (FeatureSelection, error) {
	switch FeatureSelection(s) {
	case "":
		return SelectionAuto, nil
	case SelectionAuto, SelectionForward, SelectionHighestWeights, SelectionLassoPath:
		return FeatureSelection(s), nil
	default:
		return "", errors.NewConfigurationError("lime.ParseFeatureSelection", "feature_selection", "unknown feature selection", s)
	}
}

// resolve turns auto into a concrete method for k features.
func (m FeatureSelection) resolve(k int) FeatureSelection {
	if m != SelectionAuto && m != "" {
		return m
	}
	if k <= autoForwardLimit {
		return SelectionForward
	}
	return SelectionHighestWeights
}

// selectFeatures returns at most k column indices of Z in ascending order.
// Z is the z-scored neighbourhood, y the black-box predictions and w the
// kernel weights.
func selectFeatures(method FeatureSelection, Z *mat.Dense, y, w []float64, k int) ([]int, FeatureSelection, error) {
	_, p := Z.Dims()
	method = method.resolve(k)

	if k >= p {
		selected := make([]int, p)
		for j := range selected {
			selected[j] = j
		}
		return selected, SelectionAll, nil
	}

	var (
		selected []int
		err      error
	)
	switch method {
	case SelectionForward:
		selected = forwardSelection(Z, y, w, k)
	case SelectionHighestWeights:
		selected, err = highestWeights(Z, y, w, k)
	case SelectionLassoPath:
		selected, err = lassoPathSelection(Z, y, w, k)
	default:
		return nil, method, errors.NewInvalidInputError("lime.Explain", "featureSelection", "unknown feature selection", string(method))
	}
	if err != nil {
		return nil, method, err
	}
	sort.Ints(selected)
	return selected, method, nil
}

// forwardSelection adds one feature per round. Candidates whose fit is
// singular are skipped; ties keep the lowest index.
func forwardSelection(Z *mat.Dense, y, w []float64, k int) []int {
	_, p := Z.Dims()
	chosen := make([]int, 0, k)
	for len(chosen) < k {
		best, bestRSS := -1, math.Inf(1)
		for j := 0; j < p; j++ {
			if slices.Contains(chosen, j) {
				continue
			}
			cand := append(slices.Clone(chosen), j)
			rss, ok := weightedRSS(columns(Z, cand), y, w)
			if ok && rss < bestRSS {
				best, bestRSS = j, rss
			}
		}
		if best < 0 {
			break
		}
		chosen = append(chosen, best)
	}
	return chosen
}

func weightedRSS(X *mat.Dense, y, w []float64) (float64, bool) {
	lr := linear.NewWeightedLinearRegression()
	if err := lr.Fit(X, y, w); err != nil {
		return 0, false
	}
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, false
	}
	mse, err := metrics.WeightedMSE(y, mat.Col(nil, 0, pred), w)
	if err != nil || math.IsNaN(mse) {
		return 0, false
	}
	return mse, true
}

func highestWeights(Z *mat.Dense, y, w []float64, k int) ([]int, error) {
	lr := linear.NewWeightedLinearRegression(linear.WithAlpha(highestWeightsAlpha))
	if err := lr.Fit(Z, y, w); err != nil {
		return nil, err
	}
	coef := lr.Coefficients()
	order := make([]int, len(coef))
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(coef[order[a]]) > math.Abs(coef[order[b]])
	})
	return slices.Clone(order[:k]), nil
}

// lassoPathSelection walks the path from the weakest penalty back towards
// alpha_max and keeps the first support with at most k features.
func lassoPathSelection(Z *mat.Dense, y, w []float64, k int) ([]int, error) {
	path, err := linear.WeightedLassoPath(Z, y, w, linear.WithNAlphas(lassoPathAlphaPoints))
	if err != nil {
		return nil, err
	}
	for i := len(path.Alphas) - 1; i >= 0; i-- {
		if s := path.Support(i); len(s) <= k {
			return s, nil
		}
	}
	return nil, nil
}
