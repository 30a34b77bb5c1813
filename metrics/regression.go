package metrics

import (
	"math"

	"github.com/YuminosukeSato/limego/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// constantTargetTol は重み付き全変動を0とみなす相対しきい値
const constantTargetTol = 1e-20

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred []float64) (float64, error) {
	return WeightedMSE(yTrue, yPred, nil)
}

// WeightedMSE は重み付き平均二乗誤差 Σw(y-ŷ)² / Σw を計算する
// sampleWeight が nil の場合は一様重み
func WeightedMSE(yTrue, yPred, sampleWeight []float64) (float64, error) {
	sumW, err := checkInputs("WeightedMSE", yTrue, yPred, sampleWeight)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := range yTrue {
		diff := yTrue[i] - yPred[i]
		sum += weightAt(sampleWeight, i) * diff * diff
	}
	return sum / sumW, nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// R2Score は決定係数（R²）を計算する
func R2Score(yTrue, yPred []float64) (float64, error) {
	return WeightedR2Score(yTrue, yPred, nil)
}

// WeightedR2Score は重み付き決定係数 1 - Σw(y-ŷ)² / Σw(y-ȳw)² を計算する
//
// 目的変数の重み付き分散が0の場合、R²は定義されない。このとき残差も0なら1、
// そうでなければ0を返し、UndefinedMetricWarningを発生させる（scikit-learnと同じ扱い）。
func WeightedR2Score(yTrue, yPred, sampleWeight []float64) (float64, error) {
	sumW, err := checkInputs("WeightedR2Score", yTrue, yPred, sampleWeight)
	if err != nil {
		return 0, err
	}

	var yMean float64
	for i, y := range yTrue {
		yMean += weightAt(sampleWeight, i) * y
	}
	yMean /= sumW

	// 全変動（TSS）と残差変動（RSS）を計算
	var tss, rss, scale float64
	for i := range yTrue {
		w := weightAt(sampleWeight, i)
		dm := yTrue[i] - yMean
		dr := yTrue[i] - yPred[i]
		tss += w * dm * dm
		rss += w * dr * dr
		scale += w * yTrue[i] * yTrue[i]
	}

	if tss <= constantTargetTol*math.Max(scale, 1) {
		result := 0.0
		if rss <= constantTargetTol*math.Max(scale, 1) {
			result = 1.0
		}
		errors.Warn(errors.NewUndefinedMetricWarning("weighted_r2", "zero weighted variance in yTrue", result))
		return result, nil
	}

	return 1 - rss/tss, nil
}

func weightAt(w []float64, i int) float64 {
	if w == nil {
		return 1
	}
	return w[i]
}

func checkInputs(op string, yTrue, yPred, sampleWeight []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError(op, n, len(yPred), 0)
	}
	if sampleWeight == nil {
		return float64(n), nil
	}
	if len(sampleWeight) != n {
		return 0, errors.NewDimensionError(op, n, len(sampleWeight), 0)
	}
	for _, w := range sampleWeight {
		if w < 0 || math.IsNaN(w) {
			return 0, errors.NewValueError(op, "sample weights must be non-negative")
		}
	}
	sumW := floats.Sum(sampleWeight)
	if sumW == 0 {
		return 0, errors.NewValueError(op, "sample weights sum to zero")
	}
	return sumW, nil
}
