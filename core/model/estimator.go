package model

import "gonum.org/v1/gonum/mat"

// WeightedFitter は重み付きサンプルで学習可能なモデルのインターフェース
// sampleWeight が nil の場合は全サンプルの重みを1とする
type WeightedFitter interface {
	Fit(X mat.Matrix, y []float64, sampleWeight []float64) error
}

// Predictor は予測可能なモデルのインターフェース
// 説明器はこのインターフェースを満たす任意のモデルをブラックボックスとして扱える
type Predictor interface {
	// Predict は入力データに対する予測を行う（n×1 の行列を返す）
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// LinearModel は線形モデルのインターフェース
type LinearModel interface {
	// Coefficients は学習された重み（係数）を返す
	Coefficients() []float64
	// InterceptValue は学習された切片を返す
	InterceptValue() float64
	// Score は重み付き決定係数（R²）を計算する
	Score(X mat.Matrix, y []float64, sampleWeight []float64) (float64, error)
}
