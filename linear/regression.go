package linear

import (
	"math"

	"github.com/YuminosukeSato/limego/core/model"
	"github.com/YuminosukeSato/limego/core/parallel"
	"github.com/YuminosukeSato/limego/metrics"
	"github.com/YuminosukeSato/limego/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	modelName = "WeightedLinearRegression"

	// 並列処理の閾値（この値以下の行数では逐次処理を使用）
	parallelThreshold = 1000

	defaultConditionLimit = 1e12
)

// WeightedLinearRegression は重み付き最小二乗法（オプションでリッジ正則化）による線形回帰モデル
// 局所代理モデル（local surrogate）の当てはめに使う
type WeightedLinearRegression struct {
	model.BaseEstimator
	Weights   *mat.VecDense // 重み（係数）
	Intercept float64       // 切片
	NFeatures int           // 特徴量の数

	fitIntercept bool
	alpha        float64
	condLimit    float64
}

// NewWeightedLinearRegression は新しい重み付き線形回帰モデルを作成する
func NewWeightedLinearRegression(opts ...Option) *WeightedLinearRegression {
	lr := &WeightedLinearRegression{
		fitIntercept: true,
		condLimit:    defaultConditionLimit,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit は重み付き正規方程式 (Xcᵀ W Xc + αI) β = Xcᵀ W yc を解いて学習する
//
// Xc, yc は重み付き平均で中心化したデータ。切片は ȳw - x̄wᵀβ で復元するため
// 正則化されない。sampleWeight が nil の場合は一様重み。
//
// 重みが正のサンプル数が係数の数より少ない場合、または正規行列が特異な場合は
// NumericalError を返す。
func (lr *WeightedLinearRegression) Fit(X mat.Matrix, y []float64, sampleWeight []float64) error {
	const op = "WeightedLinearRegression.Fit"

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}
	if len(y) != r {
		return errors.NewDimensionError(op, r, len(y), 0)
	}
	w, err := normalizeWeights(op, sampleWeight, r)
	if err != nil {
		return err
	}
	if lr.alpha < 0 || math.IsNaN(lr.alpha) {
		return errors.NewValueError(op, "alpha must be non-negative")
	}

	nCoef := c
	if lr.fitIntercept {
		nCoef++
	}
	effective := 0
	var sumW float64
	for _, wi := range w {
		if wi > 0 {
			effective++
		}
		sumW += wi
	}
	if effective == 0 {
		return errors.NewNumericalError(op, "all sample weights are zero", errors.ErrUnderdetermined)
	}
	if lr.alpha == 0 && effective < nCoef {
		return errors.NewNumericalError(op, "fewer samples with non-zero weight than coefficients", errors.ErrUnderdetermined)
	}

	// 重み付き平均
	xMean := make([]float64, c)
	var yMean float64
	if lr.fitIntercept {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				xMean[j] += w[i] * X.At(i, j)
			}
			yMean += w[i] * y[i]
		}
		for j := range xMean {
			xMean[j] /= sumW
		}
		yMean /= sumW
	}

	// D = sqrt(W)·Xc, t = sqrt(W)·yc
	D := mat.NewDense(r, c, nil)
	t := mat.NewVecDense(r, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			sw := math.Sqrt(w[i])
			row := D.RawRowView(i)
			for j := 0; j < c; j++ {
				row[j] = sw * (X.At(i, j) - xMean[j])
			}
			t.SetVec(i, sw*(y[i]-yMean))
		}
	})

	var A mat.SymDense
	A.SymOuterK(1, D.T())
	if lr.alpha > 0 {
		for j := 0; j < c; j++ {
			A.SetSym(j, j, A.At(j, j)+lr.alpha)
		}
	}
	var b mat.VecDense
	b.MulVec(D.T(), t)

	// 列の尺度をそろえる (Jacobi スケーリング)。条件数は尺度の違いではなく
	// 列間の共線性だけを反映する
	scale := make([]float64, c)
	for j := range scale {
		scale[j] = math.Sqrt(A.At(j, j))
		if scale[j] == 0 {
			scale[j] = 1
		}
	}
	for i := 0; i < c; i++ {
		for j := i; j < c; j++ {
			A.SetSym(i, j, A.At(i, j)/(scale[i]*scale[j]))
		}
		b.SetVec(i, b.AtVec(i)/scale[i])
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(&A); !ok {
		return errors.NewNumericalError(op, "weighted normal matrix is not positive definite", errors.ErrSingularMatrix)
	}
	if cond := chol.Cond(); cond > lr.condLimit || math.IsNaN(cond) {
		return errors.NewNumericalError(op, "weighted normal matrix is ill-conditioned", errors.ErrSingularMatrix)
	}

	beta := mat.NewVecDense(c, nil)
	if err := chol.SolveVecTo(beta, &b); err != nil {
		return errors.NewNumericalError(op, "cholesky solve failed", errors.Wrap(errors.ErrSingularMatrix, err.Error()))
	}
	for j := range scale {
		beta.SetVec(j, beta.AtVec(j)/scale[j])
	}
	if err := errors.CheckNumericalStability(op, beta.RawVector().Data); err != nil {
		return errors.NewNumericalError(op, "non-finite coefficients", err)
	}

	intercept := 0.0
	if lr.fitIntercept {
		intercept = yMean - mat.Dot(beta, mat.NewVecDense(c, xMean))
	}

	lr.Weights = beta
	lr.Intercept = intercept
	lr.NFeatures = c
	lr.SetFitted()
	return nil
}

// normalizeWeights は nil を一様重みに展開し、負の値・NaNを拒否する
func normalizeWeights(op string, sampleWeight []float64, n int) ([]float64, error) {
	if sampleWeight == nil {
		w := make([]float64, n)
		for i := range w {
			w[i] = 1
		}
		return w, nil
	}
	if len(sampleWeight) != n {
		return nil, errors.NewDimensionError(op, n, len(sampleWeight), 0)
	}
	for _, wi := range sampleWeight {
		if wi < 0 || math.IsNaN(wi) || math.IsInf(wi, 0) {
			return nil, errors.NewValueError(op, "sample weights must be finite and non-negative")
		}
	}
	return sampleWeight, nil
}

// Predict は入力データに対する予測を行う
func (lr *WeightedLinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError(modelName, "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError(modelName+".Predict", lr.NFeatures, c, 1)
	}

	// 予測: y = X * weights + intercept
	predictions := mat.NewVecDense(r, nil)
	predictions.MulVec(X, lr.Weights)
	for i := 0; i < r; i++ {
		predictions.SetVec(i, predictions.AtVec(i)+lr.Intercept)
	}
	return predictions, nil
}

// PredictRow は1サンプル分の予測を返す。長さは NFeatures であること
func (lr *WeightedLinearRegression) PredictRow(x []float64) float64 {
	pred := lr.Intercept
	for j, v := range x {
		pred += v * lr.Weights.AtVec(j)
	}
	return pred
}

// Coefficients は学習された重み（係数）を返す
func (lr *WeightedLinearRegression) Coefficients() []float64 {
	if lr.Weights == nil {
		return nil
	}
	out := make([]float64, lr.Weights.Len())
	copy(out, lr.Weights.RawVector().Data)
	return out
}

// InterceptValue は学習された切片を返す
func (lr *WeightedLinearRegression) InterceptValue() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// Score はモデルの重み付き決定係数（R²）を計算する
func (lr *WeightedLinearRegression) Score(X mat.Matrix, y []float64, sampleWeight []float64) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	yPred := mat.Col(nil, 0, pred)
	return metrics.WeightedR2Score(y, yPred, sampleWeight)
}

// ExportWeights はモデルの重みを ModelWeights としてエクスポートする
func (lr *WeightedLinearRegression) ExportWeights() (*model.ModelWeights, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError(modelName, "ExportWeights")
	}
	return &model.ModelWeights{
		ModelType:    modelName,
		Version:      "1.0",
		Coefficients: lr.Coefficients(),
		Intercept:    lr.Intercept,
		Hyperparameters: map[string]interface{}{
			"fit_intercept": lr.fitIntercept,
			"alpha":         lr.alpha,
		},
		IsFitted: true,
	}, nil
}

// ImportWeights は ModelWeights から学習済みモデルを復元する
func (lr *WeightedLinearRegression) ImportWeights(mw *model.ModelWeights) error {
	if err := mw.Validate(); err != nil {
		return err
	}
	if !mw.IsFitted {
		return errors.NewValueError(modelName+".ImportWeights", "weights are not fitted")
	}
	lr.Weights = mat.NewVecDense(len(mw.Coefficients), append([]float64(nil), mw.Coefficients...))
	lr.Intercept = mw.Intercept
	lr.NFeatures = len(mw.Coefficients)
	if v, ok := mw.Hyperparameters["alpha"].(float64); ok {
		lr.alpha = v
	}
	if v, ok := mw.Hyperparameters["fit_intercept"].(bool); ok {
		lr.fitIntercept = v
	}
	lr.SetFitted()
	return nil
}
