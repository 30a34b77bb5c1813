package linear

import (
	"math"

	"github.com/YuminosukeSato/limego/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LassoPath は L1 正則化パス上の係数列
//
// Alphas は降順。Coefs[k] は Alphas[k] における係数（長さ = 特徴量数）。
type LassoPath struct {
	Alphas []float64
	Coefs  [][]float64
}

// Support は Alphas[k] における非ゼロ係数のインデックスを返す
func (p *LassoPath) Support(k int) []int {
	var idx []int
	for j, c := range p.Coefs[k] {
		if c != 0 {
			idx = append(idx, j)
		}
	}
	return idx
}

// WeightedLassoPath は重み付き座標降下法で Lasso の正則化パスを計算する
//
// 目的関数（各 alpha について）:
//
//	1/(2Σw) Σ w_i (yc_i - xc_iᵀβ)² + alpha ||β||₁
//
// xc, yc は重み付き平均で中心化したデータ。alpha は alpha_max から
// alpha_max·eps まで幾何級数的に減少し、前の解をウォームスタートに使う。
func WeightedLassoPath(X mat.Matrix, y, sampleWeight []float64, opts ...LassoOption) (*LassoPath, error) {
	const op = "WeightedLassoPath"

	cfg := lassoConfig{nAlphas: 100, eps: 1e-3, maxIter: 1000, tol: 1e-6}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.nAlphas < 1 || cfg.eps <= 0 || cfg.eps >= 1 || cfg.maxIter < 1 || cfg.tol <= 0 {
		return nil, errors.NewValueError(op, "invalid lasso path configuration")
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	if len(y) != r {
		return nil, errors.NewDimensionError(op, r, len(y), 0)
	}
	w, err := normalizeWeights(op, sampleWeight, r)
	if err != nil {
		return nil, err
	}
	sumW := floats.Sum(w)
	if sumW == 0 {
		return nil, errors.NewNumericalError(op, "all sample weights are zero", errors.ErrUnderdetermined)
	}

	// 正規化した重み
	wn := make([]float64, r)
	floats.ScaleTo(wn, 1/sumW, w)

	// 列ごとに中心化（列優先で保持）
	cols := make([][]float64, c)
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, X)
		mean := floats.Dot(wn, col)
		floats.AddConst(-mean, col)
		cols[j] = col
	}
	yMean := floats.Dot(wn, y)
	resid := make([]float64, r)
	copy(resid, y)
	floats.AddConst(-yMean, resid)

	// 各列の重み付き二乗和と alpha_max
	norms := make([]float64, c)
	alphaMax := 0.0
	for j, col := range cols {
		var nrm, corr float64
		for i, v := range col {
			nrm += wn[i] * v * v
			corr += wn[i] * v * resid[i]
		}
		norms[j] = nrm
		alphaMax = math.Max(alphaMax, math.Abs(corr))
	}

	path := &LassoPath{
		Alphas: make([]float64, cfg.nAlphas),
		Coefs:  make([][]float64, cfg.nAlphas),
	}
	if alphaMax == 0 {
		// 目的変数が定数、または全特徴量が定数
		for k := range path.Alphas {
			path.Coefs[k] = make([]float64, c)
		}
		return path, nil
	}

	if cfg.nAlphas == 1 {
		path.Alphas[0] = alphaMax
	} else {
		floats.LogSpan(path.Alphas, alphaMax, alphaMax*cfg.eps)
	}

	beta := make([]float64, c)
	for k, alpha := range path.Alphas {
		converged := false
		for iter := 0; iter < cfg.maxIter; iter++ {
			maxDelta := 0.0
			for j, col := range cols {
				if norms[j] == 0 {
					continue
				}
				old := beta[j]
				rho := 0.0
				for i, v := range col {
					rho += wn[i] * v * resid[i]
				}
				rho += norms[j] * old
				next := softThreshold(rho, alpha) / norms[j]
				if next != old {
					delta := next - old
					floats.AddScaled(resid, -delta, col)
					beta[j] = next
					maxDelta = math.Max(maxDelta, math.Abs(delta))
				}
			}
			if maxDelta < cfg.tol {
				converged = true
				break
			}
		}
		if !converged {
			errors.Warn(errors.NewConvergenceWarning("lasso coordinate descent", cfg.maxIter,
				"increase max_iter or tol"))
		}
		path.Coefs[k] = append([]float64(nil), beta...)
	}
	return path, nil
}

func softThreshold(x, lambda float64) float64 {
	switch {
	case x > lambda:
		return x - lambda
	case x < -lambda:
		return x + lambda
	default:
		return 0
	}
}
