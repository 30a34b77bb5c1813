package preprocessing

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/limego/core/model"
	"github.com/YuminosukeSato/limego/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// 列の最大絶対値に対する比がこの値以下の標準偏差は分散0とみなす
const zeroVarianceTol = 1e-10

// StandardScaler はscikit-learn互換の標準化スケーラー
// データを平均0、標準偏差1に変換する。標準偏差は母分散（n で割る）から求める。
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差（分散0の特徴量は1）
	Scale []float64

	// ZeroVariance は分散0と判定された特徴量のインデックス
	ZeroVariance []int

	// NFeatures は特徴量の数
	NFeatures int

	// NSamples は学習に使ったサンプル数
	NSamples int

	// WithMean は平均を引くかどうか (デフォルト: true)
	WithMean bool

	// WithStd は標準偏差で割るかどうか (デフォルト: true)
	WithStd bool
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	err := scaler.Fit(X)
//	XScaled, err := scaler.Transform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は訓練データから統計情報（平均、標準偏差）を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "StandardScaler.Fit")
	}

	s.Reset()
	s.NFeatures = c
	s.NSamples = r
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	s.ZeroVariance = s.ZeroVariance[:0]

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		if err := errors.CheckNumericalStability("StandardScaler.Fit", col); err != nil {
			return err
		}
		mean, variance := stat.PopMeanVariance(col, nil)
		std := math.Sqrt(variance)

		if s.WithMean {
			s.Mean[j] = mean
		}

		s.Scale[j] = 1.0
		if std <= zeroVarianceTol*floats.Norm(col, math.Inf(1)) {
			// 標準偏差が0に近い場合は1に設定（ゼロ除算を避ける）
			s.ZeroVariance = append(s.ZeroVariance, j)
		} else if s.WithStd {
			s.Scale[j] = std
		}
	}

	s.SetFitted()
	return nil
}

// HasZeroVariance は分散0の特徴量が存在するかどうかを返す
func (s *StandardScaler) HasZeroVariance() bool {
	return len(s.ZeroVariance) > 0
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		row := result.RawRowView(i)
		for j := 0; j < c; j++ {
			row[j] = (X.At(i, j) - s.Mean[j]) / s.Scale[j]
		}
	}
	return result, nil
}

// TransformRow は1行分を dst に標準化する。dst が nil の場合は新しく確保する
func (s *StandardScaler) TransformRow(dst, x []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(x))
	}
	for j, v := range x {
		dst[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return dst
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		row := result.RawRowView(i)
		for j := 0; j < c; j++ {
			row[j] = X.At(i, j)*s.Scale[j] + s.Mean[j]
		}
	}
	return result, nil
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}
