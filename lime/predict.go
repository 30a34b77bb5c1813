package lime

import (
	"context"

	"github.com/YuminosukeSato/limego/core/model"
	"github.com/YuminosukeSato/limego/core/parallel"
	"github.com/YuminosukeSato/limego/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// PredictFunc maps one feature vector to a scalar prediction. It must not
// retain or modify x.
type PredictFunc func(x []float64) float64

// BatchPredictFunc predicts every row of X. It must return exactly one value
// per row and must neither modify X nor keep a reference to it after
// returning; the explainer reuses the storage.
type BatchPredictFunc func(ctx context.Context, X mat.Matrix) ([]float64, error)

// VectorBatchPredictFunc predicts a vector per row, e.g. class probabilities or
// several quantiles. The result has one row per input row.
type VectorBatchPredictFunc func(ctx context.Context, X mat.Matrix) (mat.Matrix, error)

// pointwiseChunk is the number of rows a single goroutine evaluates before it
// checks for cancellation again.
const pointwiseChunk = 64

// Pointwise turns a per-vector predictor into a BatchPredictFunc. Rows are
// evaluated on up to concurrency goroutines (GOMAXPROCS when <= 0). A panic in
// fn is returned as *errors.PanicError.
func Pointwise(fn PredictFunc, concurrency int) BatchPredictFunc {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, X mat.Matrix) ([]float64, error) {
		r, c := X.Dims()
		out := make([]float64, r)
		err := parallel.ForEachChunk(ctx, r, pointwiseChunk, concurrency, func(_ context.Context, start, end int) error {
			return errors.SafeExecute("lime.Pointwise", func() error {
				row := make([]float64, c)
				for i := start; i < end; i++ {
					mat.Row(row, i, X)
					out[i] = fn(row)
				}
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// FromPredictor adapts a mat-based model whose Predict returns an n×1 matrix.
func FromPredictor(p model.Predictor) BatchPredictFunc {
	if p == nil {
		return nil
	}
	return func(ctx context.Context, X mat.Matrix) ([]float64, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pred, err := p.Predict(X)
		if err != nil {
			return nil, err
		}
		r, c := pred.Dims()
		if c != 1 {
			return nil, errors.NewDimensionError("lime.FromPredictor", 1, c, 1)
		}
		out := make([]float64, r)
		mat.Col(out, 0, pred)
		return out, nil
	}
}

// SelectOutput explains column output of a vector-valued predictor.
func SelectOutput(fn VectorBatchPredictFunc, output int) BatchPredictFunc {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, X mat.Matrix) ([]float64, error) {
		pred, err := fn(ctx, X)
		if err != nil {
			return nil, err
		}
		r, c := pred.Dims()
		if output < 0 || output >= c {
			return nil, errors.NewInvalidInputError("lime.SelectOutput", "output", "index out of range", output)
		}
		out := make([]float64, r)
		mat.Col(out, output, pred)
		return out, nil
	}
}
