package lime

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/YuminosukeSato/limego/core/parallel"
	"github.com/YuminosukeSato/limego/linear"
	"github.com/YuminosukeSato/limego/metrics"
	"github.com/YuminosukeSato/limego/performance"
	"github.com/YuminosukeSato/limego/pkg/errors"
	"github.com/YuminosukeSato/limego/pkg/log"
	"github.com/YuminosukeSato/limego/preprocessing"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// rows below this are z-scored and weighted on the calling goroutine
const parallelThreshold = 1000

// Explainer holds the reference statistics and the black box. Its
// configuration is fixed after New and it is safe for concurrent use.
type Explainer struct {
	predict   BatchPredictFunc
	scaler    *preprocessing.StandardScaler
	names     []string
	normalize bool
	defaults  Config
	logger    log.Logger
	scratch   *performance.MatrixPool
}

// New builds an Explainer from reference rows (one column per feature).
// featureNames may be nil, in which case x0..x{n-1} are used.
//
// It fails with a ConfigurationError when the reference set is empty, predict
// is nil, the names do not match the column count or are not unique, or a
// feature has zero variance while distance normalization is enabled.
func New(reference mat.Matrix, predict BatchPredictFunc, featureNames []string, opts ...Option) (ex *Explainer, err error) {
	const op = "lime.New"

	e := &Explainer{
		predict:   predict,
		normalize: true,
		defaults:  DefaultConfig(),
		scratch:   performance.NewMatrixPool(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.GetLogger()
	}
	e.logger = e.logger.With(log.ComponentKey, "lime")
	defer func() {
		if err != nil {
			e.logger.Debug("Explainer build failed",
				log.OperationKey, log.OperationBuild,
				log.ErrorCodeKey, log.ErrorConfiguration,
				log.ErrAttrKey, err,
			)
		}
	}()

	if reference == nil {
		return nil, errors.NewConfigurationError(op, "referenceData", "must not be nil", nil)
	}
	r, c := reference.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewConfigurationError(op, "referenceData", "must not be empty", fmt.Sprintf("%dx%d", r, c))
	}
	if predict == nil {
		return nil, errors.NewConfigurationError(op, "predictFn", "must not be nil", nil)
	}

	if err := e.defaults.Validate(); err != nil {
		return nil, err
	}

	names, err := resolveNames(op, featureNames, c)
	if err != nil {
		return nil, err
	}
	e.names = names

	scaler := preprocessing.NewStandardScalerDefault()
	if err := scaler.Fit(reference); err != nil {
		return nil, errors.NewConfigurationError(op, "referenceData", err.Error(), nil)
	}
	if e.normalize && scaler.HasZeroVariance() {
		zero := make([]string, len(scaler.ZeroVariance))
		for i, j := range scaler.ZeroVariance {
			zero[i] = names[j]
		}
		return nil, errors.NewConfigurationError(op, "referenceData",
			"zero-variance features cannot be normalized", zero)
	}
	e.scaler = scaler

	e.logger.Debug("Explainer built",
		log.OperationKey, log.OperationBuild,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)
	return e, nil
}

func resolveNames(op string, names []string, n int) ([]string, error) {
	if names == nil {
		out := make([]string, n)
		for j := range out {
			out[j] = fmt.Sprintf("x%d", j)
		}
		return out, nil
	}
	if len(names) != n {
		return nil, errors.NewConfigurationError(op, "featureNames",
			fmt.Sprintf("expected %d names", n), len(names))
	}
	seen := make(map[string]struct{}, n)
	for _, name := range names {
		if name == "" {
			return nil, errors.NewConfigurationError(op, "featureNames", "names must not be empty", nil)
		}
		if _, dup := seen[name]; dup {
			return nil, errors.NewConfigurationError(op, "featureNames", "names must be unique", name)
		}
		seen[name] = struct{}{}
	}
	return append([]string(nil), names...), nil
}

// NumFeatures returns the number of reference columns.
func (e *Explainer) NumFeatures() int { return len(e.names) }

// FeatureNames returns a copy of the feature names.
func (e *Explainer) FeatureNames() []string { return append([]string(nil), e.names...) }

// Mean returns a copy of the reference means.
func (e *Explainer) Mean() []float64 { return append([]float64(nil), e.scaler.Mean...) }

// Std returns a copy of the reference standard deviations. Zero-variance
// features report 1.
func (e *Explainer) Std() []float64 { return append([]float64(nil), e.scaler.Scale...) }

// Defaults returns the per-request defaults.
func (e *Explainer) Defaults() Config { return e.defaults }

// Explain fits a local surrogate around query.
//
// The call either returns a complete Explanation or an error: an
// InvalidInputError for bad arguments, a NumericalError when the weighted
// regression is degenerate or the predictor returns unusable values, a
// *errors.PanicError when the predictor panics, or the context error
// (wrapped) when ctx is done before the explanation is complete.
func (e *Explainer) Explain(ctx context.Context, query []float64, opts ...ExplainOption) (exp *Explanation, err error) {
	const op = "lime.Explain"
	start := time.Now()
	defer func() {
		if err != nil {
			code, suggestion := classify(err)
			e.logger.Debug("Explanation failed",
				log.OperationKey, log.OperationExplain,
				log.ErrorCodeKey, code,
				log.SuggestionKey, suggestion,
				log.ErrAttrKey, err,
			)
		}
	}()

	req := newRequest(e.defaults, opts)
	p := len(e.names)
	if err := e.validate(op, query, req); err != nil {
		return nil, err
	}
	k := min(req.numFeatures, p)
	width := req.kernelWidth
	if width == 0 {
		width = DefaultKernelWidth(p)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	// 1. neighbourhood
	rng, seed := req.rng()
	center := query
	if !req.sampleAroundInstance {
		center = e.scaler.Mean
	}
	X := e.scratch.Get(req.numSamples, p)
	defer e.scratch.Put(X)
	sampleInto(X, rng, query, center, e.scaler.Scale, req.sampleScale)

	// 2. black-box predictions
	y, err := e.evaluate(ctx, X, req)
	if err != nil {
		return nil, err
	}

	// 3-4. distances and kernel weights
	Z := e.scratch.Get(req.numSamples, p)
	defer e.scratch.Put(Z)
	weights := e.weigh(X, Z, req, width)
	if err := checkWeights(op, weights); err != nil {
		return nil, err
	}
	effective := 0
	for _, w := range weights {
		if w > 0 {
			effective++
		}
	}
	if effective < k+1 {
		return nil, errors.NewNumericalError(op,
			fmt.Sprintf("%d samples with non-zero weight cannot determine %d coefficients; increase kernel width or sample count", effective, k+1),
			errors.ErrUnderdetermined)
	}
	e.logger.Debug("Neighbourhood weighted",
		log.SamplesKey, req.numSamples,
		log.EffectiveSamplesKey, effective,
		log.KernelWidthKey, width,
	)

	// 5. feature selection
	selected, method, err := selectFeatures(req.selection, Z, y, weights, k)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	// 6. weighted least squares on the selected features
	coef, intercept, score, err := e.fitSurrogate(Z, y, weights, selected, req.ridgeAlpha)
	if err != nil {
		return nil, err
	}

	// 7. explanation
	exp = &Explanation{
		Features:    make([]FeatureWeight, len(selected)),
		Intercept:   intercept,
		Score:       score,
		Prediction:  y[0],
		KernelWidth: width,
		NumSamples:  req.numSamples,
		Selection:   method,
		Seed:        seed,
	}
	exp.LocalPrediction = intercept
	for i, j := range selected {
		exp.Features[i] = FeatureWeight{Index: j, Name: e.names[j], Coefficient: coef[i]}
		exp.LocalPrediction += coef[i] * query[j]
	}
	sort.SliceStable(exp.Features, func(a, b int) bool {
		return math.Abs(exp.Features[a].Coefficient) > math.Abs(exp.Features[b].Coefficient)
	})

	e.logger.Info("Explanation finished",
		log.OperationKey, log.OperationExplain,
		log.SamplesKey, req.numSamples,
		log.NumFeaturesKey, k,
		log.SelectionMethodKey, string(method),
		log.SelectedFeaturesKey, exp.Map(),
		log.InterceptKey, intercept,
		log.R2ScoreKey, score,
		log.RandomSeedKey, seed,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return exp, nil
}

// classify maps an Explain error to a log code and a hint for the caller.
func classify(err error) (code, suggestion string) {
	var (
		inputErr *errors.InvalidInputError
		panicErr *errors.PanicError
		numErr   *errors.NumericalError
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return log.ErrorCancelled, "retry with a longer deadline"
	case errors.As(err, &inputErr):
		return log.ErrorInvalidInput, "check " + inputErr.Param
	case errors.As(err, &panicErr):
		return log.ErrorPredictorPanic, "the predictor panicked; see the stack trace"
	case errors.Is(err, errors.ErrUnderdetermined):
		return log.ErrorUnderdetermined, "increase the kernel width or the number of samples"
	case errors.Is(err, errors.ErrSingularMatrix):
		return log.ErrorSingularMatrix, "reduce the number of features or add a ridge penalty"
	case errors.As(err, &numErr):
		return log.ErrorNumerical, "check the predictor output for NaN, Inf or a wrong length"
	default:
		return log.ErrorPredictor, "the predictor returned an error"
	}
}

func (e *Explainer) validate(op string, query []float64, req *request) error {
	switch {
	case len(query) != len(e.names):
		return errors.NewInvalidInputError(op, "queryPoint",
			fmt.Sprintf("expected %d values", len(e.names)), len(query))
	case req.numFeatures < 1:
		return errors.NewInvalidInputError(op, "nFeatures", "must be positive", req.numFeatures)
	case req.numSamples < 1:
		return errors.NewInvalidInputError(op, "nSamples", "must be positive", req.numSamples)
	case req.kernelWidth < 0, req.kernelWidthSet && req.kernelWidth == 0:
		return errors.NewInvalidInputError(op, "kernelWidth", "must be a finite positive number", req.kernelWidth)
	case !(req.sampleScale > 0) || math.IsInf(req.sampleScale, 0):
		return errors.NewInvalidInputError(op, "sampleScale", "must be positive", req.sampleScale)
	case req.ridgeAlpha < 0 || math.IsNaN(req.ridgeAlpha):
		return errors.NewInvalidInputError(op, "ridgeAlpha", "must be non-negative", req.ridgeAlpha)
	case req.distance == nil:
		return errors.NewInvalidInputError(op, "distance", "must not be nil", nil)
	case req.kernel == nil:
		return errors.NewInvalidInputError(op, "kernel", "must not be nil", nil)
	}
	if err := errors.CheckScalar(op, req.kernelWidth); err != nil {
		return errors.WrapInvalidInput(op, "kernelWidth", err)
	}
	if _, err := ParseFeatureSelection(string(req.selection)); err != nil {
		return errors.WrapInvalidInput(op, "featureSelection", err)
	}
	if err := errors.CheckNumericalStability(op, query); err != nil {
		return errors.WrapInvalidInput(op, "queryPoint", err)
	}
	return nil
}

// evaluate runs the black box on every row of X. Batches run concurrently
// when a batch size is set; nothing is returned unless every batch succeeded.
func (e *Explainer) evaluate(ctx context.Context, X *mat.Dense, req *request) ([]float64, error) {
	const op = "lime.Explain"
	n, p := X.Dims()
	y := make([]float64, n)

	call := func(ctx context.Context, start, end int) error {
		return errors.SafeExecute("lime.predict", func() error {
			part, err := e.predict(ctx, X.Slice(start, end, 0, p))
			if err != nil {
				return err
			}
			if len(part) != end-start {
				return errors.NewNumericalError(op, "predictor returned the wrong number of values",
					errors.NewDimensionError(op, end-start, len(part), 0))
			}
			copy(y[start:end], part)
			return nil
		})
	}

	var err error
	if req.batchSize <= 0 || req.batchSize >= n {
		err = call(ctx, 0, n)
	} else {
		err = parallel.ForEachChunk(ctx, n, req.batchSize, req.concurrency, call)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, errors.Wrap(ctxErr, op)
	}
	if err != nil {
		return nil, errors.Wrap(err, "predictor")
	}
	if err := errors.CheckNumericalStability("predictor", y); err != nil {
		return nil, errors.NewNumericalError(op, "predictor returned a non-finite value", err)
	}
	return y, nil
}

// weigh z-scores X into Z and returns the kernel weight of every row
// relative to row 0.
func (e *Explainer) weigh(X, Z *mat.Dense, req *request, width float64) []float64 {
	n, _ := X.Dims()
	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			e.scaler.TransformRow(Z.RawRowView(i), X.RawRowView(i))
		}
	})

	space := X
	if e.normalize {
		space = Z
	}
	origin := space.RawRowView(0)
	weights := make([]float64, n)
	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			weights[i] = req.kernel(req.distance(space.RawRowView(i), origin), width)
		}
	})
	return weights
}

func checkWeights(op string, weights []float64) error {
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return errors.NewInvalidInputError(op, "kernel",
				fmt.Sprintf("weight of sample %d must be finite and non-negative", i), w)
		}
	}
	return nil
}

// fitSurrogate fits y on the selected z-scored columns of Z and returns the
// coefficients and intercept in raw feature units. With no selected columns
// the surrogate is the weighted mean of y.
func (e *Explainer) fitSurrogate(Z *mat.Dense, y, w []float64, selected []int, alpha float64) ([]float64, float64, float64, error) {
	if len(selected) == 0 {
		mean := floats.Dot(w, y) / floats.Sum(w)
		pred := make([]float64, len(y))
		for i := range pred {
			pred[i] = mean
		}
		score, err := metrics.WeightedR2Score(y, pred, w)
		if err != nil {
			return nil, 0, 0, err
		}
		return nil, mean, score, nil
	}

	sub := columns(Z, selected)
	lr := linear.NewWeightedLinearRegression(linear.WithAlpha(alpha))
	if err := lr.Fit(sub, y, w); err != nil {
		return nil, 0, 0, err
	}
	score, err := lr.Score(sub, y, w)
	if err != nil {
		return nil, 0, 0, err
	}

	// z = (x - mean) / scale
	coef := lr.Coefficients()
	intercept := lr.InterceptValue()
	for i, j := range selected {
		coef[i] /= e.scaler.Scale[j]
		intercept -= coef[i] * e.scaler.Mean[j]
	}
	return coef, intercept, score, nil
}
