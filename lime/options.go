package lime

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/limego/pkg/log"
)

// Option configures an Explainer.
type Option func(*Explainer)

// WithLogger sets the logger. Defaults to log.GetLogger().
func WithLogger(l log.Logger) Option {
	return func(e *Explainer) {
		e.logger = l
	}
}

// WithDistanceNormalization controls whether distances are measured on
// z-scored features (default true). When disabled, zero-variance reference
// features are accepted and distances use raw units.
func WithDistanceNormalization(normalize bool) Option {
	return func(e *Explainer) {
		e.normalize = normalize
	}
}

// WithDefaults replaces the per-request defaults.
func WithDefaults(cfg Config) Option {
	return func(e *Explainer) {
		e.defaults = cfg
	}
}

// ExplainOption configures one Explain call.
type ExplainOption func(*request)

type request struct {
	numFeatures          int
	numSamples           int
	kernelWidth          float64
	kernelWidthSet       bool
	selection            FeatureSelection
	sampleAroundInstance bool
	sampleScale          float64
	distance             DistanceFunc
	kernel               KernelFunc
	ridgeAlpha           float64
	batchSize            int
	concurrency          int

	seed    uint64
	hasSeed bool
	src     rand.Source
}

// WithNumFeatures sets the maximum number of features in the explanation.
// Values above the feature count are clamped.
func WithNumFeatures(k int) ExplainOption {
	return func(r *request) {
		r.numFeatures = k
	}
}

// WithNumSamples sets the neighbourhood size, including the query row.
func WithNumSamples(n int) ExplainOption {
	return func(r *request) {
		r.numSamples = n
	}
}

// WithKernelWidth sets the kernel width. It must be positive.
func WithKernelWidth(width float64) ExplainOption {
	return func(r *request) {
		r.kernelWidth = width
		r.kernelWidthSet = true
	}
}

// WithSeed makes the neighbourhood reproducible.
func WithSeed(seed uint64) ExplainOption {
	return func(r *request) {
		r.seed = seed
		r.hasSeed = true
		r.src = nil
	}
}

// WithRandSource draws perturbations from src. src is used by a single
// request at a time and must not be shared between concurrent calls.
func WithRandSource(src rand.Source) ExplainOption {
	return func(r *request) {
		r.src = src
		r.hasSeed = false
	}
}

// WithFeatureSelection sets the selection strategy.
func WithFeatureSelection(m FeatureSelection) ExplainOption {
	return func(r *request) {
		r.selection = m
	}
}

// WithSampleAroundInstance centres perturbations on the query (true) or on
// the reference mean (false).
func WithSampleAroundInstance(around bool) ExplainOption {
	return func(r *request) {
		r.sampleAroundInstance = around
	}
}

// WithSampleScale multiplies the reference standard deviations used for
// perturbation.
func WithSampleScale(scale float64) ExplainOption {
	return func(r *request) {
		r.sampleScale = scale
	}
}

// WithDistance sets the distance between a sample and the query.
func WithDistance(d DistanceFunc) ExplainOption {
	return func(r *request) {
		r.distance = d
	}
}

// WithKernel sets the distance → weight kernel.
func WithKernel(k KernelFunc) ExplainOption {
	return func(r *request) {
		r.kernel = k
	}
}

// WithRidgeAlpha adds an L2 penalty to the surrogate fit. The penalty applies
// to coefficients of the z-scored features.
func WithRidgeAlpha(alpha float64) ExplainOption {
	return func(r *request) {
		r.ridgeAlpha = alpha
	}
}

// WithBatchSize splits predictor calls into batches of n rows; 0 sends the
// whole neighbourhood at once.
func WithBatchSize(n int) ExplainOption {
	return func(r *request) {
		r.batchSize = n
	}
}

// WithConcurrency bounds the number of predictor batches in flight.
func WithConcurrency(n int) ExplainOption {
	return func(r *request) {
		r.concurrency = n
	}
}

func newRequest(cfg Config, opts []ExplainOption) *request {
	dist, err := DistanceByName(cfg.Distance)
	if err != nil {
		dist = Euclidean
	}
	r := &request{
		numFeatures:          cfg.NumFeatures,
		numSamples:           cfg.NumSamples,
		kernelWidth:          cfg.KernelWidth,
		selection:            cfg.FeatureSelection,
		sampleAroundInstance: cfg.SampleAroundInstance,
		sampleScale:          cfg.SampleScale,
		distance:             dist,
		kernel:               ExponentialKernel,
		ridgeAlpha:           cfg.RidgeAlpha,
		batchSize:            cfg.BatchSize,
		concurrency:          cfg.Concurrency,
	}
	if cfg.Seed != nil {
		r.seed, r.hasSeed = *cfg.Seed, true
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// rng returns the perturbation source and the seed that produced it.
func (r *request) rng() (*rand.Rand, uint64) {
	if r.src != nil {
		return rand.New(r.src), 0
	}
	seed := r.seed
	if !r.hasSeed {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed)), seed
}
