// Package log defines standard attribute keys for explanation requests.
//
// Keys follow a hierarchical naming convention ("explain.kernel_width",
// "data.samples") so that records emitted by different backends can be
// filtered the same way.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the black-box model being explained.
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "build", "explain", "fit", "predict", "select_features"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	// Examples: "lime", "linear", "cli"
	ComponentKey = "ml.component"
)

// Data Shape
const (
	// SamplesKey indicates the number of rows (reference rows or perturbed samples).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of feature columns.
	FeaturesKey = "data.features"

	// EffectiveSamplesKey is the number of samples whose kernel weight is non-zero.
	EffectiveSamplesKey = "data.effective_samples"
)

// Explanation parameters and results
const (
	// KernelWidthKey records the kernel width used for sample weighting.
	KernelWidthKey = "explain.kernel_width"

	// SelectedFeaturesKey lists the features retained in the explanation.
	SelectedFeaturesKey = "explain.selected_features"

	// SelectionMethodKey records the feature selection method that ran.
	SelectionMethodKey = "explain.selection"

	// NumFeaturesKey is the requested maximum number of explanatory features.
	NumFeaturesKey = "explain.num_features"

	// InterceptKey records the surrogate intercept.
	InterceptKey = "explain.intercept"

	// R2ScoreKey records the weighted R² of the local surrogate.
	R2ScoreKey = "metrics.r2_score"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Performance
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// ConcurrencyKey records the number of goroutines used for predictor calls.
	ConcurrencyKey = "perf.concurrency"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides helpful suggestions for resolving issues.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationBuild          = "build"
	OperationExplain        = "explain"
	OperationFit            = "fit"
	OperationPredict        = "predict"
	OperationSelectFeatures = "select_features"

	ErrorInvalidInput    = "INVALID_INPUT"
	ErrorConfiguration   = "CONFIGURATION"
	ErrorSingularMatrix  = "SINGULAR_MATRIX"
	ErrorUnderdetermined = "UNDERDETERMINED"
	ErrorNumerical       = "NUMERICAL"
	ErrorPredictor       = "PREDICTOR"
	ErrorPredictorPanic  = "PREDICTOR_PANIC"
	ErrorCancelled       = "CANCELLED"
)
