package linear

// Option is a function that configures WeightedLinearRegression
type Option func(*WeightedLinearRegression)

// WithFitIntercept sets whether to calculate the intercept
func WithFitIntercept(fit bool) Option {
	return func(lr *WeightedLinearRegression) {
		lr.fitIntercept = fit
	}
}

// WithAlpha sets the L2 (ridge) penalty. The intercept is never penalized.
// Zero gives ordinary weighted least squares.
func WithAlpha(alpha float64) Option {
	return func(lr *WeightedLinearRegression) {
		lr.alpha = alpha
	}
}

// WithConditionLimit sets the condition number above which the weighted
// normal matrix is treated as singular.
func WithConditionLimit(limit float64) Option {
	return func(lr *WeightedLinearRegression) {
		lr.condLimit = limit
	}
}

// LassoOption configures WeightedLassoPath
type LassoOption func(*lassoConfig)

type lassoConfig struct {
	nAlphas int
	eps     float64
	maxIter int
	tol     float64
}

// WithNAlphas sets the number of penalties on the path
func WithNAlphas(n int) LassoOption {
	return func(c *lassoConfig) {
		c.nAlphas = n
	}
}

// WithEps sets alpha_min / alpha_max
func WithEps(eps float64) LassoOption {
	return func(c *lassoConfig) {
		c.eps = eps
	}
}

// WithMaxIter sets the coordinate descent sweep limit per penalty
func WithMaxIter(n int) LassoOption {
	return func(c *lassoConfig) {
		c.maxIter = n
	}
}

// WithTol sets the tolerance on the largest coefficient update of a sweep
func WithTol(tol float64) LassoOption {
	return func(c *lassoConfig) {
		c.tol = tol
	}
}
