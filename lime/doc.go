// Package lime explains single predictions of black-box regressors with local
// surrogate models.
//
// An Explainer is built once from a reference data set, which only supplies
// per-feature means and standard deviations, and a prediction function.
// Each call to Explain perturbs the query point, evaluates the black box on
// the neighbourhood, weights every sample by an exponential kernel over its
// z-scored distance to the query, selects at most k features and fits a
// weighted linear model on them. The resulting Explanation holds the signed
// coefficients, the intercept and the weighted R² of the surrogate.
//
// Basic usage:
//
//	ex, err := lime.New(reference, lime.Pointwise(model, 0), []string{"age", "load", "temp"})
//	if err != nil {
//	    return err
//	}
//	exp, err := ex.Explain(ctx, query,
//	    lime.WithNumFeatures(2),
//	    lime.WithSeed(42),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(exp)
//
// A low Score means a linear surrogate is a poor approximation of the black
// box around the query; retry with a smaller kernel width or more samples.
package lime
