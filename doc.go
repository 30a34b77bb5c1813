// Package limego explains individual predictions of black-box regression
// models in Go, designed for backend services that need per-request
// attributions next to their inference path.
//
// limego fits a weighted linear surrogate around a single query point
// (LIME-style local explanations). The black box is only ever called
// through a prediction function, so any model, remote service or closure
// can be explained.
//
// # Features
//
// - Local surrogates: weighted least squares with optional ridge penalty
// - Feature selection: forward selection, highest weights, lasso path
// - Reproducible: seeded per-request random sources
// - Concurrent: a single Explainer serves many goroutines
// - Structured errors and logging: cockroachdb/errors, slog or zerolog
//
// # Installation
//
//	go get github.com/YuminosukeSato/limego
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/limego/lime"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    reference := mat.NewDense(4, 2, []float64{
//	        1, 10,
//	        2, 14,
//	        3, 9,
//	        4, 12,
//	    })
//	    model := func(x []float64) float64 { return 3*x[0] - 0.5*x[1] }
//
//	    ex, err := lime.New(reference, lime.Pointwise(model, 0), []string{"size", "age"})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    exp, err := ex.Explain(context.Background(), []float64{2.5, 11}, lime.WithSeed(1))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(exp)
//	}
//
// # Packages
//
//   - lime: Explainer, Explanation, kernels, distances and configuration
//   - linear: WeightedLinearRegression and WeightedLassoPath
//   - metrics: Regression metrics (MSE, MAE, weighted R²)
//   - preprocessing: StandardScaler
//   - performance: Scratch matrix pooling
//   - core/model: Core interfaces, base estimator and model weights
//   - core/parallel: Parallel processing utilities
//   - pkg/errors: Error types and panic recovery
//   - pkg/log: Logger interface with slog and zerolog backends
//
// The limego command (cmd/limego) explains a linear model exported as
// JSON weights from the command line.
//
// # License
//
// limego is released under the MIT License.
package limego
