package lime

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// FeatureWeight is one term of the local surrogate.
type FeatureWeight struct {
	Index       int     `json:"index"`
	Name        string  `json:"name"`
	Coefficient float64 `json:"coefficient"`
}

// Explanation is the local linear approximation of the black box around one
// query point. Coefficients are in the original feature units, so
// LocalPrediction = Intercept + Σ Coefficient·query[Index].
type Explanation struct {
	// Features are sorted by |Coefficient| descending, ties by Index.
	Features []FeatureWeight `json:"features"`

	Intercept float64 `json:"intercept"`

	// Score is the weighted R² of the surrogate on the neighbourhood.
	Score float64 `json:"score"`

	// LocalPrediction is the surrogate evaluated at the query point.
	LocalPrediction float64 `json:"local_prediction"`

	// Prediction is the black-box value at the query point.
	Prediction float64 `json:"prediction"`

	KernelWidth float64          `json:"kernel_width"`
	NumSamples  int              `json:"num_samples"`
	Selection   FeatureSelection `json:"feature_selection"`

	// Seed reproduces the neighbourhood with WithSeed. It is zero when the
	// caller supplied its own rand.Source.
	Seed uint64 `json:"seed,omitempty"`
}

// Map returns feature name → coefficient.
func (e *Explanation) Map() map[string]float64 {
	m := make(map[string]float64, len(e.Features))
	for _, f := range e.Features {
		m[f.Name] = f.Coefficient
	}
	return m
}

// Coefficient looks up a selected feature by name.
func (e *Explanation) Coefficient(name string) (float64, bool) {
	for _, f := range e.Features {
		if f.Name == name {
			return f.Coefficient, true
		}
	}
	return 0, false
}

// Indices returns the selected column indices in ranking order.
func (e *Explanation) Indices() []int {
	idx := make([]int, len(e.Features))
	for i, f := range e.Features {
		idx[i] = f.Index
	}
	return idx
}

func (e *Explanation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Explanation(prediction=%.6g, local_prediction=%.6g, intercept=%.6g, score=%.4f, selection=%s)",
		e.Prediction, e.LocalPrediction, e.Intercept, e.Score, e.Selection)
	for _, f := range e.Features {
		fmt.Fprintf(&b, "\n  %-20s %+.6g", f.Name, f.Coefficient)
	}
	return b.String()
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e *Explanation) MarshalZerologObject(event *zerolog.Event) {
	coefs := zerolog.Dict()
	for _, f := range e.Features {
		coefs = coefs.Float64(f.Name, f.Coefficient)
	}
	event.Dict("coefficients", coefs).
		Float64("intercept", e.Intercept).
		Float64("score", e.Score).
		Float64("prediction", e.Prediction).
		Float64("local_prediction", e.LocalPrediction).
		Float64("kernel_width", e.KernelWidth).
		Int("num_samples", e.NumSamples).
		Str("feature_selection", string(e.Selection))
}
