package errors

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewConfigurationError(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		reason  string
		value   interface{}
		wantMsg string
	}{
		{
			name:    "with value",
			param:   "feature_names",
			reason:  "length must match the number of columns",
			value:   2,
			wantMsg: "limego: lime.New: invalid configuration of 'feature_names': length must match the number of columns (got: 2)",
		},
		{
			name:    "without value",
			param:   "reference",
			reason:  "reference data is empty",
			value:   nil,
			wantMsg: "limego: lime.New: invalid configuration of 'reference': reference data is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfigurationError("lime.New", tt.param, tt.reason, tt.value)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var cfgErr *ConfigurationError
			if !As(err, &cfgErr) {
				t.Error("Error should be castable to *ConfigurationError")
			}
		})
	}
}

func TestInvalidInputError(t *testing.T) {
	err := NewInvalidInputError("Explain", "query", "length mismatch", 4)
	want := "limego: Explain: invalid input 'query': length mismatch (got: 4)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	cause := NewDimensionError("Explain", 3, 4, 1)
	wrapped := WrapInvalidInput("Explain", "query", cause)

	var inputErr *InvalidInputError
	if !As(wrapped, &inputErr) {
		t.Fatal("Error should be castable to *InvalidInputError")
	}
	var dimErr *DimensionError
	if !As(wrapped, &dimErr) {
		t.Fatal("cause should stay reachable as *DimensionError")
	}
	if dimErr.Expected != 3 || dimErr.Got != 4 {
		t.Errorf("unexpected dimension error %+v", dimErr)
	}
}

func TestNumericalError(t *testing.T) {
	err := NewNumericalError("linear.Fit", "weighted normal matrix is singular", ErrSingularMatrix)

	if !Is(err, ErrSingularMatrix) {
		t.Error("Expected Is(err, ErrSingularMatrix) to be true")
	}

	var numErr *NumericalError
	if !As(err, &numErr) {
		t.Fatal("Error should be castable to *NumericalError")
	}
	if numErr.Op != "linear.Fit" {
		t.Errorf("Op = %q", numErr.Op)
	}

	want := "limego: linear.Fit: weighted normal matrix is singular: singular matrix"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("WeightedLinearRegression", "Predict")

	want := "limego: WeightedLinearRegression: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 10, 9, 0)

	want := "limego: Predict: dimension mismatch on axis 0 (rows). Expected 10, got 9"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestMarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var cfgErr *ConfigurationError
	if !As(NewConfigurationError("lime.New", "reference", "zero variance", "x2"), &cfgErr) {
		t.Fatal("expected *ConfigurationError")
	}
	logger.Error().EmbedObject(cfgErr).Msg("build failed")

	out := buf.String()
	for _, want := range []string{`"type":"ConfigurationError"`, `"param_name":"reference"`, `"value":"x2"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestWarn(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewConvergenceWarning("LassoPath", 1000, "duality gap not reached"))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	var convWarn *ConvergenceWarning
	if !As(got[0], &convWarn) {
		t.Fatal("Warning should be castable to *ConvergenceWarning")
	}
	want := "LassoPath failed to converge after 1000 iterations: duality gap not reached"
	if convWarn.Error() != want {
		t.Errorf("Error() = %v, want %v", convWarn.Error(), want)
	}

	// zerolog関数が設定されている場合はそちらが優先される
	var bridged int
	SetZerologWarnFunc(func(error) { bridged++ })
	Warn(NewUndefinedMetricWarning("r2", "constant target", 1))
	SetZerologWarnFunc(nil)

	if bridged != 1 || len(got) != 1 {
		t.Errorf("expected warning routed to zerolog func, bridged=%d handler=%d", bridged, len(got))
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d rows", "lime.New", 10)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}

	if !strings.Contains(wrapped.Error(), "in lime.New: expected 10 rows") {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("predict", []float64{1, 2, 3}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := CheckNumericalStability("predict", []float64{1, math.NaN(), math.Inf(1)})
	var instErr *NumericalInstabilityError
	if !As(err, &instErr) {
		t.Fatalf("expected *NumericalInstabilityError, got %v", err)
	}
	if instErr.Index != 1 {
		t.Errorf("Index = %d, want 1", instErr.Index)
	}

	if err := CheckScalar("kernel_width", math.Inf(-1)); err == nil {
		t.Error("expected error for -Inf")
	}
}

func TestStabilizeExp(t *testing.T) {
	if got := StabilizeExp(-1000); got != 0 {
		t.Errorf("StabilizeExp(-1000) = %v, want 0", got)
	}
	if got := StabilizeExp(1000); math.IsInf(got, 1) {
		t.Error("StabilizeExp(1000) overflowed")
	}
	if got := StabilizeExp(0); got != 1 {
		t.Errorf("StabilizeExp(0) = %v, want 1", got)
	}
}
