package model

import (
	"strings"
	"testing"

	"github.com/YuminosukeSato/limego/pkg/errors"
)

func TestModelWeightsRoundTrip(t *testing.T) {
	mw := &ModelWeights{
		ModelType:       "WeightedLinearRegression",
		Version:         "1.0",
		Coefficients:    []float64{2, -1, 0},
		Intercept:       5,
		Features:        []string{"x0", "x1", "x2"},
		Hyperparameters: map[string]interface{}{"alpha": 0.0},
		IsFitted:        true,
	}

	data, err := mw.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := ReadModelWeights(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("ReadModelWeights: %v", err)
	}
	if got.Intercept != 5 || len(got.Coefficients) != 3 || got.Coefficients[1] != -1 {
		t.Errorf("unexpected weights %+v", got)
	}
}

func TestModelWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mw      ModelWeights
		wantErr bool
	}{
		{"valid", ModelWeights{ModelType: "m", Version: "1", Coefficients: []float64{1}, IsFitted: true}, false},
		{"missing type", ModelWeights{Version: "1"}, true},
		{"missing version", ModelWeights{ModelType: "m"}, true},
		{"fitted without coefficients", ModelWeights{ModelType: "m", Version: "1", IsFitted: true}, true},
		{"unfitted with coefficients", ModelWeights{ModelType: "m", Version: "1", Coefficients: []float64{1}}, true},
		{"feature names mismatch", ModelWeights{ModelType: "m", Version: "1", Coefficients: []float64{1, 2}, Features: []string{"a"}, IsFitted: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mw.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	var dimErr *errors.DimensionError
	bad := ModelWeights{ModelType: "m", Version: "1", Coefficients: []float64{1, 2}, Features: []string{"a"}, IsFitted: true}
	if !errors.As(bad.Validate(), &dimErr) {
		t.Error("feature name mismatch should be a DimensionError")
	}
}

func TestModelWeightsClone(t *testing.T) {
	mw := &ModelWeights{ModelType: "m", Version: "1", Coefficients: []float64{1, 2}, IsFitted: true}
	c := mw.Clone()
	c.Coefficients[0] = 99
	if mw.Coefficients[0] != 1 {
		t.Error("Clone must deep-copy coefficients")
	}
}
