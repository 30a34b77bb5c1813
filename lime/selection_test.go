package lime

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// sparseProblem returns a standardised design where only columns 1 and 3
// drive the target.
func sparseProblem(n, p int) (*mat.Dense, []float64, []float64) {
	rng := rand.New(rand.NewPCG(42, 42))
	Z := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		row := Z.RawRowView(i)
		for j := range row {
			row[j] = rng.NormFloat64()
		}
		y[i] = 3*row[1] - 2*row[3] + 0.01*rng.NormFloat64()
		w[i] = 0.5 + rng.Float64()
	}
	return Z, y, w
}

func TestSelectFeatures_FindsDrivingColumns(t *testing.T) {
	Z, y, w := sparseProblem(400, 6)

	tests := []struct {
		method FeatureSelection
		want   FeatureSelection
	}{
		{SelectionForward, SelectionForward},
		{SelectionHighestWeights, SelectionHighestWeights},
		{SelectionLassoPath, SelectionLassoPath},
		{SelectionAuto, SelectionForward},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			got, method, err := selectFeatures(tt.method, Z, y, w, 2)
			if err != nil {
				t.Fatalf("selectFeatures() error = %v", err)
			}
			if method != tt.want {
				t.Errorf("method = %v, want %v", method, tt.want)
			}
			if !reflect.DeepEqual(got, []int{1, 3}) {
				t.Errorf("selected = %v, want [1 3]", got)
			}
		})
	}
}

func TestSelectFeatures_AllWhenKCoversFeatureCount(t *testing.T) {
	Z, y, w := sparseProblem(50, 4)

	for _, k := range []int{4, 9} {
		for _, m := range []FeatureSelection{SelectionAuto, SelectionForward, SelectionLassoPath} {
			got, method, err := selectFeatures(m, Z, y, w, k)
			if err != nil {
				t.Fatalf("selectFeatures(%s, k=%d) error = %v", m, k, err)
			}
			if !reflect.DeepEqual(got, []int{0, 1, 2, 3}) {
				t.Errorf("selectFeatures(%s, k=%d) = %v, want all", m, k, got)
			}
			if method != SelectionAll {
				t.Errorf("selectFeatures(%s, k=%d) method = %v, want %v", m, k, method, SelectionAll)
			}
		}
	}
}

func TestFeatureSelection_Resolve(t *testing.T) {
	tests := []struct {
		m    FeatureSelection
		k    int
		want FeatureSelection
	}{
		{SelectionAuto, 1, SelectionForward},
		{SelectionAuto, 6, SelectionForward},
		{SelectionAuto, 7, SelectionHighestWeights},
		{"", 3, SelectionForward},
		{SelectionLassoPath, 2, SelectionLassoPath},
	}
	for _, tt := range tests {
		if got := tt.m.resolve(tt.k); got != tt.want {
			t.Errorf("%q.resolve(%d) = %v, want %v", tt.m, tt.k, got, tt.want)
		}
	}
}

func TestParseFeatureSelection(t *testing.T) {
	for _, s := range []string{"", "auto", "forward_selection", "highest_weights", "lasso_path"} {
		if _, err := ParseFeatureSelection(s); err != nil {
			t.Errorf("ParseFeatureSelection(%q) error = %v", s, err)
		}
	}
	for _, s := range []string{"none", string(SelectionAll)} {
		if _, err := ParseFeatureSelection(s); err == nil {
			t.Errorf("ParseFeatureSelection(%q) should fail", s)
		}
	}
}

func TestSampleInto(t *testing.T) {
	query := []float64{1, -2}
	std := []float64{0.5, 3}
	X := mat.NewDense(2000, 2, nil)
	sampleInto(X, rand.New(rand.NewPCG(1, 1)), query, query, std, 2)

	if r, c := X.Dims(); r != 2000 || c != 2 {
		t.Fatalf("Dims = (%d, %d)", r, c)
	}
	if !reflect.DeepEqual(X.RawRowView(0), query) {
		t.Errorf("row 0 = %v, want the query", X.RawRowView(0))
	}

	// 標準偏差は scale·std に近い
	for j := range query {
		col := mat.Col(nil, j, X)[1:]
		var mean, ss float64
		for _, v := range col {
			mean += v
		}
		mean /= float64(len(col))
		for _, v := range col {
			ss += (v - mean) * (v - mean)
		}
		sd := ss / float64(len(col))
		want := (2 * std[j]) * (2 * std[j])
		if sd < 0.85*want || sd > 1.15*want {
			t.Errorf("feature %d variance = %v, want ≈ %v", j, sd, want)
		}
	}

	again := mat.NewDense(2000, 2, nil)
	sampleInto(again, rand.New(rand.NewPCG(1, 1)), query, query, std, 2)
	if !mat.Equal(X, again) {
		t.Error("same source should give the same neighbourhood")
	}
}
