package lime

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/YuminosukeSato/limego/pkg/errors"
)

func TestParseConfig(t *testing.T) {
	seed := uint64(42)

	tests := []struct {
		name    string
		yaml    string
		want    Config
		wantErr bool
	}{
		{
			name: "empty document",
			yaml: "",
			want: DefaultConfig(),
		},
		{
			name: "partial override keeps defaults",
			yaml: "num_features: 3\nseed: 42\n",
			want: func() Config {
				c := DefaultConfig()
				c.NumFeatures = 3
				c.Seed = &seed
				return c
			}(),
		},
		{
			name: "full document",
			yaml: `
num_features: 4
num_samples: 2000
kernel_width: 1.25
feature_selection: lasso_path
seed: 42
sample_around_instance: false
sample_scale: 0.5
distance: manhattan
ridge_alpha: 0.1
batch_size: 256
concurrency: 4
`,
			want: Config{
				NumFeatures:          4,
				NumSamples:           2000,
				KernelWidth:          1.25,
				FeatureSelection:     SelectionLassoPath,
				Seed:                 &seed,
				SampleAroundInstance: false,
				SampleScale:          0.5,
				Distance:             "manhattan",
				RidgeAlpha:           0.1,
				BatchSize:            256,
				Concurrency:          4,
			},
		},
		{name: "unknown key", yaml: "num_featurez: 3\n", wantErr: true},
		{name: "bad selection", yaml: "feature_selection: random\n", wantErr: true},
		{name: "bad distance", yaml: "distance: hamming\n", wantErr: true},
		{name: "zero samples", yaml: "num_samples: 0\n", wantErr: true},
		{name: "negative width", yaml: "kernel_width: -2\n", wantErr: true},
		{name: "malformed", yaml: "num_features: [1, 2\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfig(strings.NewReader(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConfig_ValidateReturnsConfigurationError(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"num features", func(c *Config) { c.NumFeatures = 0 }},
		{"num samples", func(c *Config) { c.NumSamples = -1 }},
		{"kernel width NaN", func(c *Config) { c.KernelWidth = math.NaN() }},
		{"sample scale", func(c *Config) { c.SampleScale = 0 }},
		{"ridge alpha", func(c *Config) { c.RidgeAlpha = -0.5 }},
		{"batch size", func(c *Config) { c.BatchSize = -1 }},
		{"concurrency", func(c *Config) { c.Concurrency = -2 }},
		{"selection", func(c *Config) { c.FeatureSelection = "magic" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			var cfgErr *errors.ConfigurationError
			if err := c.Validate(); !errors.As(err, &cfgErr) {
				t.Errorf("Validate() = %v, want ConfigurationError", err)
			}
		})
	}
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	seed := uint64(7)
	cfg := DefaultConfig()
	cfg.NumFeatures = 5
	cfg.KernelWidth = 2.5
	cfg.FeatureSelection = SelectionHighestWeights
	cfg.Seed = &seed
	cfg.Distance = "cosine"

	data, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "lime.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() should fail for a missing file")
	}
}

func TestConfig_Options(t *testing.T) {
	seed := uint64(99)
	cfg := Config{
		NumFeatures:          2,
		NumSamples:           300,
		KernelWidth:          0.5,
		FeatureSelection:     SelectionForward,
		Seed:                 &seed,
		SampleAroundInstance: false,
		SampleScale:          2,
		Distance:             "manhattan",
		RidgeAlpha:           0.25,
		BatchSize:            32,
		Concurrency:          3,
	}

	r := newRequest(DefaultConfig(), cfg.Options())
	switch {
	case r.numFeatures != 2, r.numSamples != 300:
		t.Errorf("sizes = (%d, %d)", r.numFeatures, r.numSamples)
	case r.kernelWidth != 0.5 || !r.kernelWidthSet:
		t.Errorf("kernel width = %v (set %t)", r.kernelWidth, r.kernelWidthSet)
	case r.selection != SelectionForward:
		t.Errorf("selection = %v", r.selection)
	case !r.hasSeed || r.seed != 99:
		t.Errorf("seed = %v (set %t)", r.seed, r.hasSeed)
	case r.sampleAroundInstance || r.sampleScale != 2:
		t.Errorf("sampling = (%t, %v)", r.sampleAroundInstance, r.sampleScale)
	case r.ridgeAlpha != 0.25 || r.batchSize != 32 || r.concurrency != 3:
		t.Errorf("fit/batch = (%v, %d, %d)", r.ridgeAlpha, r.batchSize, r.concurrency)
	}
	if got := r.distance([]float64{0, 0}, []float64{1, 1}); got != 2 {
		t.Errorf("distance = %v, want manhattan 2", got)
	}
}

func TestNewRequest_ConfigSeedIsReproducible(t *testing.T) {
	seed := uint64(5)
	cfg := DefaultConfig()
	cfg.Seed = &seed

	a, sa := newRequest(cfg, nil).rng()
	b, sb := newRequest(cfg, nil).rng()
	if sa != 5 || sb != 5 || a.Uint64() != b.Uint64() {
		t.Error("config seed should produce identical sources")
	}

	_, s1 := newRequest(DefaultConfig(), nil).rng()
	_, s2 := newRequest(DefaultConfig(), nil).rng()
	if s1 == s2 {
		t.Error("unseeded requests should draw fresh seeds")
	}
}
