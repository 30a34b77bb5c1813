package lime

import (
	"bytes"
	"io"
	"math"
	"os"

	"github.com/YuminosukeSato/limego/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds per-request defaults. It can be loaded from YAML:
//
//	num_features: 5
//	num_samples: 5000
//	kernel_width: 1.5
//	feature_selection: lasso_path
//	seed: 42
//	distance: euclidean
type Config struct {
	NumFeatures int `yaml:"num_features"`
	NumSamples  int `yaml:"num_samples"`

	// KernelWidth of 0 means DefaultKernelWidth(featureCount).
	KernelWidth float64 `yaml:"kernel_width,omitempty"`

	FeatureSelection FeatureSelection `yaml:"feature_selection"`

	// Seed fixes the perturbation source. Nil draws a fresh seed per request.
	Seed *uint64 `yaml:"seed,omitempty"`

	SampleAroundInstance bool    `yaml:"sample_around_instance"`
	SampleScale          float64 `yaml:"sample_scale"`
	Distance             string  `yaml:"distance"`
	RidgeAlpha           float64 `yaml:"ridge_alpha"`

	// BatchSize splits predictor calls into batches of this many rows.
	// 0 sends the whole neighbourhood in one call.
	BatchSize int `yaml:"batch_size"`

	// Concurrency bounds the number of batches in flight (0 = GOMAXPROCS).
	Concurrency int `yaml:"concurrency"`
}

// DefaultConfig returns the defaults used when no Config is given.
func DefaultConfig() Config {
	return Config{
		NumFeatures:          10,
		NumSamples:           5000,
		FeatureSelection:     SelectionAuto,
		SampleAroundInstance: true,
		SampleScale:          1.0,
		Distance:             "euclidean",
	}
}

// Validate reports the first invalid field as a ConfigurationError.
func (c Config) Validate() error {
	const op = "lime.Config.Validate"
	switch {
	case c.NumFeatures < 1:
		return errors.NewConfigurationError(op, "num_features", "must be positive", c.NumFeatures)
	case c.NumSamples < 1:
		return errors.NewConfigurationError(op, "num_samples", "must be positive", c.NumSamples)
	case c.KernelWidth < 0 || math.IsNaN(c.KernelWidth) || math.IsInf(c.KernelWidth, 0):
		return errors.NewConfigurationError(op, "kernel_width", "must be a finite non-negative number", c.KernelWidth)
	case !(c.SampleScale > 0) || math.IsInf(c.SampleScale, 0):
		return errors.NewConfigurationError(op, "sample_scale", "must be positive", c.SampleScale)
	case c.RidgeAlpha < 0 || math.IsNaN(c.RidgeAlpha):
		return errors.NewConfigurationError(op, "ridge_alpha", "must be non-negative", c.RidgeAlpha)
	case c.BatchSize < 0:
		return errors.NewConfigurationError(op, "batch_size", "must be non-negative", c.BatchSize)
	case c.Concurrency < 0:
		return errors.NewConfigurationError(op, "concurrency", "must be non-negative", c.Concurrency)
	}
	if _, err := ParseFeatureSelection(string(c.FeatureSelection)); err != nil {
		return err
	}
	if _, err := DistanceByName(c.Distance); err != nil {
		return err
	}
	return nil
}

// Options converts the config into request options.
func (c Config) Options() []ExplainOption {
	dist, err := DistanceByName(c.Distance)
	if err != nil {
		dist = Euclidean
	}
	opts := []ExplainOption{
		WithNumFeatures(c.NumFeatures),
		WithNumSamples(c.NumSamples),
		WithFeatureSelection(c.FeatureSelection),
		WithSampleAroundInstance(c.SampleAroundInstance),
		WithSampleScale(c.SampleScale),
		WithDistance(dist),
		WithRidgeAlpha(c.RidgeAlpha),
		WithBatchSize(c.BatchSize),
		WithConcurrency(c.Concurrency),
	}
	if c.KernelWidth > 0 {
		opts = append(opts, WithKernelWidth(c.KernelWidth))
	}
	if c.Seed != nil {
		opts = append(opts, WithSeed(*c.Seed))
	}
	return opts
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
// Unknown keys are rejected. An empty document yields the defaults.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "decode lime config")
	}
	if cfg.FeatureSelection == "" {
		cfg.FeatureSelection = SelectionAuto
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read lime config %s", path)
	}
	return ParseConfig(bytes.NewReader(data))
}

// YAML encodes the config with two-space indentation.
func (c Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, errors.Wrap(err, "encode lime config")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encode lime config")
	}
	return buf.Bytes(), nil
}
