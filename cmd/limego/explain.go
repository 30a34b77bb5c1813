package main

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/YuminosukeSato/limego/core/model"
	"github.com/YuminosukeSato/limego/lime"
	"github.com/YuminosukeSato/limego/linear"
	"github.com/YuminosukeSato/limego/pkg/errors"
	"github.com/YuminosukeSato/limego/pkg/log"
	"github.com/spf13/cobra"
)

type explainOptions struct {
	reference   string
	model       string
	query       string
	config      string
	numFeatures int
	numSamples  int
	kernelWidth float64
	seed        uint64
	selection   string
	batchSize   int
	format      string
}

func newExplainCmd() *cobra.Command {
	opts := &explainOptions{}
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain one prediction with a local linear surrogate",
		Long: `Perturbs --query, evaluates the model on the neighbourhood, weights samples
by their distance to the query and fits a sparse weighted linear model.

Flags override values from --config.

Example:
  limego explain --reference ref.csv --model model.json --query "0.5,1.2,3" \
      --num-features 2 --seed 42 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.reference, "reference", "", "reference CSV with a header row of feature names")
	f.StringVar(&opts.model, "model", "", "model weights JSON")
	f.StringVar(&opts.query, "query", "", "comma-separated query point")
	f.StringVar(&opts.config, "config", "", "YAML explainer config")
	f.IntVar(&opts.numFeatures, "num-features", 0, "maximum number of features in the explanation")
	f.IntVar(&opts.numSamples, "num-samples", 0, "neighbourhood size including the query")
	f.Float64Var(&opts.kernelWidth, "kernel-width", 0, "kernel width (default 0.75·√features)")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed")
	f.StringVar(&opts.selection, "selection", "", "auto, forward_selection, highest_weights or lasso_path")
	f.IntVar(&opts.batchSize, "batch-size", 0, "rows per model call (0 = one call)")
	f.StringVar(&opts.format, "format", "text", "output format: text or json")
	_ = cmd.MarkFlagRequired("reference")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func runExplain(cmd *cobra.Command, opts *explainOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return errors.NewConfigurationError("limego explain", "format", "must be text or json", opts.format)
	}

	cfg := lime.DefaultConfig()
	if opts.config != "" {
		var err error
		if cfg, err = lime.LoadConfig(opts.config); err != nil {
			return err
		}
	}

	reference, names, err := loadReference(opts.reference)
	if err != nil {
		return err
	}
	predictor, err := loadModel(opts.model, names)
	if err != nil {
		return err
	}
	query, err := parseQuery(opts.query)
	if err != nil {
		return err
	}

	logger := log.GetLogger().With(log.ComponentKey, "cli", log.ModelNameKey, opts.model)
	ex, err := lime.New(reference, lime.FromPredictor(predictor), names,
		lime.WithDefaults(cfg),
		lime.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	exp, err := ex.Explain(cmd.Context(), query, flagOptions(cmd, opts)...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		data, err := json.MarshalIndent(exp, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode explanation")
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	_, err = fmt.Fprintln(out, exp.String())
	return err
}

// flagOptions returns request options for the flags set on the command line.
func flagOptions(cmd *cobra.Command, opts *explainOptions) []lime.ExplainOption {
	var out []lime.ExplainOption
	f := cmd.Flags()
	if f.Changed("num-features") {
		out = append(out, lime.WithNumFeatures(opts.numFeatures))
	}
	if f.Changed("num-samples") {
		out = append(out, lime.WithNumSamples(opts.numSamples))
	}
	if f.Changed("kernel-width") {
		out = append(out, lime.WithKernelWidth(opts.kernelWidth))
	}
	if f.Changed("seed") {
		out = append(out, lime.WithSeed(opts.seed))
	}
	if f.Changed("selection") {
		out = append(out, lime.WithFeatureSelection(lime.FeatureSelection(opts.selection)))
	}
	if f.Changed("batch-size") {
		out = append(out, lime.WithBatchSize(opts.batchSize))
	}
	return out
}

// loadModel restores a linear model and checks it against the reference
// columns.
func loadModel(path string, names []string) (*linear.WeightedLinearRegression, error) {
	mw, err := model.LoadModelWeights(path)
	if err != nil {
		return nil, err
	}
	if len(mw.Coefficients) != len(names) {
		return nil, errors.NewConfigurationError("limego explain", "model",
			fmt.Sprintf("model has %d coefficients but reference has %d columns", len(mw.Coefficients), len(names)), path)
	}
	if len(mw.Features) > 0 && !slices.Equal(mw.Features, names) {
		return nil, errors.NewConfigurationError("limego explain", "model",
			"model feature names do not match the reference header", mw.Features)
	}
	lr := linear.NewWeightedLinearRegression()
	if err := lr.ImportWeights(mw); err != nil {
		return nil, err
	}
	return lr, nil
}
