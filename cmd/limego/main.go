// Command limego explains predictions of a persisted linear model with local
// surrogates.
//
//	limego explain --reference ref.csv --model model.json --query "0.5,1.2,3"
//	limego config > lime.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/YuminosukeSato/limego/pkg/errors"
	"github.com/YuminosukeSato/limego/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel   string
	logBackend string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "limego",
		Short: "Local surrogate explanations for black-box regressors",
		Long: `limego fits a sparse weighted linear model around one query point to explain
what drives a model's prediction there.

The reference CSV supplies per-feature means and standard deviations; the
model is a linear model exported as ModelWeights JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(opts, cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.logBackend, "log-backend", "slog", "log backend: slog or zerolog")

	cmd.AddCommand(newExplainCmd(), newConfigCmd())
	return cmd
}

func setupLogging(opts *rootOptions, cmd *cobra.Command) error {
	switch opts.logBackend {
	case "slog":
		return log.SetupLogger(opts.logLevel, cmd.ErrOrStderr())
	case "zerolog":
		level, err := log.ToLogLevel(opts.logLevel)
		if err != nil {
			return err
		}
		z := log.NewZerologLogger(cmd.ErrOrStderr(), log.Level(level))
		log.InstallZerologWarnings(z)
		log.SetLogger(z)
		return nil
	default:
		return errors.NewConfigurationError("limego", "log-backend", "must be slog or zerolog", opts.logBackend)
	}
}
