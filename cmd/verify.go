package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/noreturn/formatter"
	"github.com/gnolang/noreturn/lower"
)

var maxVerifyInputs int

var verifyCmd = &cobra.Command{
	Use:   "verify [paths...]",
	Short: "Check that every rewrite preserves the value and the calls of the original",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		config, loaded, err := lower.ResolveConfig(cfgFile)
		if err != nil {
			return err
		}
		config.Verify = true
		config.CacheDir = ""
		if maxVerifyInputs > 0 {
			config.MaxVerifyInputs = maxVerifyInputs
		}
		logger.Debug("verifying", zap.Bool("config loaded", loaded), zap.Int("max inputs", config.MaxVerifyInputs))

		engine, err := lower.NewWithConfig(config, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}
		return runVerifyProcess(ctx, logger, engine, args, cmd.OutOrStdout())
	},
}

func init() {
	verifyCmd.Flags().IntVar(&maxVerifyInputs, "max-inputs", 0, "Maximum number of bool properties enumerated per component")
}

func runVerifyProcess(ctx context.Context, logger *zap.Logger, engine lower.Engine, paths []string, out io.Writer) error {
	reports, err := lower.ProcessFiles(ctx, logger, engine, paths, lower.ProcessFile)
	failed := false
	for _, report := range reports {
		for _, rw := range report.Rewrites {
			if !rw.Verified() {
				fmt.Fprint(out, formatter.FormatRewrite(rw, report.Filename))
			}
		}
		fmt.Fprintln(out, formatter.Summary(report))
		failed = failed || report.Failed()
	}
	if err != nil {
		return err
	}
	if failed {
		return errRewriteFailed
	}
	return nil
}
