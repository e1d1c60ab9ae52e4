package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/noreturn/formatter"
	"github.com/gnolang/noreturn/internal"
	"github.com/gnolang/noreturn/lower"
)

var errRewriteFailed = errors.New("some rewrites failed")

var (
	outputDir      string
	lowerJSON      bool
	jsonOutputPath string
	quiet          bool
	parallel       bool
)

var lowerCmd = &cobra.Command{
	Use:   "lower [paths...]",
	Short: "Remove return statements from the given documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		if quiet {
			lower.ProgressOutput = io.Discard
		}

		config, loaded, err := lower.ResolveConfig(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("parallel") {
			config.Parallel = parallel
		}
		if outputDir != "" {
			config.OutputDir = outputDir
		}

		var deps []string
		if loaded {
			deps = append(deps, cfgFile)
		}
		engine, err := lower.NewWithConfig(config, logger, deps...)
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}

		return runLowerProcess(ctx, logger, engine, args, lowerOptions{
			outputDir: config.OutputDir,
			json:      lowerJSON,
			jsonPath:  jsonOutputPath,
		}, cmd.OutOrStdout())
	},
}

func init() {
	lowerCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory the rewritten documents are written to")
	lowerCmd.Flags().BoolVar(&lowerJSON, "json", false, "Print reports in JSON format")
	lowerCmd.Flags().StringVar(&jsonOutputPath, "json-output", "", "Write the JSON reports to this file instead of stdout")
	lowerCmd.Flags().BoolVar(&parallel, "parallel", false, "Lower the components of a document concurrently")
	lowerCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar")
}

type lowerOptions struct {
	outputDir string
	json      bool
	jsonPath  string
}

func runLowerProcess(
	ctx context.Context,
	logger *zap.Logger,
	engine lower.Engine,
	paths []string,
	opts lowerOptions,
	out io.Writer,
) error {
	reports, procErr := lower.ProcessFiles(ctx, logger, engine, paths, lower.ProcessFile)

	if opts.outputDir != "" {
		for _, report := range reports {
			written, err := lower.WriteDocument(report, opts.outputDir)
			if err != nil {
				return fmt.Errorf("error writing %s: %w", report.Filename, err)
			}
			logger.Info("wrote document", zap.String("file", written))
		}
	}

	if err := printReports(reports, opts, out); err != nil {
		return err
	}

	if procErr != nil {
		return procErr
	}
	for _, report := range reports {
		if report.Failed() {
			return errRewriteFailed
		}
	}
	return nil
}

func printReports(reports []*internal.Report, opts lowerOptions, out io.Writer) error {
	if !opts.json {
		for _, report := range reports {
			fmt.Fprint(out, formatter.GenerateFormattedReport(report))
		}
		return nil
	}

	d, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling reports to JSON: %w", err)
	}
	if opts.jsonPath == "" {
		fmt.Fprintln(out, string(d))
		return nil
	}
	return os.WriteFile(opts.jsonPath, d, 0o644)
}
