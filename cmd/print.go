package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/noreturn/formatter"
	"github.com/gnolang/noreturn/internal"
	"github.com/gnolang/noreturn/internal/document"
)

var printLowered bool

var printCmd = &cobra.Command{
	Use:   "print [files...]",
	Short: "Print the expression trees of documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var engine *internal.Engine
		if printLowered {
			var err error
			engine, err = internal.NewEngine(logger, internal.Options{Strict: true})
			if err != nil {
				return err
			}
		}
		return runPrint(cmd.Context(), logger, engine, args, cmd.OutOrStdout())
	},
}

func init() {
	printCmd.Flags().BoolVarP(&printLowered, "lowered", "l", false, "Print the trees after removing return statements")
}

// runPrint prints the documents in files. A nil engine prints them as
// written.
func runPrint(ctx context.Context, logger *zap.Logger, engine *internal.Engine, files []string, out io.Writer) error {
	for _, file := range files {
		doc, err := document.LoadFile(file)
		if err != nil {
			return err
		}
		if engine != nil {
			if _, err := engine.Lower(ctx, doc); err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
		}
		logger.Debug("printing document", zap.String("file", file), zap.Bool("lowered", engine != nil))
		fmt.Fprint(out, formatter.FormatDocument(doc))
	}
	return nil
}
