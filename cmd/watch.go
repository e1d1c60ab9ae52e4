package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/noreturn/formatter"
	"github.com/gnolang/noreturn/internal"
	"github.com/gnolang/noreturn/lower"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Lower documents again every time they change",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}

		engine, err := lower.New(cfgFile, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, logger, engine, args, cmd.OutOrStdout())
	},
}

func runWatch(ctx context.Context, logger *zap.Logger, engine *internal.Engine, dirs []string, out io.Writer) error {
	err := engine.StartWatching(dirs, func(report *internal.Report, err error) {
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		fmt.Fprint(out, formatter.GenerateFormattedReport(report))
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("stopping watcher")
	return engine.StopWatching()
}
