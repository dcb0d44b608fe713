// Command enginectl runs, loads, and inspects dataflow programs, grounded
// on cmd/ployzd/main.go's shape: a tracer provider installed once at
// process start, persistent --debug/--data-root flags, a cobra root with
// one subcommand per operation.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"logicmesh/internal/logging"
	"logicmesh/internal/style"
)

func main() {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()

	style.Configure()

	if err := logging.Configure(logging.LevelInfo); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var debug bool
	var dataRoot string

	cmd := &cobra.Command{
		Use:     "enginectl",
		Short:   "Run and inspect dataflow programs",
		Version: "0.1.0",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelInfo
			if debug {
				level = logging.LevelDebug
			}
			return logging.Configure(level)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&dataRoot, "data-root", "./enginectl-data", "directory for the program store database")

	cmd.AddCommand(runCmd(&dataRoot), loadCmd(&dataRoot), inspectCmd(&dataRoot))
	return cmd
}
