package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"logicmesh/blocks"
	"logicmesh/engine"
	"logicmesh/internal/style"
	"logicmesh/internal/telemetry"
	"logicmesh/loader"
	"logicmesh/registry"
)

func runCmd(dataRoot *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run <program.yaml>",
		Short: "Load a program document and run it until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			ctx, end := telemetry.StartOperation(ctx, otel.Tracer("enginectl"), "run")

			doc, err := readDocument(args[0])
			if err != nil {
				end(err)
				return err
			}

			reg := registry.New()
			blocks.RegisterAll(reg)
			eng := engine.New(reg)

			if err := loader.Load(ctx, eng, reg, doc); err != nil {
				end(err)
				return fmt.Errorf("load program: %w", err)
			}
			fmt.Println(style.OK("loaded %q: %d blocks", doc.Meta.Name, len(doc.Blocks)))

			runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			go eng.Run(runCtx)

			<-runCtx.Done()
			fmt.Println(style.Accent("shutting down"))
			end(nil)
			return nil
		},
	}
}
