package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"logicmesh/blocks"
	"logicmesh/engine"
	"logicmesh/internal/style"
	"logicmesh/internal/telemetry"
	"logicmesh/loader"
	"logicmesh/registry"
	"logicmesh/store"
)

func loadCmd(dataRoot *string) *cobra.Command {
	var saveAs string

	cmd := &cobra.Command{
		Use:   "load <program.yaml>",
		Short: "Validate a program document and optionally save it to the program store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, end := telemetry.StartOperation(ctx, otel.Tracer("enginectl"), "load")

			doc, err := readDocument(args[0])
			if err != nil {
				end(err)
				return err
			}

			// dry-run materialization against a throwaway engine confirms
			// every block name and link resolves before anything is saved.
			reg := registry.New()
			blocks.RegisterAll(reg)
			eng := engine.New(reg)
			if err := loader.Load(context.Background(), eng, reg, doc); err != nil {
				end(err)
				return fmt.Errorf("validate program: %w", err)
			}
			eng.Reset()
			fmt.Println(style.OK("%q validates: %d blocks, %d links", doc.Meta.Name, len(doc.Blocks), len(doc.Links)))

			if saveAs == "" {
				end(nil)
				return nil
			}

			db, err := store.Open(filepath.Join(*dataRoot, "programs.db"))
			if err != nil {
				end(err)
				return err
			}
			defer db.Close()

			raw, err := loader.Marshal(doc)
			if err != nil {
				end(err)
				return err
			}
			if err := db.Save(saveAs, raw); err != nil {
				end(err)
				return err
			}
			fmt.Println(style.OK("saved as %q", saveAs))
			end(nil)
			return nil
		},
	}

	cmd.Flags().StringVar(&saveAs, "save", "", "name to save the document under in the program store")
	return cmd
}
